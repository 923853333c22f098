package user

import "time"

// State is the lifecycle state of a user record.
type State int

const (
	StateActive State = iota
	StateBlocked
)

// Type tells how the bot knows the user.
// Subscribers have opened a private chat with the bot and can receive direct messages.
type Type int

const (
	TypeAverage Type = iota
	TypeSubscriber
)

// User represents a platform user seen by the bot.
type User struct {
	ID           int64
	TelegramID   int64
	Username     string
	LastActivity time.Time
	State        State
	Type         Type
	CreatedAt    time.Time
}

// ListFilter narrows User listings. Zero value lists everyone.
type ListFilter struct {
	OnlyActive bool
	Type       *Type
	ChatID     int64 // 0 = any chat
}

// Statistic is the per-chat message distribution of one user.
type Statistic struct {
	Username     string
	MessageCount int
	Chats        []ChatStatistic
}

type ChatStatistic struct {
	ChatName     string
	MessageCount int
}
