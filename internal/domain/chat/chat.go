package chat

import "time"

// Chat is a group chat or channel the bot has seen.
type Chat struct {
	ID         int64
	TelegramID int64
	Name       string
	CreatedAt  time.Time
}

// Member is a user linked to a chat.
type Member struct {
	UserID     int64
	TelegramID int64
	Username   string
}

// Statistic holds message counts of a chat since a point in time.
type Statistic struct {
	ChatName     string
	MessageCount int
	Users        []UserStatistic
}

type UserStatistic struct {
	UserID       int64
	Username     string
	MessageCount int
}
