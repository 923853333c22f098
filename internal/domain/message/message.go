package message

import (
	"context"
	"time"
)

// Message is one text message observed in a group chat.
type Message struct {
	ID        int64
	UserID    int64
	ChatID    int64
	Content   string
	CreatedAt time.Time
}

// Repository appends to the message log.
type Repository interface {
	Append(ctx context.Context, m *Message) error
}
