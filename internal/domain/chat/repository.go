package chat

import (
	"context"
	"time"

	"container_bot/internal/domain/user"
)

// Repository defines operations for chats and chat membership.
type Repository interface {
	// Upsert returns the chat with the given platform id, creating it with title when missing.
	Upsert(ctx context.Context, telegramID int64, title string) (*Chat, error)
	LinkUser(ctx context.Context, chatID, userID int64) error
	List(ctx context.Context) ([]*Chat, error)
	GetByID(ctx context.Context, id int64) (*Chat, error)
	// ListMembers returns members of the chat whose user type is one of kinds.
	ListMembers(ctx context.Context, chatID int64, kinds ...user.Type) ([]*Member, error)
	GetStatistic(ctx context.Context, chatID int64, since time.Time) (*Statistic, error)
}
