package user

import "context"

// Repository defines the operations for persisting and retrieving User entities.
type Repository interface {
	// Upsert inserts the user by TelegramID or refreshes username and last activity.
	// A stored Subscriber is never downgraded. u.ID is set on return.
	Upsert(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]*User, error)
	GetStatistic(ctx context.Context, userID int64) (*Statistic, error)
}
