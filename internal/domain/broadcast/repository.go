package broadcast

import "context"

// Repository stores broadcast texts.
type Repository interface {
	// GetActive returns the active text of the period type.
	GetActive(ctx context.Context, period PeriodType) (*Message, error)
	// Create stores m as the active text of m.PeriodType, deactivating the previous one.
	Create(ctx context.Context, m *Message) error
}
