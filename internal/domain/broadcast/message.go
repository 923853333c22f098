package broadcast

import "time"

// PeriodType is the scheduling category of a broadcast text.
type PeriodType string

const (
	PeriodDaily        PeriodType = "DAILY"
	PeriodDailyChannel PeriodType = "DAILY_CHANNEL"
	PeriodWeekly       PeriodType = "WEEKLY"
)

// Message is a broadcast text. At most one Message per PeriodType is active.
type Message struct {
	ID         int64
	Text       string
	PeriodType PeriodType
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
