package app

// DialogState is the step an operator is at while configuring a broadcast text.
type DialogState int

const (
	DialogNone DialogState = iota
	DialogManagingWeeklyText
	DialogAwaitingNewWeeklyText
	DialogManagingDailyText
	DialogAwaitingNewDailyText
)

func (s DialogState) String() string {
	switch s {
	case DialogNone:
		return "none"
	case DialogManagingWeeklyText:
		return "managing_weekly_text"
	case DialogAwaitingNewWeeklyText:
		return "awaiting_new_weekly_text"
	case DialogManagingDailyText:
		return "managing_daily_text"
	case DialogAwaitingNewDailyText:
		return "awaiting_new_daily_text"
	default:
		return "unknown"
	}
}

// Dialog is the whole per-operator dialog entry. It is stored and replaced as one value.
type Dialog struct {
	State       DialogState
	CurrentText string // active text shown to the operator when the dialog started
}

// DialogStore keeps at most one Dialog per operator.
type DialogStore interface {
	Get(operatorID int64) (Dialog, bool)
	// Set replaces any existing dialog. Setting DialogNone removes the entry.
	Set(operatorID int64, d Dialog)
	Remove(operatorID int64)
}

type InMemoryDialogStore struct {
	entries *partitionedMap[Dialog]
}

func NewInMemoryDialogStore() *InMemoryDialogStore {
	return &InMemoryDialogStore{entries: newPartitionedMap[Dialog]()}
}

func (s *InMemoryDialogStore) Get(operatorID int64) (Dialog, bool) {
	d, ok := s.entries.Get(operatorID)
	if !ok || d.State == DialogNone {
		return Dialog{}, false
	}
	return d, true
}

func (s *InMemoryDialogStore) Set(operatorID int64, d Dialog) {
	if d.State == DialogNone {
		s.entries.Remove(operatorID)
		return
	}
	s.entries.Set(operatorID, d)
}

func (s *InMemoryDialogStore) Remove(operatorID int64) {
	s.entries.Remove(operatorID)
}

// Len is the number of operators currently in a dialog.
func (s *InMemoryDialogStore) Len() int { return s.entries.Len() }
