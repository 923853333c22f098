package app

// SessionState is the step of an interactive broadcast.
type SessionState int

const (
	SessionWaitingForTargetSelection SessionState = iota
	SessionWaitingForMessageText
	SessionWaitingForMessageTextAll
	SessionSending
)

func (s SessionState) String() string {
	switch s {
	case SessionWaitingForTargetSelection:
		return "waiting_for_target_selection"
	case SessionWaitingForMessageText:
		return "waiting_for_message_text"
	case SessionWaitingForMessageTextAll:
		return "waiting_for_message_text_all"
	case SessionSending:
		return "sending"
	default:
		return "unknown"
	}
}

func (s SessionState) awaitingText() bool {
	return s == SessionWaitingForMessageText || s == SessionWaitingForMessageTextAll
}

// Target is the recipient scope of a session: one chat, or all subscribers.
type Target struct {
	ChatID   int64
	ChatName string
	All      bool
}

// Session is a broadcast in progress for one initiating operator.
type Session struct {
	ID          uint64 // distinguishes successive sessions of the same initiator
	InitiatorID int64
	Target      Target
	State       SessionState
}

// SessionStore keeps at most one Session per initiator.
type SessionStore interface {
	Get(initiatorID int64) (Session, bool)
	Set(s Session)
	Remove(initiatorID int64)
	// Compute atomically reads and rewrites the initiator's entry. See partitionedMap.Compute.
	Compute(initiatorID int64, fn func(cur Session, ok bool) (next Session, keep bool, err error)) (Session, error)
}

type InMemorySessionStore struct {
	entries *partitionedMap[Session]
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{entries: newPartitionedMap[Session]()}
}

func (s *InMemorySessionStore) Get(initiatorID int64) (Session, bool) {
	return s.entries.Get(initiatorID)
}

func (s *InMemorySessionStore) Set(session Session) {
	s.entries.Set(session.InitiatorID, session)
}

func (s *InMemorySessionStore) Remove(initiatorID int64) {
	s.entries.Remove(initiatorID)
}

func (s *InMemorySessionStore) Compute(initiatorID int64, fn func(cur Session, ok bool) (Session, bool, error)) (Session, error) {
	return s.entries.Compute(initiatorID, fn)
}

func (s *InMemorySessionStore) Len() int { return s.entries.Len() }
