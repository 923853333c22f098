package app

import (
	"errors"
	"sync"
	"testing"
)

func TestDialogStoreOverwritesPriorDialog(t *testing.T) {
	t.Parallel()

	store := NewInMemoryDialogStore()
	store.Set(7, Dialog{State: DialogManagingWeeklyText, CurrentText: "old weekly"})
	store.Set(7, Dialog{State: DialogManagingDailyText, CurrentText: "daily"})

	got, ok := store.Get(7)
	if !ok {
		t.Fatalf("expected dialog for operator 7")
	}
	if got.State != DialogManagingDailyText || got.CurrentText != "daily" {
		t.Fatalf("dialog = %+v, want daily dialog with its own text", got)
	}
	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1", store.Len())
	}
}

func TestDialogStoreNoneClearsEntry(t *testing.T) {
	t.Parallel()

	store := NewInMemoryDialogStore()
	store.Set(1, Dialog{State: DialogAwaitingNewDailyText, CurrentText: "x"})
	store.Set(1, Dialog{State: DialogNone, CurrentText: "ignored"})

	if _, ok := store.Get(1); ok {
		t.Fatalf("setting DialogNone must clear the entry")
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d, want 0", store.Len())
	}
	store.Remove(1) // idempotent
}

func TestSessionStoreKeepsOneSessionPerInitiator(t *testing.T) {
	t.Parallel()

	store := NewInMemorySessionStore()
	store.Set(Session{ID: 1, InitiatorID: 5, State: SessionWaitingForTargetSelection})
	store.Set(Session{ID: 2, InitiatorID: 5, State: SessionWaitingForMessageTextAll, Target: Target{All: true}})
	store.Set(Session{ID: 3, InitiatorID: 6, State: SessionWaitingForTargetSelection})

	got, ok := store.Get(5)
	if !ok || got.ID != 2 || got.State != SessionWaitingForMessageTextAll {
		t.Fatalf("session of 5 = %+v (ok=%v), want the second one", got, ok)
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
}

func TestPartitionedMapComputeErrorLeavesEntry(t *testing.T) {
	t.Parallel()

	m := newPartitionedMap[int]()
	m.Set(3, 10)
	boom := errors.New("boom")

	if _, err := m.Compute(3, func(cur int, ok bool) (int, bool, error) {
		return 0, false, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Compute error = %v, want boom", err)
	}
	if v, ok := m.Get(3); !ok || v != 10 {
		t.Fatalf("entry = %d (ok=%v), want unchanged 10", v, ok)
	}

	if _, err := m.Compute(3, func(cur int, ok bool) (int, bool, error) {
		return cur, false, nil
	}); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if _, ok := m.Get(3); ok {
		t.Fatalf("keep=false must remove the entry")
	}
}

func TestPartitionedMapNegativeKeys(t *testing.T) {
	t.Parallel()

	m := newPartitionedMap[string]()
	m.Set(-1001234567890, "channel")
	if v, ok := m.Get(-1001234567890); !ok || v != "channel" {
		t.Fatalf("Get = %q (ok=%v)", v, ok)
	}
}

func TestSessionStoreConcurrentComputeIsAtomic(t *testing.T) {
	t.Parallel()

	store := NewInMemorySessionStore()
	store.Set(Session{ID: 1, InitiatorID: 9, State: SessionWaitingForMessageTextAll})

	const submitters = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Compute(9, func(cur Session, ok bool) (Session, bool, error) {
				if !ok || !cur.State.awaitingText() {
					return cur, ok, ErrSessionStateMismatch
				}
				cur.State = SessionSending
				return cur, true, nil
			})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("%d submitters moved the session to sending, want exactly 1", winners)
	}
}

func TestStoresConcurrentOperators(t *testing.T) {
	t.Parallel()

	dialogs := NewInMemoryDialogStore()
	sessions := NewInMemorySessionStore()

	var wg sync.WaitGroup
	for op := int64(1); op <= 200; op++ {
		wg.Add(1)
		go func(op int64) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				dialogs.Set(op, Dialog{State: DialogManagingWeeklyText, CurrentText: "t"})
				sessions.Set(Session{ID: uint64(i), InitiatorID: op})
				dialogs.Get(op)
				sessions.Get(op)
			}
			if op%2 == 0 {
				dialogs.Remove(op)
				sessions.Remove(op)
			}
		}(op)
	}
	wg.Wait()

	if dialogs.Len() != 100 || sessions.Len() != 100 {
		t.Fatalf("dialogs=%d sessions=%d, want 100 each", dialogs.Len(), sessions.Len())
	}
}
