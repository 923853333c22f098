package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func recipients(ids ...int64) []Recipient {
	out := make([]Recipient, 0, len(ids))
	for _, id := range ids {
		out = append(out, Recipient{TelegramID: id})
	}
	return out
}

func TestFanoutIsolatesFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ids        []int64
		failing    []int64
		panicking  []int64
		wantReport FanoutReport
	}{
		{name: "all succeed", ids: []int64{1, 2, 3}, wantReport: FanoutReport{Attempted: 3, Succeeded: 3}},
		{name: "one fails", ids: []int64{1, 2, 3, 4, 5}, failing: []int64{3}, wantReport: FanoutReport{Attempted: 5, Succeeded: 4, Failed: 1}},
		{name: "first fails", ids: []int64{1, 2}, failing: []int64{1}, wantReport: FanoutReport{Attempted: 2, Succeeded: 1, Failed: 1}},
		{name: "panic counted as failure", ids: []int64{1, 2, 3}, panicking: []int64{2}, wantReport: FanoutReport{Attempted: 3, Succeeded: 2, Failed: 1}},
		{name: "empty", wantReport: FanoutReport{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newFakeClient()
			for _, id := range tt.failing {
				client.failFor[id] = errors.New("bot was blocked by the user")
			}
			for _, id := range tt.panicking {
				client.panicFor[id] = true
			}
			logger, hook := newTestLogger()
			f := NewFanoutExecutor(client, 0, logger)

			got := f.Send(context.Background(), recipients(tt.ids...), "hi", nil)
			if got != tt.wantReport {
				t.Fatalf("report = %+v, want %+v", got, tt.wantReport)
			}

			bad := map[int64]bool{}
			for _, id := range append(tt.failing, tt.panicking...) {
				bad[id] = true
			}
			var want []int64
			for _, id := range tt.ids {
				if !bad[id] {
					want = append(want, id)
				}
			}
			if got := client.recipientsOf("hi"); !equalIDs(got, want) {
				t.Fatalf("delivered to %v, want %v in order", got, want)
			}

			warnings := 0
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel {
					if _, ok := e.Data["recipient_id"]; !ok {
						t.Fatalf("failure log without recipient_id: %v", e.Data)
					}
					warnings++
				}
			}
			if warnings != tt.wantReport.Failed {
				t.Fatalf("%d warnings logged, want %d", warnings, tt.wantReport.Failed)
			}
		})
	}
}

func TestFanoutPacesSends(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	logger, _ := newTestLogger()
	f := NewFanoutExecutor(client, 20*time.Millisecond, logger)
	client.failFor[2] = errors.New("fail")

	start := time.Now()
	report := f.Send(context.Background(), recipients(1, 2, 3, 4), "paced", nil)
	elapsed := time.Since(start)

	if report.Attempted != 4 {
		t.Fatalf("attempted = %d, want 4", report.Attempted)
	}
	// Three gaps between four sends, failures included.
	if elapsed < 55*time.Millisecond {
		t.Fatalf("four paced sends took %s, want at least ~60ms", elapsed)
	}
}

func TestFanoutStopsWhenContextDone(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	logger, _ := newTestLogger()
	f := NewFanoutExecutor(client, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	client.onSend = func(int64, string) { cancel() }

	report := f.Send(ctx, recipients(1, 2, 3), "stop", nil)
	if report.Attempted != 1 || report.Succeeded != 1 {
		t.Fatalf("report = %+v, want only the first recipient attempted", report)
	}
}

func TestFanoutCopiesOptions(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	logger, _ := newTestLogger()
	f := NewFanoutExecutor(client, 0, logger)
	opts := &telebot.SendOptions{DisableNotification: true}

	f.Send(context.Background(), recipients(1, 2), "quiet", opts)

	msgs := client.messages()
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(msgs))
	}
	if msgs[0].Options == opts || msgs[0].Options == msgs[1].Options {
		t.Fatalf("each recipient must get its own options copy")
	}
	if !msgs[1].Options.DisableNotification {
		t.Fatalf("options not carried over")
	}
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
