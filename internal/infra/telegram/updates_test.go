package telegram

import (
	"context"
	"sync"
	"testing"

	"container_bot/internal/app"

	"gopkg.in/telebot.v3"
)

func TestEventFromUpdate(t *testing.T) {
	t.Parallel()

	operator := &telebot.User{ID: 42, Username: "op", FirstName: "Olga"}
	private := &telebot.Chat{ID: 42, Type: telebot.ChatPrivate}
	group := &telebot.Chat{ID: -100500, Type: telebot.ChatSuperGroup, Title: "Containers"}

	tests := []struct {
		name  string
		upd   telebot.Update
		check func(t *testing.T, ev *app.Event)
	}{
		{
			name: "private text",
			upd:  telebot.Update{Message: &telebot.Message{Sender: operator, Chat: private, Text: "/help"}},
			check: func(t *testing.T, ev *app.Event) {
				if !ev.IsPrivate() || ev.Text != "/help" || ev.Sender.Username != "op" || ev.ReplyChatID() != 42 {
					t.Fatalf("event = %+v", ev)
				}
			},
		},
		{
			name: "group document with caption",
			upd: telebot.Update{Message: &telebot.Message{
				Sender:   operator,
				Chat:     group,
				Caption:  "fresh stock",
				Document: &telebot.Document{File: telebot.File{FileID: "doc-1"}, FileName: "offers.xlsx"},
			}},
			check: func(t *testing.T, ev *app.Event) {
				if !ev.IsGroup() || ev.Chat.Title != "Containers" {
					t.Fatalf("chat = %+v", ev.Chat)
				}
				if ev.Document == nil || ev.Document.FileID != "doc-1" || ev.Document.FileName != "offers.xlsx" {
					t.Fatalf("document = %+v", ev.Document)
				}
				if ev.Text != "fresh stock" {
					t.Fatalf("text = %q, want the caption", ev.Text)
				}
			},
		},
		{
			name: "callback",
			upd: telebot.Update{Callback: &telebot.Callback{
				ID:      "cb-1",
				Sender:  operator,
				Data:    "broadcast_chat 7",
				Message: &telebot.Message{Chat: private},
			}},
			check: func(t *testing.T, ev *app.Event) {
				if !ev.IsCallback() || ev.Callback.Data != "broadcast_chat 7" || ev.Callback.ID != "cb-1" {
					t.Fatalf("callback = %+v", ev.Callback)
				}
				if ev.ReplyChatID() != 42 {
					t.Fatalf("reply chat = %d", ev.ReplyChatID())
				}
			},
		},
		{
			name: "callback without message",
			upd:  telebot.Update{Callback: &telebot.Callback{ID: "cb-2", Sender: operator}},
			check: func(t *testing.T, ev *app.Event) {
				if ev.Chat != nil || ev.ReplyChatID() != 42 {
					t.Fatalf("event = %+v", ev)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ev := EventFromUpdate(tt.upd)
			if ev == nil {
				t.Fatalf("EventFromUpdate returned nil")
			}
			tt.check(t, ev)
		})
	}
}

func TestEventFromUpdateWithoutSender(t *testing.T) {
	t.Parallel()

	updates := []telebot.Update{
		{},
		{Message: &telebot.Message{Text: "channel post", Chat: &telebot.Chat{ID: -1, Type: telebot.ChatChannel}}},
		{Callback: &telebot.Callback{ID: "x"}},
	}
	for i, upd := range updates {
		if ev := EventFromUpdate(upd); ev != nil {
			t.Fatalf("update %d: got %+v, want nil", i, ev)
		}
	}
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []*app.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, ev *app.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

func TestRegisterUpdateHandlersForwardsEvents(t *testing.T) {
	t.Parallel()

	b, err := telebot.NewBot(telebot.Settings{Token: "test", Offline: true, Synchronous: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	d := &recordingDispatcher{}
	RegisterUpdateHandlers(context.Background(), b, d, newTestEntry())

	b.ProcessUpdate(telebot.Update{Message: &telebot.Message{
		Sender: &telebot.User{ID: 9},
		Chat:   &telebot.Chat{ID: 9, Type: telebot.ChatPrivate},
		Text:   "hello",
	}})
	b.ProcessUpdate(telebot.Update{Callback: &telebot.Callback{ID: "cb", Sender: &telebot.User{ID: 9}, Data: "broadcast_all"}})

	if len(d.events) != 2 || d.events[0].Text != "hello" || !d.events[1].IsCallback() {
		t.Fatalf("events = %+v", d.events)
	}
}
