package telegram

import (
	"context"

	"container_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// EventDispatcher receives every inbound event.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev *app.Event)
}

// RegisterUpdateHandlers forwards text, document and callback updates to the dispatcher.
// Telebot runs each handler in its own goroutine unless the bot is synchronous.
func RegisterUpdateHandlers(ctx context.Context, b *telebot.Bot, dispatcher EventDispatcher, baseLogger *logrus.Entry) {
	forward := func(kind string) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			ev := EventFromUpdate(c.Update())
			if ev == nil {
				baseLogger.WithField("update_id", c.Update().ID).Debug("Skipping update without sender")
				return nil
			}
			baseLogger.WithFields(logrus.Fields{"kind": kind, "sender_id": ev.Sender.ID}).Debug("Update received")
			dispatcher.Dispatch(ctx, ev)
			return nil
		}
	}

	b.Handle(telebot.OnText, forward("text"))
	b.Handle(telebot.OnDocument, forward("document"))
	b.Handle(telebot.OnCallback, forward("callback"))
}

// EventFromUpdate converts a gateway update. It returns nil for updates without a sender.
func EventFromUpdate(upd telebot.Update) *app.Event {
	if cb := upd.Callback; cb != nil {
		if cb.Sender == nil {
			return nil
		}
		ev := &app.Event{
			Sender:   sender(cb.Sender),
			Callback: &app.Callback{ID: cb.ID, Data: cb.Data},
		}
		if cb.Message != nil && cb.Message.Chat != nil {
			ev.Chat = chatRef(cb.Message.Chat)
			ev.Callback.MessageChatID = cb.Message.Chat.ID
		}
		return ev
	}

	m := upd.Message
	if m == nil || m.Sender == nil {
		return nil
	}
	ev := &app.Event{Sender: sender(m.Sender), Text: m.Text}
	if m.Chat != nil {
		ev.Chat = chatRef(m.Chat)
	}
	if m.Document != nil {
		ev.Document = &app.Document{FileID: m.Document.FileID, FileName: m.Document.FileName}
		if ev.Text == "" {
			ev.Text = m.Caption
		}
	}
	return ev
}

func sender(u *telebot.User) *app.Sender {
	return &app.Sender{ID: u.ID, Username: u.Username, FirstName: u.FirstName}
}

func chatRef(c *telebot.Chat) *app.ChatRef {
	return &app.ChatRef{ID: c.ID, Title: c.Title, Type: app.ChatType(c.Type)}
}
