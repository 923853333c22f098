package telegram

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/telebot.v3"
)

func newTestEntry() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

type fakeMenu struct {
	deleted int
	scopes  []telebot.CommandScope
	lists   [][]telebot.Command
	failFor int64
}

func (m *fakeMenu) DeleteCommands(...interface{}) error {
	m.deleted++
	return nil
}

func (m *fakeMenu) SetCommands(opts ...interface{}) error {
	cmds := opts[0].([]telebot.Command)
	scope := opts[1].(telebot.CommandScope)
	if m.failFor != 0 && scope.ChatID == m.failFor {
		return errors.New("chat not found")
	}
	m.lists = append(m.lists, cmds)
	m.scopes = append(m.scopes, scope)
	return nil
}

func TestPublishCommandMenus(t *testing.T) {
	t.Parallel()

	menu := &fakeMenu{failFor: 7}
	PublishCommandMenus(menu, []int64{42, 7, 43}, newTestEntry())

	if menu.deleted != 1 {
		t.Fatalf("DeleteCommands called %d times", menu.deleted)
	}
	if len(menu.scopes) != 3 {
		t.Fatalf("published %d menus, want users + 2 reachable operators", len(menu.scopes))
	}
	if menu.scopes[0].Type != telebot.CommandScopeAllPrivateChats || len(menu.lists[0]) != len(userCommands) {
		t.Fatalf("first menu = %+v", menu.scopes[0])
	}
	for i, want := range []int64{42, 43} {
		s := menu.scopes[i+1]
		if s.Type != telebot.CommandScopeChat || s.ChatID != want || len(menu.lists[i+1]) != len(operatorCommands) {
			t.Fatalf("operator menu %d = %+v", i, s)
		}
	}
}
