package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"container_bot/internal/domain/broadcast"
	"container_bot/internal/domain/chat"
	"container_bot/internal/domain/message"
	"container_bot/internal/domain/offer"
	"container_bot/internal/domain/user"
	idb "container_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/telebot.v3"
)

func newTestLogger() (*logrus.Entry, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(l), hook
}

type sentMessage struct {
	ChatID  int64
	Text    string
	Options *telebot.SendOptions
}

type fakeClient struct {
	mu        sync.Mutex
	sent      []sentMessage
	documents []string
	answered  []string
	failFor   map[int64]error
	panicFor  map[int64]bool
	files     map[string][]byte
	onSend    func(chatID int64, text string)
}

func newFakeClient() *fakeClient {
	return &fakeClient{failFor: map[int64]error{}, panicFor: map[int64]bool{}, files: map[string][]byte{}}
}

func (c *fakeClient) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	c.mu.Lock()
	if c.panicFor[chatID] {
		c.mu.Unlock()
		panic("gateway exploded")
	}
	if err := c.failFor[chatID]; err != nil {
		c.mu.Unlock()
		return err
	}
	c.sent = append(c.sent, sentMessage{ChatID: chatID, Text: text, Options: options})
	hook := c.onSend
	c.mu.Unlock()
	if hook != nil {
		hook(chatID, text)
	}
	return nil
}

func (c *fakeClient) SendDocument(chatID int64, path, caption string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents = append(c.documents, path)
	return nil
}

func (c *fakeClient) AnswerCallback(callbackID, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answered = append(c.answered, callbackID)
	return nil
}

func (c *fakeClient) DownloadFile(fileID string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.files[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return b, nil
}

func (c *fakeClient) messages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMessage(nil), c.sent...)
}

func (c *fakeClient) messagesTo(chatID int64) []string {
	var out []string
	for _, m := range c.messages() {
		if m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func (c *fakeClient) recipientsOf(text string) []int64 {
	var out []int64
	for _, m := range c.messages() {
		if m.Text == text {
			out = append(out, m.ChatID)
		}
	}
	return out
}

type fakeBroadcastRepo struct {
	mu        sync.Mutex
	messages  []*broadcast.Message
	createErr error
	getErr    error
}

func (r *fakeBroadcastRepo) GetActive(_ context.Context, period broadcast.PeriodType) (*broadcast.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, m := range r.messages {
		if m.PeriodType == period && m.IsActive {
			cp := *m
			return &cp, nil
		}
	}
	return nil, idb.ErrBroadcastMessageNotFound
}

func (r *fakeBroadcastRepo) Create(_ context.Context, m *broadcast.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.messages {
		if existing.PeriodType == m.PeriodType {
			existing.IsActive = false
		}
	}
	m.ID = int64(len(r.messages) + 1)
	m.IsActive = true
	m.CreatedAt = time.Now()
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeBroadcastRepo) activeCount(period broadcast.PeriodType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.PeriodType == period && m.IsActive {
			n++
		}
	}
	return n
}

// registry backs both the user and the chat fakes.
type registry struct {
	mu       sync.Mutex
	users    []*user.User
	chats    []*chat.Chat
	links    map[int64][]int64 // chat id -> user ids
	messages []*message.Message
	listErr  error
}

func newRegistry() *registry {
	return &registry{links: map[int64][]int64{}}
}

func (r *registry) addUser(telegramID int64, username string, state user.State, kind user.Type) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &user.User{ID: int64(len(r.users) + 1), TelegramID: telegramID, Username: username, State: state, Type: kind}
	r.users = append(r.users, u)
	return u
}

func (r *registry) addChat(telegramID int64, name string) *chat.Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &chat.Chat{ID: int64(len(r.chats) + 100), TelegramID: telegramID, Name: name}
	r.chats = append(r.chats, c)
	return c
}

func (r *registry) link(chatID, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.links[chatID] {
		if id == userID {
			return
		}
	}
	r.links[chatID] = append(r.links[chatID], userID)
}

func (r *registry) userByID(id int64) *user.User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *registry) linked(chatID, userID int64) bool {
	for _, id := range r.links[chatID] {
		if id == userID {
			return true
		}
	}
	return false
}

type fakeUserRepo struct{ r *registry }

func (f fakeUserRepo) Upsert(_ context.Context, u *user.User) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, existing := range f.r.users {
		if existing.TelegramID == u.TelegramID {
			if u.Username != "" {
				existing.Username = u.Username
			}
			existing.LastActivity = u.LastActivity
			if u.Type > existing.Type {
				existing.Type = u.Type
			}
			*u = *existing
			return nil
		}
	}
	u.ID = int64(len(f.r.users) + 1)
	cp := *u
	f.r.users = append(f.r.users, &cp)
	return nil
}

func (f fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if u := f.r.userByID(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, idb.ErrUserNotFound
}

func (f fakeUserRepo) List(_ context.Context, filter user.ListFilter) ([]*user.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.listErr != nil {
		return nil, f.r.listErr
	}
	var out []*user.User
	for _, u := range f.r.users {
		if filter.OnlyActive && u.State != user.StateActive {
			continue
		}
		if filter.Type != nil && u.Type != *filter.Type {
			continue
		}
		if filter.ChatID != 0 && !f.r.linked(filter.ChatID, u.ID) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f fakeUserRepo) GetStatistic(_ context.Context, userID int64) (*user.Statistic, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	u := f.r.userByID(userID)
	if u == nil {
		return nil, idb.ErrUserNotFound
	}
	stat := &user.Statistic{Username: u.Username}
	counts := map[int64]int{}
	for _, m := range f.r.messages {
		if m.UserID == userID {
			counts[m.ChatID]++
		}
	}
	for _, c := range f.r.chats {
		if n := counts[c.ID]; n > 0 {
			stat.MessageCount += n
			stat.Chats = append(stat.Chats, user.ChatStatistic{ChatName: c.Name, MessageCount: n})
		}
	}
	return stat, nil
}

type fakeChatRepo struct{ r *registry }

func (f fakeChatRepo) Upsert(_ context.Context, telegramID int64, title string) (*chat.Chat, error) {
	f.r.mu.Lock()
	for _, c := range f.r.chats {
		if c.TelegramID == telegramID {
			c.Name = title
			cp := *c
			f.r.mu.Unlock()
			return &cp, nil
		}
	}
	f.r.mu.Unlock()
	c := f.r.addChat(telegramID, title)
	cp := *c
	return &cp, nil
}

func (f fakeChatRepo) LinkUser(_ context.Context, chatID, userID int64) error {
	f.r.link(chatID, userID)
	return nil
}

func (f fakeChatRepo) List(_ context.Context) ([]*chat.Chat, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := make([]*chat.Chat, 0, len(f.r.chats))
	for _, c := range f.r.chats {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f fakeChatRepo) GetByID(_ context.Context, id int64) (*chat.Chat, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, c := range f.r.chats {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, idb.ErrChatNotFound
}

func (f fakeChatRepo) ListMembers(_ context.Context, chatID int64, kinds ...user.Type) ([]*chat.Member, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*chat.Member
	for _, id := range f.r.links[chatID] {
		u := f.r.userByID(id)
		if u == nil {
			continue
		}
		match := len(kinds) == 0
		for _, k := range kinds {
			if u.Type == k {
				match = true
			}
		}
		if match {
			out = append(out, &chat.Member{UserID: u.ID, TelegramID: u.TelegramID, Username: u.Username})
		}
	}
	return out, nil
}

func (f fakeChatRepo) GetStatistic(_ context.Context, chatID int64, since time.Time) (*chat.Statistic, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var name string
	found := false
	for _, c := range f.r.chats {
		if c.ID == chatID {
			name, found = c.Name, true
		}
	}
	if !found {
		return nil, idb.ErrChatNotFound
	}
	stat := &chat.Statistic{ChatName: name}
	perUser := map[int64]int{}
	var order []int64
	for _, m := range f.r.messages {
		if m.ChatID != chatID || m.CreatedAt.Before(since) {
			continue
		}
		if perUser[m.UserID] == 0 {
			order = append(order, m.UserID)
		}
		perUser[m.UserID]++
		stat.MessageCount++
	}
	for _, id := range order {
		username := ""
		if u := f.r.userByID(id); u != nil {
			username = u.Username
		}
		stat.Users = append(stat.Users, chat.UserStatistic{UserID: id, Username: username, MessageCount: perUser[id]})
	}
	return stat, nil
}

type fakeMessageRepo struct{ r *registry }

func (f fakeMessageRepo) Append(_ context.Context, m *message.Message) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	m.ID = int64(len(f.r.messages) + 1)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	cp := *m
	f.r.messages = append(f.r.messages, &cp)
	return nil
}

type fakeParser struct {
	offers []offer.Offer
	err    error
	gotBy  string
}

func (p *fakeParser) Parse(_ []byte, username string, uploadedAt time.Time) ([]offer.Offer, error) {
	p.gotBy = username
	if p.err != nil {
		return nil, p.err
	}
	out := make([]offer.Offer, len(p.offers))
	for i, o := range p.offers {
		o.Username, o.Date = username, uploadedAt
		out[i] = o
	}
	return out, nil
}

type fakeExporter struct {
	mu       sync.Mutex
	exported [][]offer.Offer
	err      error
}

func (e *fakeExporter) Export(_ context.Context, offers []offer.Offer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.exported = append(e.exported, offers)
	return nil
}
