package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"container_bot/internal/domain/chat"
	domainTelegram "container_bot/internal/domain/telegram"
	"container_bot/internal/domain/user"
	idb "container_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// StatisticsService answers the operator statistic commands and buttons.
type StatisticsService struct {
	chatRepo chat.Repository
	userRepo user.Repository
	client   domainTelegram.Client
	logger   *logrus.Entry
	now      func() time.Time
}

func NewStatisticsService(cr chat.Repository, ur user.Repository, client domainTelegram.Client, logger *logrus.Entry) *StatisticsService {
	return &StatisticsService{
		chatRepo: cr,
		userRepo: ur,
		client:   client,
		logger:   logger.WithField("component", "statistics"),
		now:      time.Now,
	}
}

// ListChats sends every known chat with a `chat <id>` button each.
func (s *StatisticsService) ListChats(ctx context.Context, replyChatID int64) error {
	chats, err := s.chatRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}
	if len(chats) == 0 {
		return s.client.SendMessage(replyChatID, textNoChats, nil)
	}
	sort.SliceStable(chats, func(i, j int) bool { return chats[i].Name < chats[j].Name })

	var b strings.Builder
	b.WriteString(textChatListHeader)
	buttons := make([]telebot.InlineButton, 0, len(chats))
	for _, c := range chats {
		fmt.Fprintf(&b, "%s\nID: %d\n\n", c.Name, c.ID)
		buttons = append(buttons, dataButton(c.Name, callbackChatStatistic, c.ID))
	}
	b.WriteString(textChatListFooter)

	opts := &telebot.SendOptions{ReplyMarkup: &telebot.ReplyMarkup{InlineKeyboard: inlineRows(buttons, buttonsPerRow)}}
	return s.client.SendMessage(replyChatID, b.String(), opts)
}

// ListUsers sends every active user with a `user <id>` button each.
func (s *StatisticsService) ListUsers(ctx context.Context, replyChatID int64) error {
	users, err := s.userRepo.List(ctx, user.ListFilter{OnlyActive: true})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		return s.client.SendMessage(replyChatID, textNoUsers, nil)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	var b strings.Builder
	b.WriteString(textUserListHeader)
	buttons := make([]telebot.InlineButton, 0, len(users))
	for _, u := range users {
		label := displayName(u.Username, u.ID)
		fmt.Fprintf(&b, "%s\nID: %d\n\n", label, u.ID)
		buttons = append(buttons, dataButton(label, callbackUserStatistic, u.ID))
	}
	b.WriteString(textUserListFooter)

	opts := &telebot.SendOptions{ReplyMarkup: &telebot.ReplyMarkup{InlineKeyboard: inlineRows(buttons, buttonsPerRow)}}
	return s.client.SendMessage(replyChatID, b.String(), opts)
}

// SendChatStatistic reports the chat's messages of the current calendar month.
func (s *StatisticsService) SendChatStatistic(ctx context.Context, replyChatID, chatID int64) error {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stat, err := s.chatRepo.GetStatistic(ctx, chatID, monthStart)
	if err != nil {
		if errors.Is(err, idb.ErrChatNotFound) {
			return s.client.SendMessage(replyChatID, fmt.Sprintf(textStatChatNotFound, chatID), nil)
		}
		return fmt.Errorf("failed to get statistic of chat %d: %w", chatID, err)
	}
	if stat.MessageCount == 0 {
		return s.client.SendMessage(replyChatID, fmt.Sprintf(textChatHasNoHistory, chatID), nil)
	}
	s.logger.WithFields(logrus.Fields{"chat_id": chatID, "messages": stat.MessageCount}).Debug("Chat statistic requested")
	return s.client.SendMessage(replyChatID, formatChatStatistic(stat), nil)
}

// SendUserStatistic reports the user's messages per chat.
func (s *StatisticsService) SendUserStatistic(ctx context.Context, replyChatID, userID int64) error {
	stat, err := s.userRepo.GetStatistic(ctx, userID)
	if err != nil {
		if errors.Is(err, idb.ErrUserNotFound) {
			return s.client.SendMessage(replyChatID, fmt.Sprintf(textStatUserNotFound, userID), nil)
		}
		return fmt.Errorf("failed to get statistic of user %d: %w", userID, err)
	}
	return s.client.SendMessage(replyChatID, formatUserStatistic(stat), nil)
}

func formatChatStatistic(stat *chat.Statistic) string {
	users := append([]chat.UserStatistic(nil), stat.Users...)
	sort.SliceStable(users, func(i, j int) bool { return users[i].MessageCount > users[j].MessageCount })

	var b strings.Builder
	b.WriteString("СТАТИСТИКА ЧАТА\n")
	fmt.Fprintf(&b, "Чат: %s\n", stat.ChatName)
	fmt.Fprintf(&b, "Сообщений всего: %d\n", stat.MessageCount)
	fmt.Fprintf(&b, "Участников: %d\n\n", len(users))
	b.WriteString("СТАТИСТИКА ПО УЧАСТНИКАМ:\n")
	for _, u := range users {
		fmt.Fprintf(&b, "- %s: %d сообщ. (%.1f%%)\n", displayName(u.Username, u.UserID), u.MessageCount, percent(u.MessageCount, stat.MessageCount))
	}
	return b.String()
}

func formatUserStatistic(stat *user.Statistic) string {
	chats := append([]user.ChatStatistic(nil), stat.Chats...)
	sort.SliceStable(chats, func(i, j int) bool { return chats[i].MessageCount > chats[j].MessageCount })

	username := stat.Username
	if username == "" {
		username = "Unknown"
	}

	var b strings.Builder
	b.WriteString("СТАТИСТИКА ПОЛЬЗОВАТЕЛЯ\n")
	fmt.Fprintf(&b, "Пользователь: %s\n", username)
	fmt.Fprintf(&b, "Всего сообщений: %d\n\n", stat.MessageCount)
	b.WriteString("РАСПРЕДЕЛЕНИЕ ПО ЧАТАМ:\n")
	for _, c := range chats {
		fmt.Fprintf(&b, "- %s: %d сообщ. (%.1f%%)\n", c.ChatName, c.MessageCount, percent(c.MessageCount, stat.MessageCount))
	}
	return b.String()
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func displayName(username string, id int64) string {
	if username != "" {
		return username
	}
	return fmt.Sprintf("id%d", id)
}
