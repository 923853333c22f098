package app

import (
	"context"
	"fmt"
	"time"

	"container_bot/internal/domain/chat"
	"container_bot/internal/domain/message"
	"container_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
)

const untitledChat = "no name group"

// RegistrationService keeps the user/chat registry and the message log current.
type RegistrationService struct {
	userRepo    user.Repository
	chatRepo    chat.Repository
	messageRepo message.Repository
	logger      *logrus.Entry
	now         func() time.Time
}

func NewRegistrationService(ur user.Repository, cr chat.Repository, mr message.Repository, logger *logrus.Entry) *RegistrationService {
	return &RegistrationService{
		userRepo:    ur,
		chatRepo:    cr,
		messageRepo: mr,
		logger:      logger.WithField("component", "registration"),
		now:         time.Now,
	}
}

// RegisterSubscriber records a user who wrote to the bot privately.
func (s *RegistrationService) RegisterSubscriber(ctx context.Context, sender *Sender) (*user.User, error) {
	u := &user.User{
		TelegramID:   sender.ID,
		Username:     sender.Username,
		LastActivity: s.now(),
		State:        user.StateActive,
		Type:         user.TypeSubscriber,
	}
	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to register subscriber %d: %w", sender.ID, err)
	}
	return u, nil
}

// RecordGroupMessage upserts the chat and its member and appends the message.
func (s *RegistrationService) RecordGroupMessage(ctx context.Context, ev *Event) error {
	title := ev.Chat.Title
	if title == "" {
		title = untitledChat
	}
	c, err := s.chatRepo.Upsert(ctx, ev.Chat.ID, title)
	if err != nil {
		return fmt.Errorf("failed to upsert chat %d: %w", ev.Chat.ID, err)
	}

	u := &user.User{
		TelegramID:   ev.Sender.ID,
		Username:     ev.Sender.Username,
		LastActivity: s.now(),
		State:        user.StateActive,
		Type:         user.TypeAverage,
	}
	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", ev.Sender.ID, err)
	}

	if err := s.chatRepo.LinkUser(ctx, c.ID, u.ID); err != nil {
		return fmt.Errorf("failed to link user %d to chat %d: %w", u.ID, c.ID, err)
	}

	content := ev.Text
	if content == "" && ev.Document != nil {
		content = ev.Document.FileName
	}
	if err := s.messageRepo.Append(ctx, &message.Message{UserID: u.ID, ChatID: c.ID, Content: content}); err != nil {
		return fmt.Errorf("failed to append message of user %d: %w", u.ID, err)
	}

	s.logger.WithFields(logrus.Fields{"chat_id": c.ID, "user_id": u.ID}).Debug("Group message recorded")
	return nil
}
