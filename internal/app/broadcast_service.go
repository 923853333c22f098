package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"container_bot/internal/domain/chat"
	domainTelegram "container_bot/internal/domain/telegram"
	"container_bot/internal/domain/user"
	idb "container_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// BroadcastService runs interactive broadcast sessions:
// target selection, then message text, then one fan-out.
type BroadcastService struct {
	sessions SessionStore
	chatRepo chat.Repository
	userRepo user.Repository
	fanout   *FanoutExecutor
	client   domainTelegram.Client
	logger   *logrus.Entry
	nextID   atomic.Uint64
}

func NewBroadcastService(sessions SessionStore, cr chat.Repository, ur user.Repository, fanout *FanoutExecutor, client domainTelegram.Client, logger *logrus.Entry) *BroadcastService {
	return &BroadcastService{
		sessions: sessions,
		chatRepo: cr,
		userRepo: ur,
		fanout:   fanout,
		client:   client,
		logger:   logger.WithField("component", "broadcast_session"),
	}
}

// StartSession replaces any session of the initiator and offers the chat list as targets.
func (s *BroadcastService) StartSession(ctx context.Context, initiatorID, replyChatID int64) error {
	chats, err := s.chatRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list chats for broadcast: %w", err)
	}

	rows := make([][]telebot.InlineButton, 0, len(chats)+2)
	for _, c := range chats {
		rows = append(rows, []telebot.InlineButton{dataButton(c.Name, callbackBroadcastChat, c.ID)})
	}
	rows = append(rows,
		[]telebot.InlineButton{{Text: buttonBroadcastAll, Data: callbackBroadcastAll}},
		[]telebot.InlineButton{{Text: buttonBroadcastCancel, Data: callbackBroadcastCancel}},
	)

	session := Session{
		ID:          s.nextID.Add(1),
		InitiatorID: initiatorID,
		State:       SessionWaitingForTargetSelection,
	}
	s.sessions.Set(session)

	opts := &telebot.SendOptions{ReplyMarkup: &telebot.ReplyMarkup{InlineKeyboard: rows}}
	if err := s.client.SendMessage(replyChatID, textChooseBroadcastChat, opts); err != nil {
		s.removeOwn(session)
		return fmt.Errorf("failed to present broadcast targets: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"operator_id": initiatorID, "chats": len(chats)}).Info("Broadcast session started")
	return nil
}

// IsAwaitingText reports whether the initiator's session waits for the message body.
func (s *BroadcastService) IsAwaitingText(initiatorID int64) bool {
	session, ok := s.sessions.Get(initiatorID)
	return ok && session.State.awaitingText()
}

// SelectChat records a chat as the target of the initiator's session.
func (s *BroadcastService) SelectChat(ctx context.Context, initiatorID, replyChatID, chatID int64) error {
	target, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, idb.ErrChatNotFound) {
			s.sessions.Remove(initiatorID)
			s.notify(replyChatID, textChatNotFound)
			return err
		}
		return fmt.Errorf("failed to load broadcast target chat %d: %w", chatID, err)
	}

	err = s.selectTarget(initiatorID, Target{ChatID: target.ID, ChatName: target.Name}, SessionWaitingForMessageText)
	if err != nil {
		s.reportSessionError(replyChatID, err)
		return err
	}
	s.notify(replyChatID, fmt.Sprintf(textChatSelected, target.Name))
	return nil
}

// SelectAll targets every active subscriber.
func (s *BroadcastService) SelectAll(_ context.Context, initiatorID, replyChatID int64) error {
	if err := s.selectTarget(initiatorID, Target{All: true}, SessionWaitingForMessageTextAll); err != nil {
		s.reportSessionError(replyChatID, err)
		return err
	}
	s.notify(replyChatID, textAllSelected)
	return nil
}

// selectTarget may change the target until the session is sending.
func (s *BroadcastService) selectTarget(initiatorID int64, target Target, next SessionState) error {
	_, err := s.sessions.Compute(initiatorID, func(cur Session, ok bool) (Session, bool, error) {
		if !ok {
			return cur, false, ErrSessionNotFound
		}
		if cur.State == SessionSending {
			return cur, true, ErrSessionStateMismatch
		}
		cur.Target = target
		cur.State = next
		return cur, true, nil
	})
	if err == nil {
		s.logger.WithFields(logrus.Fields{"operator_id": initiatorID, "state": next.String()}).Info("Broadcast target selected")
	}
	return err
}

// Cancel drops the initiator's session. A fan-out already running is not stopped.
func (s *BroadcastService) Cancel(_ context.Context, initiatorID, replyChatID int64) error {
	_, err := s.sessions.Compute(initiatorID, func(cur Session, ok bool) (Session, bool, error) {
		if !ok {
			return cur, false, ErrSessionNotFound
		}
		return cur, false, nil
	})
	if err != nil {
		s.reportSessionError(replyChatID, err)
		return err
	}
	s.logger.WithField("operator_id", initiatorID).Info("Broadcast session cancelled")
	s.notify(replyChatID, textBroadcastCancelled)
	return nil
}

// HandleMessageText sends text to the selected target. The session is held in
// the Sending state for the whole fan-out and removed afterwards.
func (s *BroadcastService) HandleMessageText(ctx context.Context, initiatorID, replyChatID int64, text string) error {
	session, err := s.sessions.Compute(initiatorID, func(cur Session, ok bool) (Session, bool, error) {
		switch {
		case !ok:
			return cur, false, ErrSessionNotFound
		case !cur.State.awaitingText():
			return cur, true, ErrSessionStateMismatch
		case strings.TrimSpace(text) == "":
			return cur, true, ErrEmptyInput
		}
		cur.State = SessionSending
		return cur, true, nil
	})
	if err != nil {
		s.reportSessionError(replyChatID, err)
		return err
	}
	defer s.removeOwn(session)

	logCtx := s.logger.WithFields(logrus.Fields{"operator_id": initiatorID, "all": session.Target.All, "chat_id": session.Target.ChatID})

	recipients, err := s.resolveRecipients(ctx, session.Target)
	if err != nil {
		logCtx.WithError(err).Error("Failed to resolve broadcast recipients")
		s.notify(replyChatID, textBroadcastFailed)
		return err
	}

	if session.Target.All {
		s.notify(replyChatID, fmt.Sprintf(textBroadcastStartingAll, len(recipients)))
	} else {
		s.notify(replyChatID, fmt.Sprintf(textBroadcastStartingChat, session.Target.ChatName, len(recipients)))
	}

	report := s.fanout.Send(ctx, recipients, text, nil)
	logCtx.WithFields(logrus.Fields{"succeeded": report.Succeeded, "failed": report.Failed}).Info("Broadcast session finished")

	if session.Target.All {
		s.notify(replyChatID, fmt.Sprintf(textBroadcastDone, report.Succeeded, report.Failed))
	} else {
		s.notify(replyChatID, fmt.Sprintf(textBroadcastDoneChat, report.Succeeded, report.Failed, session.Target.ChatName))
	}
	return nil
}

// QuickBroadcast sends text to all active subscribers without a session.
func (s *BroadcastService) QuickBroadcast(ctx context.Context, initiatorID, replyChatID int64, text string) (FanoutReport, error) {
	if strings.TrimSpace(text) == "" {
		s.notify(replyChatID, textBroadcastEmpty)
		return FanoutReport{}, ErrEmptyInput
	}
	recipients, err := s.resolveRecipients(ctx, Target{All: true})
	if err != nil {
		s.notify(replyChatID, textBroadcastFailed)
		return FanoutReport{}, err
	}
	report := s.fanout.Send(ctx, recipients, text, nil)
	s.logger.WithFields(logrus.Fields{"operator_id": initiatorID, "succeeded": report.Succeeded, "failed": report.Failed}).Info("Quick broadcast finished")
	s.notify(replyChatID, fmt.Sprintf(textQuickBroadcastDone, report.Succeeded, report.Attempted))
	return report, nil
}

func (s *BroadcastService) resolveRecipients(ctx context.Context, target Target) ([]Recipient, error) {
	if target.All {
		return activeSubscribers(ctx, s.userRepo)
	}
	members, err := s.chatRepo.ListMembers(ctx, target.ChatID, user.TypeSubscriber)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of chat %d: %w", target.ChatID, err)
	}
	recipients := make([]Recipient, 0, len(members))
	for _, m := range members {
		recipients = append(recipients, Recipient{TelegramID: m.TelegramID, Label: m.Username})
	}
	return recipients, nil
}

func activeSubscribers(ctx context.Context, repo user.Repository) ([]Recipient, error) {
	subscriber := user.TypeSubscriber
	users, err := repo.List(ctx, user.ListFilter{OnlyActive: true, Type: &subscriber})
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscribers: %w", err)
	}
	recipients := make([]Recipient, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, Recipient{TelegramID: u.TelegramID, Label: u.Username})
	}
	return recipients, nil
}

// removeOwn removes the initiator's entry only if it is still this session.
func (s *BroadcastService) removeOwn(session Session) {
	_, _ = s.sessions.Compute(session.InitiatorID, func(cur Session, ok bool) (Session, bool, error) {
		if !ok || cur.ID != session.ID {
			return cur, ok, nil
		}
		return cur, false, nil
	})
}

func (s *BroadcastService) reportSessionError(replyChatID int64, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		s.notify(replyChatID, textSessionNotFound)
	case errors.Is(err, ErrSessionStateMismatch):
		s.notify(replyChatID, textSessionStateMismatch)
	case errors.Is(err, ErrEmptyInput):
		s.notify(replyChatID, textBroadcastEmpty)
	}
}

func (s *BroadcastService) notify(chatID int64, text string) {
	if err := s.client.SendMessage(chatID, text, nil); err != nil {
		s.logger.WithError(err).WithField("recipient_id", chatID).Warn("Failed to notify operator")
	}
}
