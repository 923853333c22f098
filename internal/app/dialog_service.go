package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"container_bot/internal/domain/broadcast"
	domainTelegram "container_bot/internal/domain/telegram"
	idb "container_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// dialogKind describes one "configure broadcast text" dialog.
type dialogKind struct {
	period        broadcast.PeriodType
	managing      DialogState
	awaiting      DialogState
	currentHeader string
	changeChoice  string
	keptText      string
	emptyText     string
	updatedText   string
}

var (
	weeklyDialog = &dialogKind{
		period:        broadcast.PeriodWeekly,
		managing:      DialogManagingWeeklyText,
		awaiting:      DialogAwaitingNewWeeklyText,
		currentHeader: textCurrentWeeklyHeader,
		changeChoice:  choiceChangeWeeklyText,
		keptText:      textWeeklyKept,
		emptyText:     textWeeklyEmpty,
		updatedText:   textWeeklyUpdated,
	}
	dailyDialog = &dialogKind{
		period:        broadcast.PeriodDaily,
		managing:      DialogManagingDailyText,
		awaiting:      DialogAwaitingNewDailyText,
		currentHeader: textCurrentDailyHeader,
		changeChoice:  choiceChangeDailyText,
		keptText:      textDailyKept,
		emptyText:     textDailyEmpty,
		updatedText:   textDailyUpdated,
	}
)

// dialogStep handles an operator reply while the dialog is in a given state.
type dialogStep func(ctx context.Context, operatorID, chatID int64, reply string, d Dialog) error

// DialogService drives the per-operator dialogs that configure scheduled broadcast texts.
type DialogService struct {
	store         DialogStore
	broadcastRepo broadcast.Repository
	client        domainTelegram.Client
	logger        *logrus.Entry
	steps         map[DialogState]dialogStep
}

func NewDialogService(store DialogStore, br broadcast.Repository, client domainTelegram.Client, logger *logrus.Entry) *DialogService {
	s := &DialogService{
		store:         store,
		broadcastRepo: br,
		client:        client,
		logger:        logger.WithField("component", "dialog"),
	}
	s.steps = make(map[DialogState]dialogStep)
	for _, kind := range []*dialogKind{weeklyDialog, dailyDialog} {
		s.steps[kind.managing] = s.chooseAction(kind)
		s.steps[kind.awaiting] = s.acceptNewText(kind)
	}
	return s
}

// InDialog reports whether the operator has an active dialog.
func (s *DialogService) InDialog(operatorID int64) bool {
	_, ok := s.store.Get(operatorID)
	return ok
}

func (s *DialogService) StartWeeklyDialog(ctx context.Context, operatorID, chatID int64) error {
	return s.start(ctx, weeklyDialog, operatorID, chatID)
}

func (s *DialogService) StartDailyDialog(ctx context.Context, operatorID, chatID int64) error {
	return s.start(ctx, dailyDialog, operatorID, chatID)
}

// start shows the active text with the keep/change choices. Any dialog the
// operator already had is replaced.
func (s *DialogService) start(ctx context.Context, kind *dialogKind, operatorID, chatID int64) error {
	logCtx := s.logger.WithFields(logrus.Fields{"operator_id": operatorID, "period_type": kind.period})

	current := textNotSet
	active, err := s.broadcastRepo.GetActive(ctx, kind.period)
	switch {
	case err == nil:
		current = active.Text
	case errors.Is(err, idb.ErrBroadcastMessageNotFound):
	default:
		logCtx.WithError(err).Error("Failed to load active broadcast text")
		return fmt.Errorf("failed to load active %s text: %w", kind.period, err)
	}

	s.store.Set(operatorID, Dialog{State: kind.managing, CurrentText: current})

	text := fmt.Sprintf("%s\n\n%s\n\n%s", kind.currentHeader, current, textChooseAction)
	opts := &telebot.SendOptions{ReplyMarkup: choiceKeyboard(choiceKeepAsIs, kind.changeChoice)}
	if err := s.client.SendMessage(chatID, text, opts); err != nil {
		s.store.Remove(operatorID)
		logCtx.WithError(err).Error("Failed to present dialog choices")
		return fmt.Errorf("failed to start %s dialog: %w", kind.period, err)
	}
	logCtx.Info("Dialog started")
	return nil
}

// HandleReply advances the operator's dialog with reply.
func (s *DialogService) HandleReply(ctx context.Context, operatorID, chatID int64, reply string) error {
	d, ok := s.store.Get(operatorID)
	if !ok {
		return ErrDialogNotFound
	}
	step, ok := s.steps[d.State]
	if !ok {
		s.store.Remove(operatorID)
		return fmt.Errorf("no handler for dialog state %s: %w", d.State, ErrDialogNotFound)
	}
	return step(ctx, operatorID, chatID, reply, d)
}

func (s *DialogService) chooseAction(kind *dialogKind) dialogStep {
	return func(ctx context.Context, operatorID, chatID int64, reply string, d Dialog) error {
		logCtx := s.logger.WithFields(logrus.Fields{"operator_id": operatorID, "period_type": kind.period})
		switch reply {
		case choiceKeepAsIs:
			s.store.Remove(operatorID)
			logCtx.Info("Broadcast text kept")
			return s.client.SendMessage(chatID, kind.keptText, &telebot.SendOptions{ReplyMarkup: removeKeyboard()})
		case kind.changeChoice:
			s.store.Set(operatorID, Dialog{State: kind.awaiting, CurrentText: d.CurrentText})
			return s.client.SendMessage(chatID, textEnterNewText, &telebot.SendOptions{ReplyMarkup: removeKeyboard()})
		default:
			s.store.Remove(operatorID)
			logCtx.WithField("reply", reply).Info("Unrecognised dialog action")
			return s.client.SendMessage(chatID, textUnknownAction, &telebot.SendOptions{ReplyMarkup: removeKeyboard()})
		}
	}
}

func (s *DialogService) acceptNewText(kind *dialogKind) dialogStep {
	return func(ctx context.Context, operatorID, chatID int64, reply string, _ Dialog) error {
		logCtx := s.logger.WithFields(logrus.Fields{"operator_id": operatorID, "period_type": kind.period})
		if strings.TrimSpace(reply) == "" {
			logCtx.Info("Empty broadcast text, asking again")
			return s.client.SendMessage(chatID, kind.emptyText, nil)
		}

		if err := s.broadcastRepo.Create(ctx, &broadcast.Message{Text: reply, PeriodType: kind.period}); err != nil {
			logCtx.WithError(err).Error("Failed to save broadcast text")
			if sendErr := s.client.SendMessage(chatID, textSaveFailed, nil); sendErr != nil {
				logCtx.WithError(sendErr).Warn("Failed to report save failure")
			}
			return fmt.Errorf("failed to save %s text: %w", kind.period, err)
		}

		s.store.Remove(operatorID)
		logCtx.Info("Broadcast text updated")
		return s.client.SendMessage(chatID, kind.updatedText, nil)
	}
}

// SetWeeklyText stores text as the active weekly text without a dialog.
func (s *DialogService) SetWeeklyText(ctx context.Context, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		if err := s.client.SendMessage(chatID, textWeeklyTextEmpty, nil); err != nil {
			return err
		}
		return ErrEmptyInput
	}
	if err := s.broadcastRepo.Create(ctx, &broadcast.Message{Text: text, PeriodType: broadcast.PeriodWeekly}); err != nil {
		return fmt.Errorf("failed to save weekly text: %w", err)
	}
	return s.client.SendMessage(chatID, textWeeklySet, nil)
}
