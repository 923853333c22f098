package app

import (
	"context"
	"errors"
	"fmt"

	"container_bot/internal/domain/broadcast"
	"container_bot/internal/domain/chat"
	"container_bot/internal/domain/user"
	idb "container_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ScheduleTargets names where timer-driven broadcasts go. Chat ids are internal ids; 0 means unset.
type ScheduleTargets struct {
	DailyChatID        int64
	DailyChannelChatID int64
	WeeklyChatID       int64 // 0 sends the weekly text to every active subscriber
	DailyChatLinks     []Link
	DailyChannelLinks  []Link
}

// ScheduledBroadcaster implements the timer-driven broadcasts. It never touches
// dialog or session state.
type ScheduledBroadcaster struct {
	broadcastRepo broadcast.Repository
	chatRepo      chat.Repository
	userRepo      user.Repository
	fanout        *FanoutExecutor
	targets       ScheduleTargets
	logger        *logrus.Entry
}

func NewScheduledBroadcaster(br broadcast.Repository, cr chat.Repository, ur user.Repository, fanout *FanoutExecutor, targets ScheduleTargets, logger *logrus.Entry) *ScheduledBroadcaster {
	return &ScheduledBroadcaster{
		broadcastRepo: br,
		chatRepo:      cr,
		userRepo:      ur,
		fanout:        fanout,
		targets:       targets,
		logger:        logger.WithField("component", "scheduled_broadcast"),
	}
}

// RunDailyChatBroadcast posts the active daily text to the configured group chat.
func (b *ScheduledBroadcaster) RunDailyChatBroadcast(ctx context.Context) (FanoutReport, error) {
	opts := &telebot.SendOptions{ReplyMarkup: linksKeyboard(b.targets.DailyChatLinks)}
	return b.runChatPost(ctx, broadcast.PeriodDaily, b.targets.DailyChatID, opts)
}

// RunDailyChannelBroadcast posts the active daily channel text, rendered as HTML.
func (b *ScheduledBroadcaster) RunDailyChannelBroadcast(ctx context.Context) (FanoutReport, error) {
	opts := &telebot.SendOptions{
		ParseMode:   telebot.ModeHTML,
		ReplyMarkup: linksKeyboard(b.targets.DailyChannelLinks),
	}
	return b.runChatPost(ctx, broadcast.PeriodDailyChannel, b.targets.DailyChannelChatID, opts)
}

// RunWeeklyBroadcast sends the active weekly text to subscribers, silently.
func (b *ScheduledBroadcaster) RunWeeklyBroadcast(ctx context.Context) (FanoutReport, error) {
	logCtx := b.logger.WithField("period_type", broadcast.PeriodWeekly)

	text, ok, err := b.activeText(ctx, broadcast.PeriodWeekly)
	if err != nil || !ok {
		return FanoutReport{}, err
	}

	subscriber := user.TypeSubscriber
	users, err := b.userRepo.List(ctx, user.ListFilter{OnlyActive: true, Type: &subscriber, ChatID: b.targets.WeeklyChatID})
	if err != nil {
		logCtx.WithError(err).Error("Failed to list weekly recipients")
		return FanoutReport{}, fmt.Errorf("failed to list weekly recipients: %w", err)
	}
	recipients := make([]Recipient, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, Recipient{TelegramID: u.TelegramID, Label: u.Username})
	}

	report := b.fanout.Send(ctx, recipients, text, &telebot.SendOptions{DisableNotification: true})
	logCtx.WithFields(logrus.Fields{"attempted": report.Attempted, "succeeded": report.Succeeded, "failed": report.Failed}).Info("Weekly broadcast finished")
	return report, nil
}

func (b *ScheduledBroadcaster) runChatPost(ctx context.Context, period broadcast.PeriodType, chatID int64, opts *telebot.SendOptions) (FanoutReport, error) {
	logCtx := b.logger.WithFields(logrus.Fields{"period_type": period, "chat_id": chatID})

	text, ok, err := b.activeText(ctx, period)
	if err != nil || !ok {
		return FanoutReport{}, err
	}
	if chatID == 0 {
		logCtx.Warn("Target chat not configured, skipping broadcast")
		return FanoutReport{}, nil
	}

	target, err := b.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, idb.ErrChatNotFound) {
			logCtx.Warn("Target chat not found, skipping broadcast")
			return FanoutReport{}, nil
		}
		return FanoutReport{}, fmt.Errorf("failed to load target chat %d: %w", chatID, err)
	}

	report := b.fanout.Send(ctx, []Recipient{{TelegramID: target.TelegramID, Label: target.Name}}, text, opts)
	logCtx.WithFields(logrus.Fields{"succeeded": report.Succeeded, "failed": report.Failed}).Info("Scheduled chat post finished")
	return report, nil
}

// activeText reports ok=false, with a log line, when the period has no active text.
func (b *ScheduledBroadcaster) activeText(ctx context.Context, period broadcast.PeriodType) (string, bool, error) {
	m, err := b.broadcastRepo.GetActive(ctx, period)
	if err != nil {
		if errors.Is(err, idb.ErrBroadcastMessageNotFound) {
			b.logger.WithField("period_type", period).Info("No active broadcast text, skipping")
			return "", false, nil
		}
		b.logger.WithError(err).WithField("period_type", period).Error("Failed to load active broadcast text")
		return "", false, fmt.Errorf("failed to load active %s text: %w", period, err)
	}
	return m.Text, true, nil
}
