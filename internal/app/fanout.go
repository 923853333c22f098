package app

import (
	"context"
	"fmt"
	"time"

	domainTelegram "container_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// DefaultFanoutPacing keeps bulk sends under the gateway's per-bot rate limit.
const DefaultFanoutPacing = 50 * time.Millisecond

// Recipient is one fan-out destination.
type Recipient struct {
	TelegramID int64
	Label      string
}

// FanoutReport summarises one fan-out.
type FanoutReport struct {
	Attempted int
	Succeeded int
	Failed    int
}

// FanoutExecutor sends one text to many recipients, one at a time, in order.
// A failing recipient is counted and skipped. Sends are spaced by the pacing
// interval whatever their outcome; the limiter is shared by concurrent fan-outs.
type FanoutExecutor struct {
	client  domainTelegram.Client
	limiter *rate.Limiter
	logger  *logrus.Entry
}

func NewFanoutExecutor(client domainTelegram.Client, pacing time.Duration, logger *logrus.Entry) *FanoutExecutor {
	limit := rate.Inf
	if pacing > 0 {
		limit = rate.Every(pacing)
	}
	return &FanoutExecutor{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.WithField("component", "fanout"),
	}
}

// Send delivers text to recipients. It stops early only when ctx is done;
// recipients not reached then are not counted as attempted.
func (f *FanoutExecutor) Send(ctx context.Context, recipients []Recipient, text string, options *telebot.SendOptions) FanoutReport {
	var report FanoutReport
	for i, r := range recipients {
		if err := f.limiter.Wait(ctx); err != nil {
			f.logger.WithError(err).WithField("remaining", len(recipients)-i).Warn("Fan-out interrupted")
			break
		}
		report.Attempted++
		if err := f.sendOne(r, text, options); err != nil {
			report.Failed++
			f.logger.WithError(err).WithField("recipient_id", r.TelegramID).Warn("Failed to deliver broadcast message")
			continue
		}
		report.Succeeded++
	}

	f.logger.WithFields(logrus.Fields{
		"attempted": report.Attempted,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("Fan-out finished")
	return report
}

func (f *FanoutExecutor) sendOne(r Recipient, text string, options *telebot.SendOptions) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while sending: %v", p)
		}
	}()
	var opts *telebot.SendOptions
	if options != nil {
		cp := *options
		opts = &cp
	}
	return f.client.SendMessage(r.TelegramID, text, opts)
}
