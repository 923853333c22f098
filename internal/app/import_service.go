package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"container_bot/internal/domain/offer"
	domainTelegram "container_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// OfferParser turns an uploaded spreadsheet into offers.
type OfferParser interface {
	Parse(content []byte, username string, uploadedAt time.Time) ([]offer.Offer, error)
}

// OfferExporter forwards parsed offers to the shared sheet.
type OfferExporter interface {
	Export(ctx context.Context, offers []offer.Offer) error
}

// ImportService handles uploaded offer documents.
type ImportService struct {
	parsers  map[string]OfferParser // by lower-case extension
	exporter OfferExporter          // nil disables export
	client   domainTelegram.Client
	logger   *logrus.Entry
	now      func() time.Time
}

func NewImportService(parsers map[string]OfferParser, exporter OfferExporter, client domainTelegram.Client, logger *logrus.Entry) *ImportService {
	return &ImportService{
		parsers:  parsers,
		exporter: exporter,
		client:   client,
		logger:   logger.WithField("component", "import"),
		now:      time.Now,
	}
}

// HandleDocument downloads, parses and exports one uploaded document.
// Operators are told about export failures; other senders never see internal errors.
func (s *ImportService) HandleDocument(ctx context.Context, ev *Event, isOperator bool) error {
	doc := ev.Document
	replyTo := ev.ReplyChatID()
	logCtx := s.logger.WithFields(logrus.Fields{"sender_id": ev.Sender.ID, "file_name": doc.FileName})

	parser, ok := s.parsers[strings.ToLower(filepath.Ext(doc.FileName))]
	if !ok {
		logCtx.Info("Unsupported document uploaded")
		// Group members share arbitrary files; only private uploads get an answer.
		if ev.IsPrivate() {
			if err := s.client.SendMessage(replyTo, textUnsupportedFile, nil); err != nil {
				logCtx.WithError(err).Warn("Failed to report unsupported document")
			}
		}
		return ErrUnsupportedFormat
	}

	content, err := s.client.DownloadFile(doc.FileID)
	if err != nil {
		return fmt.Errorf("failed to download document %s: %w", doc.FileID, err)
	}

	offers, err := parser.Parse(content, "@"+ev.Sender.Username, s.now())
	if err != nil {
		return fmt.Errorf("failed to parse document %s: %w", doc.FileName, err)
	}
	if len(offers) == 0 {
		logCtx.Info("Document has no offers")
		return nil
	}

	if s.exporter == nil {
		logCtx.WithField("offers", len(offers)).Warn("Offer export not configured, dropping parsed offers")
		return nil
	}
	if err := s.exporter.Export(ctx, offers); err != nil {
		if isOperator {
			if sendErr := s.client.SendMessage(replyTo, textExportFailed, nil); sendErr != nil {
				logCtx.WithError(sendErr).Warn("Failed to report export failure")
			}
		}
		return fmt.Errorf("failed to export %d offers: %w", len(offers), err)
	}

	logCtx.WithField("offers", len(offers)).Info("Offers exported")
	return s.client.SendMessage(replyTo, textSheetsWritten, nil)
}
