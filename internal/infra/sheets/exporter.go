package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"container_bot/internal/domain/offer"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const dateLayout = "02.01.2006 15:04"

var ErrPermissionDenied = fmt.Errorf("spreadsheet access denied")
var ErrSpreadsheetNotFound = fmt.Errorf("spreadsheet not found")

type Config struct {
	CredentialsJSON string // service account key; empty uses only the given client options
	SpreadsheetID   string
	Range           string
}

// Exporter appends offers as rows of a Google spreadsheet.
type Exporter struct {
	service       *gsheets.Service
	spreadsheetID string
	rng           string
	logger        *logrus.Entry
}

func NewExporter(ctx context.Context, cfg Config, logger *logrus.Entry, opts ...option.ClientOption) (*Exporter, error) {
	if cfg.CredentialsJSON != "" {
		opts = append(opts,
			option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
			option.WithScopes(gsheets.SpreadsheetsScope),
		)
	}
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Exporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		rng:           cfg.Range,
		logger:        logger.WithField("component", "sheets_exporter"),
	}, nil
}

// Export appends one row per offer below the existing data.
func (e *Exporter) Export(ctx context.Context, offers []offer.Offer) error {
	if len(offers) == 0 {
		return nil
	}

	resp, err := e.service.Spreadsheets.Values.
		Append(e.spreadsheetID, e.rng, &gsheets.ValueRange{Values: offerRows(offers)}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			switch gerr.Code {
			case http.StatusForbidden:
				return fmt.Errorf("%w: %s", ErrPermissionDenied, gerr.Message)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrSpreadsheetNotFound, e.spreadsheetID)
			}
		}
		return fmt.Errorf("failed to append offers: %w", err)
	}

	logCtx := e.logger.WithField("rows", len(offers))
	if resp.Updates != nil {
		logCtx = logCtx.WithField("updated_range", resp.Updates.UpdatedRange)
	}
	logCtx.Info("Offers appended to spreadsheet")
	return nil
}

// offerRows lays offers out as size, type, condition, city, date, username,
// availability, prices, currency, transaction type.
func offerRows(offers []offer.Offer) [][]interface{} {
	rows := make([][]interface{}, 0, len(offers))
	for _, o := range offers {
		rows = append(rows, []interface{}{
			o.Size,
			o.Type,
			o.Condition,
			o.City,
			o.Date.Format(dateLayout),
			o.Username,
			o.Availability,
			priceValue(o.PriceWithTax),
			priceValue(o.PriceWithoutTax),
			o.Currency,
			o.TransactionType,
		})
	}
	return rows
}

func priceValue(p *float64) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
