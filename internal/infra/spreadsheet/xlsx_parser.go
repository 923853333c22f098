package spreadsheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"container_bot/internal/domain/offer"

	"github.com/xuri/excelize/v2"
)

// Column order of the offer template.
const (
	colSize = iota
	colType
	colCondition
	colCity
	colAvailability
	colPriceWithTax
	colPriceWithoutTax
	colCurrency
	colTransactionType
)

// XLSXParser reads offers from the first sheet of an xlsx workbook. The first row is a header.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser { return &XLSXParser{} }

func (p *XLSXParser) Parse(content []byte, username string, uploadedAt time.Time) ([]offer.Offer, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	offers := make([]offer.Offer, 0, len(rows)-1)
	for _, row := range rows[1:] {
		o := offer.Offer{
			Size:            cell(row, colSize),
			Type:            cell(row, colType),
			Condition:       cell(row, colCondition),
			City:            cell(row, colCity),
			Availability:    cell(row, colAvailability),
			PriceWithTax:    price(cell(row, colPriceWithTax)),
			PriceWithoutTax: price(cell(row, colPriceWithoutTax)),
			Currency:        cell(row, colCurrency),
			TransactionType: cell(row, colTransactionType),
			Date:            uploadedAt,
			Username:        username,
		}
		if !o.Valid() {
			continue
		}
		offers = append(offers, o)
	}
	return offers, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// price accepts "1 200,50" and "1200.50"; anything else is no price.
func price(s string) *float64 {
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
