package offer

import "time"

// Offer is one container sale offer uploaded as a spreadsheet row.
type Offer struct {
	Size            string
	Type            string
	Condition       string
	City            string
	Availability    string
	PriceWithTax    *float64
	PriceWithoutTax *float64
	Currency        string
	TransactionType string
	Date            time.Time
	Username        string
}

// Valid reports whether the required columns are filled.
func (o Offer) Valid() bool {
	return o.Size != "" && o.Type != "" && o.City != "" && o.Username != ""
}
