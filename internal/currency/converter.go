// =============================================================================
// Ledger Checker - Currency Converter
// =============================================================================
//
// Sales invoices may be issued in a foreign currency. Before validation every
// non-EUR document is converted to EUR with the reference rate of its invoice
// date, so that the EUR-only check can pass.
//
// PROCESSING:
//   For each document, in first-seen order:
//     1. Skip if the first row's currency is "€"
//     2. Resolve the symbol to an ISO code; "EUR" only rewrites the cells
//     3. Parse the first row's invoice date
//     4. Fetch the day's rate (one serial request, no retry)
//     5. Multiply every row's debit and credit, rewrite currency to "€"
//
// ERROR HANDLING:
//   Any failure in steps 2 to 4 is recorded as an Event on that document and
//   the document is left untouched. The run continues with the next document;
//   the validator later reports the document as not in EUR.
//
// =============================================================================

package currency

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// targetCode is the ISO code every document is converted to.
const targetCode = "EUR"

// Event is the outcome of converting one non-EUR document.
type Event struct {
	// Document is the document number.
	Document string

	// Symbol is the currency value found on the first row.
	Symbol string

	// Code is the resolved ISO code, empty if unresolved.
	Code string

	// Rate is the applied rate; zero when Err is set.
	Rate float64

	// Err is set when the document was left unconverted.
	Err error
}

// Converted reports whether the document's amounts were rescaled.
func (e Event) Converted() bool {
	return e.Err == nil
}

// Converter rescales non-EUR sales documents.
type Converter struct {
	rates   RateSource
	symbols SymbolTable
}

// NewConverter creates a Converter using the given rate source and the
// default symbol table.
func NewConverter(rates RateSource) *Converter {
	return &Converter{rates: rates, symbols: DefaultSymbols()}
}

// Convert converts every non-EUR document of l in place and returns one
// event per non-EUR document, in document order.
func (c *Converter) Convert(ctx context.Context, l *ledger.Ledger, docs []ledger.Document) []Event {
	layout := l.Layout
	var events []Event

	for _, doc := range docs {
		if len(doc.Rows) == 0 {
			continue
		}
		first := doc.Rows[0]
		symbol := strings.TrimSpace(first.Get(layout.Currency))
		if symbol == ledger.EuroSymbol {
			continue
		}

		ev := Event{Document: doc.Number, Symbol: symbol}

		code, ok := c.symbols.Resolve(symbol)
		if !ok {
			ev.Err = fmt.Errorf("%w '%s'", ErrUnknownSymbol, symbol)
			events = append(events, ev)
			continue
		}
		if code == targetCode {
			for _, r := range doc.Rows {
				r.Set(layout.Currency, ledger.EuroSymbol)
			}
			continue
		}
		ev.Code = code

		day, err := ParseInvoiceDate(first.Get(layout.InvoiceDate))
		if err != nil {
			ev.Err = err
			events = append(events, ev)
			continue
		}

		rate, err := c.rates.Rate(ctx, day, code, targetCode)
		if err != nil {
			ev.Err = err
			events = append(events, ev)
			continue
		}

		factor := decimal.NewFromFloat(rate)
		for _, r := range doc.Rows {
			r.Debit = decimal.NewFromFloat(r.Debit).Mul(factor).InexactFloat64()
			r.Credit = decimal.NewFromFloat(r.Credit).Mul(factor).InexactFloat64()
			r.Set(layout.Currency, ledger.EuroSymbol)
		}
		ev.Rate = rate
		events = append(events, ev)
	}

	return events
}

// invoiceDateLayouts are tried in order. Day-first comes before ISO because
// the exports are French.
var invoiceDateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseInvoiceDate parses a spreadsheet date: DD/MM/YYYY, ISO, or an Excel
// serial day number when the cell was read without its number format.
func ParseInvoiceDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, fmt.Errorf("invalid invoice date '%s'", value)
}
