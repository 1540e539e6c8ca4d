// =============================================================================
// Ledger Checker - Pipeline
// =============================================================================
//
// This module runs the whole check on one ledger snapshot. It is the only
// entry point the CLI (or any other front end) needs.
//
// PIPELINE:
//   1. Clone the input ledger (the caller's snapshot is never modified)
//   2. Normalize text and amounts, fill purchase document numbers
//   3. Group rows into documents
//   4. Convert non-EUR sales documents to EUR
//   5. Validate every document, in first-seen order
//   6. Build the report and prune the ledger for export
//
// STATELESSNESS:
//   A Checker holds configuration only. Running it on its own output finds
//   no new correction, so a reviewer can edit, re-run and export at will.
//
// CONCURRENCY:
//   Run is serial. Rate lookups are issued one document at a time. Separate
//   Run calls share nothing and can run on separate goroutines.
//
// =============================================================================

package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/ledger-checker/internal/currency"
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/ginjaninja78/ledger-checker/internal/normalizer"
	"github.com/ginjaninja78/ledger-checker/internal/report"
	"github.com/ginjaninja78/ledger-checker/internal/validation"
)

// ErrNilLedger is returned when Run is given no ledger.
var ErrNilLedger = errors.New("nil ledger")

// Checker runs the check pipeline.
type Checker struct {
	// rates serves the sales currency conversion.
	rates currency.RateSource

	logger Logger
}

// New creates a Checker. A nil rates source selects the public rate service.
func New(rates currency.RateSource) *Checker {
	if rates == nil {
		rates = currency.NewFrankfurterClient("", 0)
	}
	return &Checker{
		rates:  rates,
		logger: nopLogger{},
	}
}

// WithLogger sets the operational logger and returns c.
func (c *Checker) WithLogger(l Logger) *Checker {
	if l != nil {
		c.logger = l
	}
	return c
}

// Run checks a snapshot of in and returns the report, whose Ledger is the
// corrected, pruned copy.
//
// Only a missing or unknown-kind ledger, or a cancelled context, is returned
// as an error. Every rule violation and rate failure ends up in the report.
func (c *Checker) Run(ctx context.Context, in *ledger.Ledger) (report.Report, error) {
	if in == nil {
		return report.Report{}, ErrNilLedger
	}
	if !in.Kind.Valid() {
		return report.Report{}, fmt.Errorf("unknown ledger kind %q", in.Kind)
	}

	startTime := time.Now()
	l := in.Clone()
	b := report.NewBuilder(l.Kind)

	// =========================================================================
	// STEP 1: NORMALIZE
	// =========================================================================

	stats := normalizer.New(l.Kind, l.Layout).Normalize(l)
	b.Normalized(stats)

	c.logger.Debug("Normalized %d rows (%d document numbers filled, %d VAT counterparties cleared)",
		len(l.Rows), stats.FilledDocNumbers, stats.ClearedVAT)
	if stats.CoercedAmounts > 0 {
		c.logger.Warn("%d amount cells could not be parsed and were read as 0", stats.CoercedAmounts)
	}

	// =========================================================================
	// STEP 2: GROUP
	// =========================================================================

	if l.Kind == ledger.KindSales {
		l.StampWorkingOrder()
	}
	docs := ledger.Group(l.Rows, l.Layout.DocNumber)
	c.logger.Debug("Grouped into %d documents", len(docs))

	// =========================================================================
	// STEP 3: CURRENCY CONVERSION (SALES)
	// =========================================================================
	// Conversion rescales rows in place; docs points at the same rows and
	// needs no regrouping.

	if l.Kind == ledger.KindSales {
		events := currency.NewConverter(c.rates).Convert(ctx, l, docs)
		for _, ev := range events {
			if ev.Err != nil {
				c.logger.Warn("Document %s left in %s: %v", ev.Document, ev.Symbol, ev.Err)
			} else {
				c.logger.Debug("Document %s converted from %s at %v", ev.Document, ev.Code, ev.Rate)
			}
		}
		b.Conversions(events)

		if err := ctx.Err(); err != nil {
			return report.Report{}, fmt.Errorf("currency conversion interrupted: %w", err)
		}
	}

	// =========================================================================
	// STEP 4: VALIDATE
	// =========================================================================

	v := validation.New(l.Kind, l.Layout)
	for _, doc := range docs {
		b.Document(v.Validate(doc))
	}

	// =========================================================================
	// STEP 5: REPORT
	// =========================================================================

	rep := b.Build(l)

	c.logger.Info("Checked %d %s documents in %s: %d failing, %d empty rows removed",
		len(docs), l.Kind, time.Since(startTime).Round(time.Millisecond), rep.FailingCount, rep.Deleted)

	return rep, nil
}
