// Package receipt issues gapless per-terminal receipt numbers and renders sale journals.
package receipt

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

const (
	seriesPrefix    = "RCPT-"
	maxSeriesLength = 40
)

var seriesInvalid = regexp.MustCompile(`[^A-Z0-9-]+`)

// Queries is the storage surface of the receipt sequence.
type Queries interface {
	EnsureReceiptSeries(ctx context.Context, arg dbgen.EnsureReceiptSeriesParams) error
	NextReceiptNumber(ctx context.Context, terminalID pgtype.UUID) (dbgen.NextReceiptNumberRow, error)
}

// SeriesCode derives the series code of a terminal.
func SeriesCode(terminalCode string) string {
	code := strings.ToUpper(strings.TrimSpace(terminalCode))
	code = seriesInvalid.ReplaceAllString(code, "-")
	code = strings.Trim(code, "-")
	if code == "" {
		code = "TERMINAL"
	}
	series := seriesPrefix + code
	if len(series) > maxSeriesLength {
		series = series[:maxSeriesLength]
	}
	return series
}

// Format renders a receipt number.
func Format(series string, n int64) string {
	return fmt.Sprintf("%s-%08d", series, n)
}

// Next takes the next number of the terminal's series inside the caller's
// transaction. The series row stays locked until commit, so a rollback
// returns the number.
func Next(ctx context.Context, q Queries, terminal dbgen.Terminal) (string, error) {
	if err := q.EnsureReceiptSeries(ctx, dbgen.EnsureReceiptSeriesParams{
		TerminalID: terminal.ID,
		SeriesCode: SeriesCode(terminal.Code),
	}); err != nil {
		return "", common.Internal("unable to prepare receipt series", err)
	}
	row, err := q.NextReceiptNumber(ctx, terminal.ID)
	if err != nil {
		if db.IsLockConflict(err) {
			return "", common.Conflict("receipt series is busy, retry")
		}
		return "", common.Internal("unable to issue receipt number", err)
	}
	return Format(row.SeriesCode, row.Number), nil
}
