package obs

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Till identifies the terminal and cashier a request was issued from, as
// asserted by the client headers.
type Till struct {
	TerminalID string
	CashierID  string
}

type tillKey struct{}

// WithTill stores the till on the context.
func WithTill(ctx context.Context, till Till) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tillKey{}, till)
}

// TillFromContext returns the till stored by TillMiddleware, or the zero Till.
func TillFromContext(ctx context.Context) Till {
	if ctx == nil {
		return Till{}
	}
	till, _ := ctx.Value(tillKey{}).(Till)
	return till
}

// TillMiddleware reads the terminal and cashier headers once per request.
func TillMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		till := Till{
			TerminalID: strings.TrimSpace(r.Header.Get(common.TerminalHeader)),
			CashierID:  strings.TrimSpace(r.Header.Get(common.CashierHeader)),
		}
		if till.TerminalID == "" && till.CashierID == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithTill(r.Context(), till)))
	})
}

// Fields appends the till identifiers that are set.
func (t Till) Fields(c zerolog.Context) zerolog.Context {
	if t.TerminalID != "" {
		c = c.Str("terminal_id", t.TerminalID)
	}
	if t.CashierID != "" {
		c = c.Str("cashier_id", t.CashierID)
	}
	return c
}
