package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/events"
)

const printWidth = 40

// Printer renders a text receipt for every checked-out sale. It is subscribed
// to sale.checked_out and never fails the sale.
type Printer struct {
	Svc    *Service
	Out    io.Writer
	Logger zerolog.Logger

	mu sync.Mutex
}

var _ events.Notifier = (*Printer)(nil)

type checkedOut struct {
	ReceiptNumber string `json:"receiptNumber"`
}

// Notify prints the receipt referenced by the event payload.
func (p *Printer) Notify(ctx context.Context, ev dbgen.DomainEvent) error {
	var payload checkedOut
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return fmt.Errorf("receipt: decode event: %w", err)
	}
	j, err := p.Svc.Get(ctx, payload.ReceiptNumber)
	if err != nil {
		return fmt.Errorf("receipt: load %s: %w", payload.ReceiptNumber, err)
	}
	text := Render(j)
	if p.Out != nil {
		p.mu.Lock()
		_, err = io.WriteString(p.Out, text)
		p.mu.Unlock()
		if err != nil {
			return fmt.Errorf("receipt: print %s: %w", j.ReceiptNumber, err)
		}
	}
	p.Logger.Info().Str("receipt_number", j.ReceiptNumber).Str("sale_id", j.SaleID).Msg("receipt printed")
	return nil
}

// Render formats a journal as a fixed-width text receipt.
func Render(j Journal) string {
	var b strings.Builder
	rule := strings.Repeat("-", printWidth) + "\n"
	b.WriteString(j.ReceiptNumber + "\n")
	b.WriteString(j.CreatedAt.UTC().Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(rule)
	for _, l := range j.Lines {
		row(&b, fmt.Sprintf("%d x%s @ %s", l.LineNumber, l.Quantity, l.UnitPrice), l.GrossAmount)
		if l.Discount != "0.00" {
			row(&b, "  discount", "-"+l.Discount)
		}
	}
	b.WriteString(rule)
	row(&b, "Subtotal", j.Subtotal)
	if j.Discount != "0.00" {
		row(&b, "Discount", "-"+j.Discount)
	}
	row(&b, "Tax", j.Tax)
	if j.RoundingAdjustment != "0.00" {
		row(&b, "Rounding", j.RoundingAdjustment)
	}
	row(&b, "TOTAL", j.Payable)
	if j.Payment != nil {
		for _, a := range j.Payment.Allocations {
			row(&b, a.TenderType, a.Amount)
		}
		row(&b, "Change", j.Payment.ChangeAmount)
	}
	b.WriteString(rule)
	return b.String()
}

func row(b *strings.Builder, label, amount string) {
	pad := printWidth - len(label) - len(amount)
	if pad < 1 {
		pad = 1
	}
	b.WriteString(label + strings.Repeat(" ", pad) + amount + "\n")
}
