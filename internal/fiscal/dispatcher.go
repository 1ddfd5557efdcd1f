package fiscal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/db"
	"github.com/noah-isme/backend-pos/internal/queue"
)

const (
	TaskInvoice    = "fiscal:invoice"
	TaskCreditNote = "fiscal:credit_note"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, t queue.Task) error
}

type taskPayload struct {
	SaleID   string `json:"saleId,omitempty"`
	ReturnID string `json:"returnId,omitempty"`
}

// Dispatcher hands committed sales and returns to the fiscal service, through
// the task queue when one is configured and inline otherwise.
type Dispatcher struct {
	Queue       Enqueuer
	Svc         *Service
	MaxAttempts int
	Logger      zerolog.Logger
}

// DispatchInvoice schedules the invoice of saleID.
func (d *Dispatcher) DispatchInvoice(ctx context.Context, saleID pgtype.UUID) error {
	if d.Queue == nil {
		_, err := d.Svc.IssueInvoice(ctx, saleID)
		return err
	}
	return d.enqueue(ctx, TaskInvoice, taskPayload{SaleID: db.UUIDString(saleID)}, db.UUIDString(saleID))
}

// DispatchCreditNote schedules the credit note of returnID.
func (d *Dispatcher) DispatchCreditNote(ctx context.Context, returnID pgtype.UUID) error {
	if d.Queue == nil {
		_, err := d.Svc.IssueCreditNote(ctx, returnID)
		return err
	}
	return d.enqueue(ctx, TaskCreditNote, taskPayload{ReturnID: db.UUIDString(returnID)}, db.UUIDString(returnID))
}

func (d *Dispatcher) enqueue(ctx context.Context, kind string, p taskPayload, key string) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	attempts := d.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}
	return d.Queue.Enqueue(ctx, queue.Task{Kind: kind, Payload: raw, IdempotencyKey: key, MaxAttempts: attempts})
}

// Register installs the fiscal task handlers on mux.
func (d *Dispatcher) Register(mux *queue.Mux) {
	mux.Handle(TaskInvoice, d.handleInvoice)
	mux.Handle(TaskCreditNote, d.handleCreditNote)
}

func (d *Dispatcher) handleInvoice(ctx context.Context, t queue.Task) error {
	id, err := decodeID(t.Payload, func(p taskPayload) string { return p.SaleID })
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	_, err = d.Svc.IssueInvoice(ctx, id)
	return err
}

func (d *Dispatcher) handleCreditNote(ctx context.Context, t queue.Task) error {
	id, err := decodeID(t.Payload, func(p taskPayload) string { return p.ReturnID })
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	_, err = d.Svc.IssueCreditNote(ctx, id)
	return err
}

var errBadPayload = errors.New("fiscal: malformed task payload")

func decodeID(raw []byte, pick func(taskPayload) string) (pgtype.UUID, error) {
	var p taskPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	id, err := db.ParseUUID(pick(p))
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return id, nil
}
