package payment

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/money"
)

// Payment statuses.
const (
	StatusAuthorized = "AUTHORIZED"
	StatusCaptured   = "CAPTURED"
	StatusVoided     = "VOIDED"
	StatusRefunded   = "REFUNDED"
)

// Transition actions.
const (
	ActionCapture = "CAPTURE"
	ActionVoid    = "VOID"
	ActionRefund  = "REFUND"
)

type edge struct{ from, action string }

var transitions = map[edge]string{
	{StatusAuthorized, ActionCapture}: StatusCaptured,
	{StatusAuthorized, ActionVoid}:    StatusVoided,
	{StatusCaptured, ActionRefund}:    StatusRefunded,
}

// Next returns the status reached by applying action to from.
func Next(from, action string) (string, bool) {
	to, ok := transitions[edge{from, action}]
	return to, ok
}

// AllocationView renders a payment allocation.
type AllocationView struct {
	Seq           int32   `json:"seq"`
	TenderType    string  `json:"tenderType"`
	Amount        string  `json:"amount"`
	AppliedAmount string  `json:"appliedAmount"`
	ChangeAmount  string  `json:"changeAmount"`
	Reference     *string `json:"reference,omitempty"`
}

// TransitionView renders a payment transition.
type TransitionView struct {
	Action     string    `json:"action"`
	FromStatus *string   `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// View is the API rendering of a payment.
type View struct {
	ID             string           `json:"id"`
	SaleID         string           `json:"saleId"`
	Status         string           `json:"status"`
	TotalPayable   string           `json:"totalPayable"`
	TotalAllocated string           `json:"totalAllocated"`
	ChangeAmount   string           `json:"changeAmount"`
	CapturedAt     *time.Time       `json:"capturedAt"`
	Allocations    []AllocationView `json:"allocations"`
	Transitions    []TransitionView `json:"transitions,omitempty"`
}

// NewView renders p with its allocations and transitions.
func NewView(p dbgen.Payment, allocs []dbgen.PaymentAllocation, trans []dbgen.PaymentTransition) View {
	v := View{
		ID:             db.UUIDString(p.ID),
		SaleID:         db.UUIDString(p.SaleID),
		Status:         p.Status,
		TotalPayable:   money.Format(p.TotalPayable),
		TotalAllocated: money.Format(p.TotalAllocated),
		ChangeAmount:   money.Format(p.ChangeAmount),
		Allocations:    NewAllocationViews(allocs),
	}
	if p.CapturedAt.Valid {
		at := p.CapturedAt.Time
		v.CapturedAt = &at
	}
	for _, t := range trans {
		v.Transitions = append(v.Transitions, TransitionView{
			Action:     t.Action,
			FromStatus: textPtr(t.FromStatus),
			ToStatus:   t.ToStatus,
			Note:       textPtr(t.Note),
			CreatedAt:  t.CreatedAt.Time,
		})
	}
	return v
}

// NewAllocationViews renders allocations in sequence order.
func NewAllocationViews(allocs []dbgen.PaymentAllocation) []AllocationView {
	out := make([]AllocationView, 0, len(allocs))
	for _, a := range allocs {
		out = append(out, AllocationView{
			Seq:           a.Seq,
			TenderType:    a.TenderType,
			Amount:        money.Format(a.Amount),
			AppliedAmount: money.Format(a.AppliedAmount),
			ChangeAmount:  money.Format(a.ChangeAmount),
			Reference:     textPtr(a.Reference),
		})
	}
	return out
}

// TransitionInput is the body of POST /payments/{id}/transitions.
type TransitionInput struct {
	Action string `json:"action" validate:"required,max=20"`
	Note   string `json:"note,omitempty" validate:"max=200"`
}

// Service exposes payment reads and status transitions.
type Service struct {
	DB     db.TxRunner
	Bus    *events.Bus
	Logger zerolog.Logger
}

// Get loads a payment with its allocations and transition history.
func (s *Service) Get(ctx context.Context, paymentID string) (View, error) {
	if s == nil || s.DB == nil {
		return View{}, common.Internal("payment service not configured", nil)
	}
	id, err := db.ParseUUID(strings.TrimSpace(paymentID))
	if err != nil {
		return View{}, common.ValidationErr(err, "invalid payment id")
	}
	var out View
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		p, err := q.GetPayment(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("payment not found")
			}
			return common.Internal("unable to load payment", err)
		}
		out, err = load(ctx, q, p)
		return err
	})
	return out, err
}

// Transition applies an action to a payment under its row lock.
func (s *Service) Transition(ctx context.Context, paymentID string, in TransitionInput) (View, error) {
	if s == nil || s.DB == nil {
		return View{}, common.Internal("payment service not configured", nil)
	}
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.Transition")
	defer span.End()

	if err := common.ValidateStruct(in); err != nil {
		return View{}, err
	}
	id, err := db.ParseUUID(strings.TrimSpace(paymentID))
	if err != nil {
		return View{}, common.ValidationErr(err, "invalid payment id")
	}
	action := strings.ToUpper(strings.TrimSpace(in.Action))
	span.SetAttributes(attribute.String("payment.id", paymentID), attribute.String("payment.action", action))

	var (
		out      View
		recorded dbgen.DomainEvent
	)
	err = s.DB.InTx(ctx, func(q dbgen.Querier) error {
		p, err := q.GetPaymentForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return common.NotFound("payment not found")
			}
			if db.IsLockConflict(err) {
				return common.Conflict("payment is being updated, retry")
			}
			return common.Internal("unable to load payment", err)
		}
		to, ok := Next(p.Status, action)
		if !ok {
			return common.Conflict("payment action %s is not allowed from %s", action, p.Status)
		}
		if _, err := q.InsertPaymentTransition(ctx, dbgen.InsertPaymentTransitionParams{
			PaymentID:  p.ID,
			Action:     action,
			FromStatus: db.Text(p.Status),
			ToStatus:   to,
			Note:       db.Text(strings.TrimSpace(in.Note)),
		}); err != nil {
			return common.Internal("unable to record payment transition", err)
		}
		updated, err := q.UpdatePaymentStatus(ctx, dbgen.UpdatePaymentStatusParams{ID: p.ID, Status: to})
		if err != nil {
			return common.Internal("unable to update payment status", err)
		}
		recorded, err = events.Record(ctx, q, events.TopicPaymentTransitioned, p.ID, map[string]any{
			"action": action,
			"from":   p.Status,
			"to":     to,
			"saleId": db.UUIDString(p.SaleID),
		})
		if err != nil {
			return common.Internal("unable to record payment event", err)
		}
		out, err = load(ctx, q, updated)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return View{}, err
	}
	if err := s.Bus.Publish(ctx, recorded); err != nil {
		s.Logger.Warn().Err(err).Str("payment_id", out.ID).Msg("payment event delivery failed")
	}
	s.Logger.Info().Str("payment_id", out.ID).Str("action", action).Str("status", out.Status).Msg("payment transitioned")
	return out, nil
}

func load(ctx context.Context, q dbgen.Querier, p dbgen.Payment) (View, error) {
	allocs, err := q.ListPaymentAllocations(ctx, p.ID)
	if err != nil {
		return View{}, common.Internal("unable to load payment allocations", err)
	}
	trans, err := q.ListPaymentTransitions(ctx, p.ID)
	if err != nil {
		return View{}, common.Internal("unable to load payment transitions", err)
	}
	return NewView(p, allocs, trans), nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
