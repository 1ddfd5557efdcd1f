package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

// EventStore is the persistence operation behind Record. Pass the transaction's
// querier so the event commits or rolls back with the change it describes.
type EventStore interface {
	InsertDomainEvent(ctx context.Context, arg dbgen.InsertDomainEventParams) (dbgen.InsertDomainEventRow, error)
}

// Notifier reacts to committed events (receipt printing, metrics, etc.).
type Notifier interface {
	Notify(ctx context.Context, event dbgen.DomainEvent) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event dbgen.DomainEvent) error

func (f NotifierFunc) Notify(ctx context.Context, event dbgen.DomainEvent) error {
	return f(ctx, event)
}

// Record persists a domain event through store.
func Record(ctx context.Context, store EventStore, topic string, aggregateID pgtype.UUID, payload any) (dbgen.DomainEvent, error) {
	if store == nil {
		return dbgen.DomainEvent{}, errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return dbgen.DomainEvent{}, errors.New("events: topic is required")
	}
	if !aggregateID.Valid {
		return dbgen.DomainEvent{}, errors.New("events: aggregate id is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return dbgen.DomainEvent{}, fmt.Errorf("events: encode payload: %w", err)
	}
	row, err := store.InsertDomainEvent(ctx, dbgen.InsertDomainEventParams{
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     encoded,
	})
	if err != nil {
		return dbgen.DomainEvent{}, fmt.Errorf("events: persist event: %w", err)
	}
	return dbgen.DomainEvent{
		ID:          row.ID,
		Topic:       row.Topic,
		AggregateID: row.AggregateID,
		Payload:     row.Payload,
		OccurredAt:  row.OccurredAt,
	}, nil
}

// Bus fans committed events out to subscribers by topic.
type Bus struct {
	Logger      zerolog.Logger
	subscribers map[string][]Notifier
}

// Subscribe registers n for topic.
func (b *Bus) Subscribe(topic string, n Notifier) {
	if b.subscribers == nil {
		b.subscribers = map[string][]Notifier{}
	}
	b.subscribers[topic] = append(b.subscribers[topic], n)
}

// Publish delivers committed events to their subscribers. Notifier failures are
// logged and joined; they never undo the committed change.
func (b *Bus) Publish(ctx context.Context, evs ...dbgen.DomainEvent) error {
	if b == nil {
		return nil
	}
	var joined error
	for _, ev := range evs {
		for _, n := range b.subscribers[ev.Topic] {
			if err := n.Notify(ctx, ev); err != nil {
				b.Logger.Warn().Err(err).Str("topic", ev.Topic).Msg("event notifier failed")
				joined = errors.Join(joined, fmt.Errorf("events: notifier %s: %w", ev.Topic, err))
			}
		}
	}
	return joined
}

func encodePayload(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case nil:
		return []byte("{}"), nil
	case []byte:
		return rawPayload(v)
	case json.RawMessage:
		return rawPayload(v)
	default:
		return json.Marshal(v)
	}
}

func rawPayload(v []byte) ([]byte, error) {
	if len(v) == 0 {
		return []byte("{}"), nil
	}
	if !json.Valid(v) {
		return nil, errors.New("payload is not valid json")
	}
	return append([]byte(nil), v...), nil
}
