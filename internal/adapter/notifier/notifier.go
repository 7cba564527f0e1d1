package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chama-ledger/internal/domain/loan"

	"go.uber.org/zap"
)

// Publisher is satisfied by messaging.Client.
type Publisher interface {
	Publish(ctx context.Context, messageID string, body []byte) error
}

// PublisherFunc adapts a plain function, e.g. an in-process consumer.
type PublisherFunc func(ctx context.Context, messageID string, body []byte) error

func (f PublisherFunc) Publish(ctx context.Context, messageID string, body []byte) error {
	return f(ctx, messageID, body)
}

// JSON encodes each ledger event and hands it to a Publisher keyed by event id.
type JSON struct {
	pub Publisher
}

func NewJSON(pub Publisher) *JSON { return &JSON{pub: pub} }

func (n *JSON) Notify(ctx context.Context, ev loan.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.ID, err)
	}
	return n.pub.Publish(ctx, ev.ID, body)
}

// Log writes events to the structured log. Used when no broker is configured.
type Log struct {
	log *zap.Logger
}

func NewLog(l *zap.Logger) *Log { return &Log{log: l} }

func (n *Log) Notify(ctx context.Context, ev loan.Event) error {
	n.log.Info("ledger event",
		zap.String("event_id", ev.ID),
		zap.String("type", string(ev.Type)),
		zap.String("loan_id", ev.LoanID),
		zap.String("member_id", ev.MemberID),
		zap.String("status", string(ev.Status)),
		zap.Int64("amount", ev.Amount),
		zap.Int64("balance", ev.Balance))
	return nil
}

// Invalidator drops cached report snapshots whenever the ledger changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheBuster is a Notifier that clears the report cache. Reminder events
// carry no balance change and are ignored.
type CacheBuster struct {
	cache Invalidator
}

func NewCacheBuster(c Invalidator) *CacheBuster { return &CacheBuster{cache: c} }

func (n *CacheBuster) Notify(ctx context.Context, ev loan.Event) error {
	if ev.Type == loan.EventPaymentDue {
		return nil
	}
	return n.cache.Invalidate(ctx)
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []loan.Notifier

func (m Multi) Notify(ctx context.Context, ev loan.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
