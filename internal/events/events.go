// Package events publishes domain events to the message bus.
package events

import (
	"context"
	"time"

	"github.com/go-faster/jx"
)

// Event types.
const (
	OrderPlaced           = "order.placed"
	SubscriptionPurchased = "subscription.purchased"
	AttendanceCheckedIn   = "attendance.checked_in"
	NotificationSent      = "notification.sent"
)

// Payload is the event-specific body.
type Payload interface {
	Encode(e *jx.Encoder)
}

// Event is a single domain event. Key selects the partition.
type Event struct {
	Type    string
	Key     string
	Time    time.Time
	Payload Payload
}

// Encode writes the event envelope.
func (ev Event) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str(ev.Type) })
		e.Field("time", func(e *jx.Encoder) { e.Str(ev.Time.UTC().Format(time.RFC3339Nano)) })
		if ev.Payload != nil {
			e.Field("data", ev.Payload.Encode)
		}
	})
}

// Bytes returns the JSON encoding of the envelope.
func (ev Event) Bytes() []byte {
	var e jx.Encoder
	ev.Encode(&e)
	return e.Bytes()
}

// Publisher delivers events. Publish failures are reported to the caller;
// whether they matter is the caller's decision.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }

// Close implements io.Closer.
func (Noop) Close() error { return nil }
