package audit

import (
	"context"
	"time"
)

// Emitter is the narrow port services publish audit events through.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context) ([]Event, error)
}

// Publisher hands events to a buffered inbox drained by a Worker. Emit never
// blocks the request path: when the inbox is full the event is dropped and
// the drop is counted by the worker-side metrics.
type Publisher struct {
	inbox   chan<- Event
	dropped func()
	now     func() time.Time
}

var _ Emitter = (*Publisher)(nil)

// NewPublisher returns a publisher feeding the given inbox. onDrop may be nil.
func NewPublisher(inbox chan<- Event, onDrop func()) *Publisher {
	return &Publisher{inbox: inbox, dropped: onDrop, now: time.Now}
}

func (p *Publisher) Emit(_ context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = p.now().UTC()
	}
	select {
	case p.inbox <- e:
	default:
		if p.dropped != nil {
			p.dropped()
		}
	}
}

// Discard is an Emitter for tests and wiring paths with auditing disabled.
type Discard struct{}

func (Discard) Emit(context.Context, Event) {}
