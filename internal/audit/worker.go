package audit

import (
	"context"
	"log/slog"
)

// Worker drains the audit inbox into the store in the background.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes events until the context is cancelled, then drains whatever is
// still buffered before returning.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case e := <-w.inbox:
			w.append(ctx, e)
		case <-ctx.Done():
			for {
				select {
				case e := <-w.inbox:
					w.append(context.WithoutCancel(ctx), e)
				default:
					return
				}
			}
		}
	}
}

func (w *Worker) append(ctx context.Context, e Event) {
	if err := w.store.Append(ctx, e); err != nil {
		w.logger.Warn("audit append failed",
			slog.String("action", e.Action),
			slog.String("record_id", e.RecordID),
			slog.String("error", err.Error()))
	}
}
