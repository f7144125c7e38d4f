package bot

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	"bizgifts-bot/internal/telegram"
	"bizgifts-bot/pkg/uid"
)

// UpdateSource produces inbound updates. Implemented by *telegram.Client.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}

// Dispatcher long-polls for updates and hands each one to the handlers.
// Updates are independent units of work: each runs in its own goroutine with
// panic recovery, a correlation ID and timing logs, so one bad update never
// takes down the poll loop.
type Dispatcher struct {
	source      UpdateSource
	handlers    *Handlers
	pollTimeout int
	retryDelay  time.Duration
}

// NewDispatcher creates a new update dispatcher.
func NewDispatcher(source UpdateSource, handlers *Handlers, pollTimeout int) *Dispatcher {
	return &Dispatcher{
		source:      source,
		handlers:    handlers,
		pollTimeout: pollTimeout,
		retryDelay:  3 * time.Second,
	}
}

// Run polls for updates until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Printf("[Dispatcher] Polling started (timeout %ds)", d.pollTimeout)

	var offset int64
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Dispatcher] Polling stopped: %v", ctx.Err())
			return
		default:
		}

		updates, err := d.source.GetUpdates(ctx, offset, d.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("[Dispatcher] ERROR: getUpdates failed: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(d.retryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			go d.dispatch(ctx, update)
		}
	}
}

// dispatch routes one update to the matching handler.
func (d *Dispatcher) dispatch(ctx context.Context, update telegram.Update) {
	requestID := uid.New()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Dispatcher] PANIC handling update %d (%s): %v\n%s",
				update.UpdateID, requestID, r, debug.Stack())
		}
	}()

	switch {
	case update.BusinessConnection != nil:
		d.handlers.HandleBusinessConnection(ctx, update.BusinessConnection)
	case update.Message != nil:
		d.handlers.HandleMessage(ctx, update.Message)
	default:
		// Update kinds we did not subscribe to; nothing to do.
		return
	}

	log.Printf("[Dispatcher] update=%d request=%s handled in %s",
		update.UpdateID, requestID, time.Since(start))
}
