// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"sync"
	"time"

	"github.com/ManuGH/tizenplay/internal/host"
	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"golang.org/x/time/rate"
)

// Toaster queues toast commands, throttled by a token bucket so a flapping
// start sequence cannot flood the screen.
type Toaster struct {
	outbox *Outbox

	mu      sync.Mutex
	limiter *rate.Limiter
}

var _ host.Toaster = (*Toaster)(nil)

// NewToaster allows burst toasts at once and one more per interval. A zero
// interval disables throttling.
func NewToaster(outbox *Outbox, interval time.Duration, burst int) *Toaster {
	t := &Toaster{outbox: outbox}
	t.SetLimit(interval, burst)
	return t
}

// SetLimit replaces the throttle, keeping no tokens from the old one.
func (t *Toaster) SetLimit(interval time.Duration, burst int) {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	t.mu.Lock()
	t.limiter = rate.NewLimiter(limit, burst)
	t.mu.Unlock()
}

func (t *Toaster) Toast(title, message string) {
	t.mu.Lock()
	ok := t.limiter.Allow()
	t.mu.Unlock()

	if !ok {
		metrics.RecordToast("throttled")
		logger := log.WithComponent("remote")
		logger.Debug().
			Str(log.FieldEvent, "remote.toast_throttled").
			Str("title", title).
			Msg("toast throttled")
		return
	}
	t.outbox.Push(Command{Type: CmdToast, Title: title, Message: message})
	metrics.RecordToast("sent")
}
