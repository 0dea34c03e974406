package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

// backlogWarning is the unsent count past which health reports an error
// without going unhealthy.
const backlogWarning = 1000

type HealthStatus struct {
	Healthy           bool      `json:"healthy"`
	LastEventTime     time.Time `json:"last_event_time"`
	EventsProcessed   uint64    `json:"events_processed"`
	PendingEvents     int       `json:"pending_events"`
	DatabaseConnected bool      `json:"database_connected"`
	NATSConnected     bool      `json:"nats_connected"`
	ListenerActive    bool      `json:"listener_active"`
	Errors            []string  `json:"errors"`
}

type RelayStats interface {
	Stats() (uint64, time.Time)
	Active() bool
}

type Backlog interface {
	CountUnsent(ctx context.Context) (int, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnStatus is satisfied by JetStreamPublisher. A nil ConnStatus means
// events are only logged and NATS is not checked.
type ConnStatus interface {
	IsConnected() bool
}

type HealthChecker struct {
	relay     RelayStats
	backlog   Backlog
	db        Pinger
	nats      ConnStatus
	clock     clockwork.Clock
	threshold time.Duration // how long pending events may sit without progress
}

func NewHealthChecker(relay RelayStats, backlog Backlog, db Pinger, nats ConnStatus, clock clockwork.Clock, threshold time.Duration) *HealthChecker {
	return &HealthChecker{
		relay:     relay,
		backlog:   backlog,
		db:        db,
		nats:      nats,
		clock:     clock,
		threshold: threshold,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}
	fail := func(format string, args ...any) {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf(format, args...))
	}

	status.EventsProcessed, status.LastEventTime = h.relay.Stats()

	if err := h.db.PingContext(ctx); err != nil {
		fail("database ping failed: %v", err)
	} else {
		status.DatabaseConnected = true
	}

	if h.nats != nil {
		status.NATSConnected = h.nats.IsConnected()
		if !status.NATSConnected {
			fail("NATS disconnected")
		}
	}

	status.ListenerActive = h.relay.Active()
	if !status.ListenerActive {
		fail("listener not active")
	}

	if status.DatabaseConnected {
		pending, err := h.backlog.CountUnsent(ctx)
		if err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		} else {
			status.PendingEvents = pending
			if pending > backlogWarning {
				status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
			}
		}
	}

	// a backlog that is not draining
	if status.PendingEvents > 0 && !status.LastEventTime.IsZero() {
		if since := h.clock.Since(status.LastEventTime); since > h.threshold {
			fail("no events processed for %s", since)
		}
	}

	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
