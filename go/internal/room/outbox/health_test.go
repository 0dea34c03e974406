package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelayStats struct {
	sent   uint64
	last   time.Time
	active bool
}

func (f fakeRelayStats) Stats() (uint64, time.Time) { return f.sent, f.last }
func (f fakeRelayStats) Active() bool               { return f.active }

type fakeBacklog struct {
	n   int
	err error
}

func (f fakeBacklog) CountUnsent(context.Context) (int, error) { return f.n, f.err }

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeConn bool

func (f fakeConn) IsConnected() bool { return bool(f) }

func TestHealthCheck(t *testing.T) {
	now := time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	tests := []struct {
		name    string
		relay   fakeRelayStats
		backlog fakeBacklog
		db      fakePinger
		nats    ConnStatus
		healthy bool
		errors  int
	}{
		{
			name:    "idle and healthy",
			relay:   fakeRelayStats{active: true},
			nats:    fakeConn(true),
			healthy: true,
		},
		{
			name:    "draining backlog",
			relay:   fakeRelayStats{sent: 40, last: now.Add(-time.Second), active: true},
			backlog: fakeBacklog{n: 3},
			healthy: true,
		},
		{
			name:    "stuck backlog",
			relay:   fakeRelayStats{sent: 40, last: now.Add(-10 * time.Minute), active: true},
			backlog: fakeBacklog{n: 3},
			healthy: false,
			errors:  1,
		},
		{
			name:    "large backlog only warns",
			relay:   fakeRelayStats{sent: 1, last: now, active: true},
			backlog: fakeBacklog{n: backlogWarning + 1},
			healthy: true,
			errors:  1,
		},
		{
			name:    "database down",
			relay:   fakeRelayStats{active: true},
			db:      fakePinger{err: errors.New("connection refused")},
			healthy: false,
			errors:  1,
		},
		{
			name:    "nats down and listener stopped",
			relay:   fakeRelayStats{},
			nats:    fakeConn(false),
			healthy: false,
			errors:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(tt.relay, tt.backlog, tt.db, tt.nats, clock, time.Minute)
			status := h.Check(context.Background())
			assert.Equal(t, tt.healthy, status.Healthy)
			assert.Len(t, status.Errors, tt.errors, status.Errors)
			assert.Equal(t, tt.backlog.n, status.PendingEvents)
		})
	}
}

func TestHealthHandlerStatusCode(t *testing.T) {
	clock := clockwork.NewFakeClock()

	ok := NewHealthChecker(fakeRelayStats{active: true}, fakeBacklog{}, fakePinger{}, nil, clock, time.Minute)
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewHealthChecker(fakeRelayStats{}, fakeBacklog{}, fakePinger{}, nil, clock, time.Minute)
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.ListenerActive)
	assert.Equal(t, []string{"listener not active"}, body.Errors)
}
