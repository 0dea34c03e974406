// Package orchestrator fires the timeouts of every active room: it skips turns
// whose clock ran out and closes airing windows that expired. Deadlines are
// recomputed from the rooms' absolute timestamps on every scan, so any number
// of orchestrators can run and a restart loses nothing.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/airing"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/turn"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/rpc/roomv1"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

type RoomLister interface {
	ListActiveRooms(context.Context, *connect.Request[roomv1.ListActiveRoomsRequest]) (*connect.Response[roomv1.ListActiveRoomsResponse], error)
}

type TurnSkipper interface {
	SkipTurn(context.Context, *connect.Request[roomv1.SkipTurnRequest]) (*connect.Response[roomv1.SkipTurnResponse], error)
}

type AiringExpirer interface {
	ExpireAiring(context.Context, *connect.Request[roomv1.ExpireAiringRequest]) (*connect.Response[roomv1.ExpireAiringResponse], error)
}

type TaskKind string

const (
	TaskSkipTurn     TaskKind = "skip_turn"
	TaskExpireAiring TaskKind = "expire_airing"
)

// Task is one due timeout.
type Task struct {
	Kind      TaskKind
	RoomCode  string
	TurnIndex int
}

func (t Task) key() string {
	return t.RoomCode + "/" + string(t.Kind)
}

type Config struct {
	PollInterval time.Duration
	Workers      int
}

type Orchestrator struct {
	rooms      RoomLister
	draft      TurnSkipper
	live       AiringExpirer
	clock      Clock
	cfg        Config
	instanceID string
	wakeCh     chan struct{}

	workCh chan Task

	// Track in-flight work to prevent duplicate processing
	inFlight   map[string]bool
	inFlightMu sync.Mutex

	// next deadline per active room; rooms missing from a scan are dropped
	deadlines map[string]time.Time
}

func NewOrchestrator(rooms RoomLister, draft TurnSkipper, live AiringExpirer, clock Clock, cfg Config) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Orchestrator{
		rooms:      rooms,
		draft:      draft,
		live:       live,
		clock:      clock,
		cfg:        cfg,
		instanceID: uuid.New().String()[:8],
		wakeCh:     make(chan struct{}, 1),
		workCh:     make(chan Task, cfg.Workers*2),
		inFlight:   make(map[string]bool),
		deadlines:  make(map[string]time.Time),
	}
}

// Wake makes the scheduler scan now instead of at its next tick.
func (o *Orchestrator) Wake() {
	select {
	case o.wakeCh <- struct{}{}:
	default:
	}
}

// Run scans until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().Str("instance", o.instanceID).Int("workers", o.cfg.Workers).Dur("poll", o.cfg.PollInterval).Msg("orchestrator started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < o.cfg.Workers; i++ {
		wg.Add(1)
		go o.worker(workerCtx, &wg, i)
	}

	defer func() {
		log.Info().Str("instance", o.instanceID).Msg("shutting down workers")
		cancelWorkers()
		close(o.workCh)
		wg.Wait()
		log.Info().Str("instance", o.instanceID).Msg("all workers shut down")
	}()

	timer := o.clock.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.Chan():
		case <-o.wakeCh:
			log.Debug().Str("instance", o.instanceID).Msg("woken up early")
		}

		tasks, err := o.Scan(ctx)
		if err != nil {
			// retried on the next tick
			log.Warn().Err(err).Str("instance", o.instanceID).Msg("scan failed")
		}
		if err := o.dispatch(ctx, tasks); err != nil {
			return nil
		}
		timer.Reset(o.nextWait())
	}
}

// Scan lists the active rooms and returns the timeouts that are due now.
func (o *Orchestrator) Scan(ctx context.Context) ([]Task, error) {
	resp, err := o.rooms.ListActiveRooms(ctx, connect.NewRequest(&roomv1.ListActiveRoomsRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to list active rooms: %w", err)
	}

	now := o.clock.Now()
	seen := make(map[string]bool, len(resp.Msg.Rooms))
	var tasks []Task
	for _, room := range resp.Msg.Rooms {
		seen[room.Code] = true
		due, next := dueTasks(room, now)
		tasks = append(tasks, due...)
		if next.IsZero() {
			delete(o.deadlines, room.Code)
		} else {
			o.deadlines[room.Code] = next
		}
	}
	for code := range o.deadlines {
		if !seen[code] {
			log.Debug().Str("room_code", code).Msg("room no longer active, forgetting it")
			delete(o.deadlines, code)
		}
	}
	return tasks, nil
}

// dueTasks returns the timeouts of room that have run out at now, and the
// earliest deadline still ahead.
func dueTasks(room view.ActiveRoom, now time.Time) ([]Task, time.Time) {
	var (
		tasks []Task
		next  time.Time
	)
	ahead := func(deadline time.Time) {
		if next.IsZero() || deadline.Before(next) {
			next = deadline
		}
	}

	if room.Status == models.RoomStatusDrafting && room.TurnAnchor != nil && room.ParticipantID != "" {
		d := time.Duration(room.TurnDurationSec) * time.Second
		if turn.Remaining(now, *room.TurnAnchor, d) == 0 {
			tasks = append(tasks, Task{Kind: TaskSkipTurn, RoomCode: room.Code, TurnIndex: room.TurnIndex})
		} else {
			ahead(room.TurnAnchor.Add(d))
		}
	}
	if room.AiringItemID != nil && room.AiringStartedAt != nil {
		w := time.Duration(room.AiringWindowSec) * time.Second
		if airing.Remaining(now, *room.AiringStartedAt, w) == 0 {
			tasks = append(tasks, Task{Kind: TaskExpireAiring, RoomCode: room.Code})
		} else {
			ahead(room.AiringStartedAt.Add(w))
		}
	}
	return tasks, next
}

// nextWait is the poll interval, shortened when a tracked deadline comes sooner.
func (o *Orchestrator) nextWait() time.Duration {
	wait := o.cfg.PollInterval
	now := o.clock.Now()
	for _, deadline := range o.deadlines {
		if d := deadline.Sub(now); d < wait {
			wait = d
		}
	}
	if wait < 0 {
		return 0
	}
	return wait
}

// dispatch queues tasks that are not already being handled. It returns
// ctx.Err() if the context ends while queueing.
func (o *Orchestrator) dispatch(ctx context.Context, tasks []Task) error {
	for _, t := range tasks {
		o.inFlightMu.Lock()
		if o.inFlight[t.key()] {
			log.Debug().Str("room_code", t.RoomCode).Str("task", string(t.Kind)).Msg("skipping task already in flight")
			o.inFlightMu.Unlock()
			continue
		}
		o.inFlight[t.key()] = true
		o.inFlightMu.Unlock()

		select {
		case <-ctx.Done():
			o.done(t)
			return ctx.Err()
		case o.workCh <- t:
		}
	}
	return nil
}

func (o *Orchestrator) done(t Task) {
	o.inFlightMu.Lock()
	delete(o.inFlight, t.key())
	o.inFlightMu.Unlock()
}

// Handle fires one timeout. Failures the next scan will retry are logged and
// swallowed.
func (o *Orchestrator) Handle(ctx context.Context, t Task) error {
	var err error
	switch t.Kind {
	case TaskSkipTurn:
		var resp *connect.Response[roomv1.SkipTurnResponse]
		resp, err = o.draft.SkipTurn(ctx, connect.NewRequest(&roomv1.SkipTurnRequest{RoomCode: t.RoomCode, ExpectedTurn: t.TurnIndex}))
		if err == nil && resp.Msg.Skipped {
			log.Info().Str("room_code", t.RoomCode).Str("participant_id", resp.Msg.ParticipantID).Int("turn_index", t.TurnIndex).Msg("turn timed out")
		}
	case TaskExpireAiring:
		var resp *connect.Response[roomv1.ExpireAiringResponse]
		resp, err = o.live.ExpireAiring(ctx, connect.NewRequest(&roomv1.ExpireAiringRequest{RoomCode: t.RoomCode}))
		if err == nil && resp.Msg.Closed {
			log.Info().Str("room_code", t.RoomCode).Int("timeouts", resp.Msg.TimeoutRatings).Msg("airing window expired")
		}
	default:
		return fmt.Errorf("unknown task kind %q", t.Kind)
	}

	switch connect.CodeOf(err) {
	case connect.CodeUnavailable, connect.CodeDeadlineExceeded:
		log.Warn().Err(err).Str("room_code", t.RoomCode).Msg("store unavailable, retrying on next scan")
		return nil
	case connect.CodeNotFound:
		log.Debug().Str("room_code", t.RoomCode).Msg("room closed before its timeout fired")
		return nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to handle %s for room %s: %w", t.Kind, t.RoomCode, err)
	}
	return nil
}
