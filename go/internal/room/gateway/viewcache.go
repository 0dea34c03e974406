package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
)

// Entity names one cached read of a room.
type Entity string

const (
	EntityState       Entity = "state"
	EntityLeaderboard Entity = "leaderboard"
	EntityItemStates  Entity = "item_states"
)

var allEntities = []Entity{EntityState, EntityLeaderboard, EntityItemStates}

// invalidations lists the entities each event can change. RoomClosed is not
// here: it drops the room instead.
var invalidations = map[events.EventType][]Entity{
	events.RoomCreated:       {EntityState},
	events.ParticipantJoined: {EntityState, EntityLeaderboard},
	events.ParticipantReady:  {EntityState},
	events.DraftStarted:      {EntityState, EntityLeaderboard},
	events.PickMade:          {EntityState, EntityItemStates},
	events.TurnSkipped:       {EntityState},
	events.DraftCompleted:    {EntityState},
	events.AiringStarted:     {EntityState, EntityItemStates},
	events.RatingRecorded:    allEntities,
	events.AiringClosed:      allEntities,
	events.RoomReset:         allEntities,
}

type cacheKey struct {
	room   string
	entity Entity
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// loadGuard tracks a room while callers are loading it. Invalidations bump
// gen so a load that raced one does not store its result. The guard goes
// away with the last caller, so idle and closed rooms leave nothing behind.
type loadGuard struct {
	gen     uint64
	callers int
}

// ViewCache holds derived room views keyed by (room, entity). Entries are
// invalidated by change notifications and expire after ttl in case one was
// missed.
type ViewCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	guards  map[string]*loadGuard
	group   singleflight.Group
	clock   clockwork.Clock
	ttl     time.Duration
}

// CacheStats is reported next to the connection stats.
type CacheStats struct {
	Entries      int `json:"entries"`
	LoadingRooms int `json:"loading_rooms"`
}

func NewViewCache(clock clockwork.Clock, ttl time.Duration) *ViewCache {
	return &ViewCache{
		entries: make(map[cacheKey]cacheEntry),
		guards:  make(map[string]*loadGuard),
		clock:   clock,
		ttl:     ttl,
	}
}

// Cached returns the cached value for (room, entity), calling load on a miss.
// Concurrent misses for the same key share one load.
func Cached[T any](ctx context.Context, c *ViewCache, room string, entity Entity, load func(context.Context) (T, error)) (T, error) {
	key := cacheKey{room: room, entity: entity}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.clock.Since(entry.storedAt) < c.ttl {
		if v, ok := entry.value.(T); ok {
			return v, nil
		}
	}

	guard, gen := c.acquire(room)
	defer c.release(room, guard)

	// a miss after an invalidation must not join a load that started before it
	flight := fmt.Sprintf("%s/%s/%d", room, entity, gen)
	v, err, _ := c.group.Do(flight, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if guard.gen == gen {
			c.entries[key] = cacheEntry{value: value, storedAt: c.clock.Now()}
		}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *ViewCache) acquire(room string) (*loadGuard, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.guards[room]
	if g == nil {
		g = &loadGuard{}
		c.guards[room] = g
	}
	g.callers++
	return g, g.gen
}

func (c *ViewCache) release(room string, g *loadGuard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g.callers--
	if g.callers == 0 && c.guards[room] == g {
		delete(c.guards, room)
	}
}

// Invalidate evicts the entities t can change in room.
func (c *ViewCache) Invalidate(room string, t events.EventType) {
	entities, ok := invalidations[t]
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict(room, entities)
}

// Drop forgets everything about room.
func (c *ViewCache) Drop(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict(room, allEntities)
}

func (c *ViewCache) evict(room string, entities []Entity) {
	if g := c.guards[room]; g != nil {
		g.gen++
	}
	for _, e := range entities {
		delete(c.entries, cacheKey{room: room, entity: e})
	}
}

func (c *ViewCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Entries: len(c.entries), LoadingRooms: len(c.guards)}
}
