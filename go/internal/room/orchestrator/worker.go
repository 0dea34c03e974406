package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// worker processes room timeouts from the work channel
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	log.Debug().
		Str("instance", o.instanceID).
		Int("worker_id", workerID).
		Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-o.workCh:
			if !ok {
				return
			}

			if err := o.Handle(ctx, t); err != nil {
				log.Error().
					Err(err).
					Str("room_code", t.RoomCode).
					Str("task", string(t.Kind)).
					Str("instance", o.instanceID).
					Int("worker_id", workerID).
					Msg("worker timeout handling failed")
			}

			// Clean up in-flight tracking regardless of success/failure
			o.done(t)
		}
	}
}
