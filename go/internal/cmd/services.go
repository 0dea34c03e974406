package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/catalog"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameconfig"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/live"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/lobby"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/pick"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
)

type Services struct {
	Rooms *lobby.Service
	Draft *pick.Service
	Live  *live.Service
}

func setupServices(database *sql.DB, cfg gameconfig.Config, clock clockwork.Clock) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer
	window := cfg.Rules.AiringWindow()

	catalogRepo := catalog.NewRepository(database)
	lobbyRepo := lobby.NewRepository(database)
	pickRepo := pick.NewRepository(database)
	liveRepo := live.NewRepository(database)

	// Read side shared by all three services
	views := view.NewApp(lobbyRepo, pickRepo, liveRepo, catalogRepo, clock, window)

	lobbyApp := lobby.NewApp(lobbyRepo, cfg.Rules, clock, lobby.NewLockedRand())
	pickApp := pick.NewApp(pickRepo, catalogRepo, clock)
	liveApp := live.NewApp(liveRepo, catalogRepo, clock, window)

	return &Services{
		Rooms: lobby.NewService(lobbyApp, views),
		Draft: pick.NewService(pickApp, views),
		Live:  live.NewService(liveApp, views),
	}
}
