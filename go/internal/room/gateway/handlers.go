package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/lobby"
)

// APIError is the JSON body of every failed REST call.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

var errInvalidCode = &APIError{Status: http.StatusBadRequest, Code: "INVALID_ROOM_CODE", Message: "invalid room code"}

// apiError maps a service error onto an HTTP status.
func apiError(err error) *APIError {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	switch connect.CodeOf(err) {
	case connect.CodeNotFound:
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "room not found"}
	case connect.CodeInvalidArgument:
		return &APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: err.Error()}
	case connect.CodeUnavailable:
		return &APIError{Status: http.StatusServiceUnavailable, Code: "UNAVAILABLE", Message: "room store unavailable"}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: "internal server error"}
	}
}

type Handlers struct {
	cm    *ConnectionManager
	views *Views
	clock clockwork.Clock
}

func NewHandlers(cm *ConnectionManager, views *Views, clock clockwork.Clock) *Handlers {
	return &Handlers{cm: cm, views: views, clock: clock}
}

// Router returns a chi router with the REST and websocket routes.
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/ws/room", h.handleRoomSocket)
	r.Get("/ws/stats", h.handleStats)

	r.Route("/api/rooms/{code}", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/state", h.handleGetState)
		r.Get("/leaderboard", h.handleGetLeaderboard)
		r.Get("/items", h.handleGetItemStates)
	})

	return r
}

func roomCode(raw string) (string, error) {
	code := lobby.NormalizeCode(raw)
	if !lobby.ValidCode(code) {
		return "", errInvalidCode
	}
	return code, nil
}

func (h *Handlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	state, err := h.views.State(r.Context(), code, r.URL.Query().Get("participant_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, state)
}

func (h *Handlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	standings, err := h.views.Leaderboard(r.Context(), code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]any{"standings": standings})
}

func (h *Handlers) handleGetItemStates(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	states, err := h.views.ItemStates(r.Context(), code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]any{"states": states})
}

// handleRoomSocket serves /ws/room?code=&participant_id=. The room is read
// before upgrading so unknown codes get a plain 404.
func (h *Handlers) handleRoomSocket(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r.URL.Query().Get("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	participantID := r.URL.Query().Get("participant_id")

	state, err := h.views.State(r.Context(), code, participantID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	first, err := json.Marshal(&Message{
		RoomCode:  code,
		Type:      MessageSnapshot,
		Timestamp: h.clock.Now(),
		State:     state,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.cm.UpgradeConnection(w, r, code, participantID, first); err != nil {
		// the upgrader has already replied
		log.Error().
			Err(err).
			Str("room_code", code).
			Str("participant_id", participantID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// GatewayStats is the /ws/stats body.
type GatewayStats struct {
	ConnectionStats
	Cache CacheStats `json:"cache"`
}

func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, GatewayStats{ConnectionStats: h.cm.Stats(), Cache: h.views.CacheStats()})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	ae := apiError(err)
	if ae.Status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("gateway request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Status)
	json.NewEncoder(w).Encode(ae)
}
