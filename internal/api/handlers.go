package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
	"github.com/calvinwijaya/blackjack-duel/internal/store"
	"github.com/calvinwijaya/blackjack-duel/internal/table"
)

// Snapshotter is the read side of the table used by the status routes.
type Snapshotter interface {
	Snapshot(ctx context.Context) (table.Snapshot, error)
}

// Handlers contains all the HTTP handlers
type Handlers struct {
	table Snapshotter
	store store.Store
	ws    http.Handler
	log   zerolog.Logger
}

// NewHandlers creates a new instance of Handlers. ws may be nil to leave the
// websocket route out.
func NewHandlers(t Snapshotter, history store.Store, ws http.Handler, log zerolog.Logger) *Handlers {
	return &Handlers{
		table: t,
		store: history,
		ws:    ws,
		log:   log.With().Str("component", "http").Logger(),
	}
}

// RegisterRoutes registers all routes and middleware on r
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.HandleFunc("/api/table", h.GetTable).Methods("GET")
	r.HandleFunc("/api/rounds", h.ListRounds).Methods("GET")
	r.HandleFunc("/api/rounds/{id}", h.GetRound).Methods("GET")
	r.HandleFunc("/api/roles/{role}/stats", h.GetRoleStats).Methods("GET")

	if h.ws != nil {
		r.Handle("/ws", h.ws)
	}
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetTable returns the live table: state, seats and the dealer's visible cards
func (h *Handlers) GetTable(w http.ResponseWriter, r *http.Request) {
	snap, err := h.table.Snapshot(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("snapshot failed")
		errorResponse(w, http.StatusServiceUnavailable, "Table unavailable")
		return
	}
	response(w, http.StatusOK, snap)
}

// ListRounds returns recently settled rounds, newest first
func (h *Handlers) ListRounds(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	rounds, err := h.store.ListRounds(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list rounds failed")
		errorResponse(w, http.StatusInternalServerError, "Error retrieving rounds")
		return
	}
	if rounds == nil {
		rounds = []*store.RoundRecord{}
	}
	response(w, http.StatusOK, rounds)
}

func (h *Handlers) GetRound(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	round, err := h.store.GetRound(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(w, http.StatusNotFound, "Round not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("round", id).Msg("get round failed")
		errorResponse(w, http.StatusInternalServerError, "Error retrieving round")
		return
	}
	response(w, http.StatusOK, round)
}

// GetRoleStats aggregates the recorded results of one seat
func (h *Handlers) GetRoleStats(w http.ResponseWriter, r *http.Request) {
	role, ok := game.ParseRole(mux.Vars(r)["role"])
	if !ok {
		errorResponse(w, http.StatusBadRequest, "role must be PLAYER1 or PLAYER2")
		return
	}

	stats, err := h.store.GetRoleStats(r.Context(), role)
	if err != nil {
		h.log.Error().Err(err).Str("role", role.String()).Msg("role stats failed")
		errorResponse(w, http.StatusInternalServerError, "Error retrieving role statistics")
		return
	}
	response(w, http.StatusOK, stats)
}
