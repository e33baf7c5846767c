package ladder

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/internal/models"
)

// LadderApp defines what the service layer needs from the ladder application
type LadderApp interface {
	FetchStandings(ctx context.Context, opts FetchOptions) *models.StandingsTable
	RefreshStandings(ctx context.Context) *models.StandingsTable
}

// StandingsResponse is the JSON body for standings endpoints
type StandingsResponse struct {
	Standings *models.StandingsTable `json:"standings"`
	Degraded  bool                   `json:"degraded"`
}

// Service exposes the ladder over HTTP
type Service struct {
	app LadderApp
}

// NewService creates a new ladder HTTP service
func NewService(app LadderApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes mounts the standings endpoints. refreshGuard wraps every forced
// refresh, both the POST endpoint and GET with ?refresh=true (per-client
// throttling); pass nil for none.
func (s *Service) RegisterRoutes(r chi.Router, refreshGuard func(http.Handler) http.Handler) {
	get := http.Handler(http.HandlerFunc(s.GetStandings))
	refresh := http.Handler(http.HandlerFunc(s.RefreshStandings))
	forcedGet := get
	if refreshGuard != nil {
		refresh = refreshGuard(refresh)
		forcedGet = refreshGuard(get)
	}

	r.Get("/api/standings", func(w http.ResponseWriter, r *http.Request) {
		if forceRefresh(r) {
			forcedGet.ServeHTTP(w, r)
			return
		}
		get.ServeHTTP(w, r)
	})
	r.Method(http.MethodPost, "/api/standings/refresh", refresh)
}

func forceRefresh(r *http.Request) bool {
	force, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return force
}

// GetStandings serves the ladder; ?refresh=true forces a refetch
func (s *Service) GetStandings(w http.ResponseWriter, r *http.Request) {
	table := s.app.FetchStandings(r.Context(), FetchOptions{ForceRefresh: forceRefresh(r)})
	writeStandings(w, table)
}

// RefreshStandings drops caches and refetches
func (s *Service) RefreshStandings(w http.ResponseWriter, r *http.Request) {
	writeStandings(w, s.app.RefreshStandings(r.Context()))
}

func writeStandings(w http.ResponseWriter, table *models.StandingsTable) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Data-Source", table.Source.Name)
	if err := json.NewEncoder(w).Encode(StandingsResponse{Standings: table, Degraded: table.IsDegraded()}); err != nil {
		log.Error().Err(err).Msg("failed to write standings response")
	}
}
