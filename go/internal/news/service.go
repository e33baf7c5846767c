package news

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/internal/models"
)

// MaxLimit caps ?limit= on the list endpoint
const MaxLimit = 100

// NewsApp defines what the service layer needs from the news application
type NewsApp interface {
	FetchArticles(ctx context.Context, q Query) *models.ArticleFeed
	GetArticleByID(ctx context.Context, id string) *models.Article
}

// Service exposes articles over HTTP
type Service struct {
	app NewsApp
}

// NewService creates a new news HTTP service
func NewService(app NewsApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes mounts the article endpoints. refreshGuard wraps list requests
// carrying ?refresh=true; pass nil for none.
func (s *Service) RegisterRoutes(r chi.Router, refreshGuard func(http.Handler) http.Handler) {
	list := http.Handler(http.HandlerFunc(s.ListArticles))
	forcedList := list
	if refreshGuard != nil {
		forcedList = refreshGuard(list)
	}

	r.Get("/api/articles", func(w http.ResponseWriter, r *http.Request) {
		if forceRefresh(r) {
			forcedList.ServeHTTP(w, r)
			return
		}
		list.ServeHTTP(w, r)
	})
	r.Get("/api/articles/{id}", s.GetArticle)
}

func forceRefresh(r *http.Request) bool {
	force, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return force
}

// ListArticles serves ?source=&limit=&refresh=
func (s *Service) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := Query{SourceID: r.URL.Query().Get("source")}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		q.Limit = min(limit, MaxLimit)
	}
	q.ForceRefresh = forceRefresh(r)

	writeJSON(w, http.StatusOK, s.app.FetchArticles(r.Context(), q))
}

// GetArticle serves a single article by ID
func (s *Service) GetArticle(w http.ResponseWriter, r *http.Request) {
	article := s.app.GetArticleByID(r.Context(), chi.URLParam(r, "id"))
	if article == nil {
		http.Error(w, "article not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write news response")
	}
}
