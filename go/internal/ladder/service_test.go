package ladder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purplehaze/glorynews/go/internal/models"
)

type stubLadderApp struct {
	forced    []bool
	refreshes int
	table     *models.StandingsTable
}

func (s *stubLadderApp) FetchStandings(_ context.Context, opts FetchOptions) *models.StandingsTable {
	s.forced = append(s.forced, opts.ForceRefresh)
	return s.table
}

func (s *stubLadderApp) RefreshStandings(context.Context) *models.StandingsTable {
	s.refreshes++
	return s.table
}

func TestStandingsEndpoints(t *testing.T) {
	app := &stubLadderApp{table: BackupTable(testNow)}

	guarded := 0
	guard := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guarded++
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewRouter()
	NewService(app).RegisterRoutes(r, guard)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/standings?refresh=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, FallbackSourceName, rec.Header().Get("X-Data-Source"))

	var body StandingsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Degraded)
	assert.Len(t, body.Standings.Entries, 12)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/standings", nil))
	assert.Equal(t, []bool{true, false}, app.forced)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/standings/refresh", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, app.refreshes)
	assert.Equal(t, 2, guarded, "forced GET and POST refresh both pass the guard")
}

func TestStandingsForcedRefreshIsThrottled(t *testing.T) {
	app := &stubLadderApp{table: BackupTable(testNow)}
	reject := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}

	r := chi.NewRouter()
	NewService(app).RegisterRoutes(r, reject)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/standings?refresh=true", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	}
	assert.Empty(t, app.forced)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/standings", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{false}, app.forced)
}
