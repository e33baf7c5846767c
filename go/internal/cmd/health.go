package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type HealthStatus struct {
	Healthy     bool           `json:"healthy"`
	SharedCache string         `json:"shared_cache"`
	Database    string         `json:"database"`
	Events      string         `json:"events"`
	LiveClients map[string]int `json:"live_clients"`
	Errors      []string       `json:"errors,omitempty"`
	CheckedAt   time.Time      `json:"checked_at"`
}

const (
	componentOK       = "ok"
	componentDown     = "down"
	componentDisabled = "disabled"
	componentLocal    = "local"
)

// Check pings every optional dependency. The pipeline keeps serving without
// them, so a failed dependency marks the service degraded rather than dead.
func (s *Services) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Healthy:     true,
		SharedCache: componentDisabled,
		Database:    componentDisabled,
		Events:      componentLocal,
		LiveClients: s.Hub.Stats(),
		CheckedAt:   time.Now().UTC(),
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			status.SharedCache = componentDown
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("redis ping failed: %v", err))
		} else {
			status.SharedCache = componentOK
		}
	}

	if s.pool != nil {
		if err := s.pool.Ping(ctx); err != nil {
			status.Database = componentDown
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
		} else {
			status.Database = componentOK
		}
	}

	if s.nats != nil {
		if s.nats.Connected() {
			status.Events = componentOK
		} else {
			status.Events = componentDown
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	return status
}

func setupHealthCheck(r chi.Router, services *Services) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := services.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
