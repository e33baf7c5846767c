package live

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Handler serves WebSocket upgrade requests
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleConnect upgrades /ws/live?topic=standings|news
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = TopicStandings
	}
	if !ValidTopic(topic) {
		http.Error(w, "unknown topic", http.StatusBadRequest)
		return
	}

	if err := h.hub.Upgrade(w, r, topic); err != nil {
		// the upgrader has already written an error response
		log.Error().Err(err).Str("topic", topic).Msg("failed to upgrade WebSocket connection")
	}
}

// HandleStats returns connection counts per topic
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.hub.Stats())
}
