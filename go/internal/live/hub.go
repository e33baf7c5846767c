package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/internal/models"
)

// Topics clients can follow
const (
	TopicStandings = "standings"
	TopicNews      = "news"
)

// ValidTopic reports whether topic can be subscribed to
func ValidTopic(topic string) bool {
	return topic == TopicStandings || topic == TopicNews
}

// Message is what clients receive
type Message struct {
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub manages WebSocket connections grouped by topic
type Hub struct {
	// Connection pools organized by topic
	topics map[string]map[*Connection]bool
	mu     sync.RWMutex

	// Upgrader for WebSocket connections
	upgrader websocket.Upgrader

	// Connection configuration
	config ConnectionConfig

	broadcastCh chan Message
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID    string
	Topic string
	Conn  *websocket.Conn
	Send  chan []byte
	Hub   *Hub

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  512, // clients only send pings
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewHub creates a new WebSocket hub
func NewHub(config ConnectionConfig) *Hub {
	return &Hub{
		topics: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan Message, 256),
	}
}

// Start processes broadcasts until ctx is done
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("live hub started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("live hub shutting down")
			h.closeAll()
			return
		case message := <-h.broadcastCh:
			h.handleBroadcast(message)
		}
	}
}

// Upgrade upgrades an HTTP connection and subscribes it to topic
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, topic string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.NewString(),
		Topic:       topic,
		Conn:        conn,
		Send:        make(chan []byte, 16),
		Hub:         h,
		ConnectedAt: time.Now(),
	}
	h.register(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("topic", topic).
		Msg("WebSocket connection established")
	return nil
}

func (h *Hub) register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[conn.Topic] == nil {
		h.topics[conn.Topic] = make(map[*Connection]bool)
	}
	h.topics[conn.Topic][conn] = true
}

func (h *Hub) unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(conn)
}

func (h *Hub) unregisterLocked(conn *Connection) {
	connections, ok := h.topics[conn.Topic]
	if !ok || !connections[conn] {
		return
	}
	delete(connections, conn)
	close(conn.Send)
	if len(connections) == 0 {
		delete(h.topics, conn.Topic)
	}
	log.Debug().Str("connection_id", conn.ID).Str("topic", conn.Topic).Msg("connection unregistered")
}

// Broadcast queues payload for every connection following topic
func (h *Hub) Broadcast(topic string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to marshal broadcast payload")
		return
	}

	select {
	case h.broadcastCh <- Message{Topic: topic, Payload: raw, Timestamp: time.Now().UTC()}:
	default:
		log.Warn().Str("topic", topic).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastStandings and BroadcastArticles match the event bus callbacks
func (h *Hub) BroadcastStandings(table *models.StandingsTable) { h.Broadcast(TopicStandings, table) }

func (h *Hub) BroadcastArticles(articles []models.Article) { h.Broadcast(TopicNews, articles) }

func (h *Hub) handleBroadcast(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message for broadcast")
		return
	}

	// Sends happen under the read lock so no connection is closed mid-send
	var slow []*Connection
	h.mu.RLock()
	for conn := range h.topics[message.Topic] {
		select {
		case conn.Send <- data:
		default:
			slow = append(slow, conn)
		}
	}
	count := len(h.topics[message.Topic])
	h.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().Str("connection_id", conn.ID).Msg("connection send buffer full, closing connection")
		h.unregister(conn)
		_ = conn.Conn.Close()
	}

	log.Debug().Str("topic", message.Topic).Int("connections", count).Msg("message broadcasted")
}

// Stats returns the number of connections per topic
func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[string]int, len(h.topics))
	for topic, connections := range h.topics {
		stats[topic] = len(connections)
	}
	return stats
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, connections := range h.topics {
		for conn := range connections {
			h.unregisterLocked(conn)
		}
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		c.Hub.unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteTimeout))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump keeps read deadlines alive and notices when the client goes away
func (c *Connection) readPump() {
	defer func() {
		c.Hub.unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Hub.config.MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("unexpected WebSocket close error")
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
	}
}
