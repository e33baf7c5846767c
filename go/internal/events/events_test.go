package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purplehaze/glorynews/go/internal/models"
)

// fakeConn loops published messages back to every subscriber, like a NATS server
type fakeConn struct {
	mu        sync.Mutex
	published []*nats.Msg
	handlers  []nats.MsgHandler
	fail      error
	drained   bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.fail != nil {
		return c.fail
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	c.mu.Lock()
	c.published = append(c.published, msg)
	handlers := append([]nats.MsgHandler(nil), c.handlers...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (c *fakeConn) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, cb)
	return nil, nil
}

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

func (c *fakeConn) IsConnected() bool { return !c.drained }

func TestBusInvalidationSkipsOwnInstance(t *testing.T) {
	conn := &fakeConn{}
	a, err := newBus(conn, "glorynews", nil)
	require.NoError(t, err)
	b, err := newBus(conn, "glorynews", nil)
	require.NoError(t, err)

	var gotA, gotB []string
	a.OnInvalidate(func(keys []string) { gotA = append(gotA, keys...) })
	b.OnInvalidate(func(keys []string) { gotB = append(gotB, keys...) })

	require.NoError(t, a.PublishInvalidation(context.Background(), "ladder_data"))

	assert.Empty(t, gotA)
	assert.Equal(t, []string{"ladder_data"}, gotB)
	require.Len(t, conn.published, 1)
	assert.Equal(t, "glorynews.cache.invalidated", conn.published[0].Subject)
}

func TestBusStandingsReachEveryInstance(t *testing.T) {
	conn := &fakeConn{}
	a, err := newBus(conn, "glorynews", nil)
	require.NoError(t, err)
	b, err := newBus(conn, "glorynews", nil)
	require.NoError(t, err)

	var seen []string
	a.OnStandings(func(table *models.StandingsTable) { seen = append(seen, "a:"+table.Source.Name) })
	b.OnStandings(func(table *models.StandingsTable) { seen = append(seen, "b:"+table.Source.Name) })

	table := &models.StandingsTable{LeagueName: "A-League Men", Source: models.Provenance{Name: "aleagues.com.au"}}
	require.NoError(t, a.PublishStandings(context.Background(), table))

	assert.ElementsMatch(t, []string{"a:aleagues.com.au", "b:aleagues.com.au"}, seen)

	var ev Event
	require.NoError(t, json.Unmarshal(conn.published[0].Data, &ev))
	assert.Equal(t, TypeStandingsUpdated, ev.Type)
	assert.NotEmpty(t, ev.ID)
}

func TestBusDropsMalformedMessages(t *testing.T) {
	conn := &fakeConn{}
	bus, err := newBus(conn, "glorynews", nil)
	require.NoError(t, err)

	called := false
	bus.OnArticles(func([]models.Article) { called = true })

	bus.handleMsg(&nats.Msg{Subject: "glorynews.articles.updated", Data: []byte(`not json`)})
	bus.handleMsg(&nats.Msg{Subject: "glorynews.articles.updated", Data: []byte(`{"type":"articles.updated","payload":{"bad":1}}`)})
	assert.False(t, called)
}

func TestBusPublishFailure(t *testing.T) {
	conn := &fakeConn{fail: errors.New("nats: connection closed")}
	bus, err := newBus(conn, "glorynews", nil)
	require.NoError(t, err)

	err = bus.PublishArticles(context.Background(), []models.Article{{ID: "1"}})
	assert.ErrorContains(t, err, "connection closed")

	assert.True(t, bus.Connected())
	require.NoError(t, bus.Close())
	assert.True(t, conn.drained)
	assert.False(t, bus.Connected())
}

func TestLocalBus(t *testing.T) {
	bus := NewLocalBus()

	invalidated := false
	bus.OnInvalidate(func([]string) { invalidated = true })

	var articles []models.Article
	bus.OnArticles(func(a []models.Article) { articles = a })

	ctx := context.Background()
	require.NoError(t, bus.PublishInvalidation(ctx, "ladder_data"))
	require.NoError(t, bus.PublishArticles(ctx, []models.Article{{ID: "x", Title: "Glory win"}}))

	assert.False(t, invalidated, "a single process never invalidates itself")
	require.Len(t, articles, 1)
	assert.Equal(t, "Glory win", articles[0].Title)
}
