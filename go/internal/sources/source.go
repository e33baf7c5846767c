// Package sources adapts every external provider onto the canonical standings and
// article models. Adapters never return errors: a provider that fails for any
// reason yields an empty result so the orchestrators can move on.
package sources

import (
	"context"
	"time"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Info identifies an adapter and carries its provenance
type Info struct {
	Key    string
	Name   string
	URL    string
	Author string
}

// InfoFromConfig builds adapter info from a registry entry
func InfoFromConfig(cfg clients.ExternalSourceConfig) Info {
	return Info{
		Key:    string(cfg.Source),
		Name:   cfg.Name,
		URL:    cfg.URL,
		Author: cfg.Author,
	}
}

// Provenance converts adapter info to table metadata
func (i Info) Provenance() models.Provenance {
	return models.Provenance{Name: i.Name, URL: i.URL, Author: i.Author}
}

// Fetcher is implemented by every provider adapter
type Fetcher[T any] interface {
	Info() Info
	Fetch(ctx context.Context) []T
}

// StandingsSource produces ladder rows
type StandingsSource = Fetcher[models.StandingsEntry]

// ArticleSource produces news items
type ArticleSource = Fetcher[models.Article]

// Outcome is what a single adapter produced
type Outcome[T any] struct {
	Info    Info
	Items   []T
	Elapsed time.Duration
}

// Strategy selects how a list of adapters is consulted
type Strategy int

const (
	// SequentialFirstMatch tries adapters in order and stops at the first accepted outcome
	SequentialFirstMatch Strategy = iota
	// ParallelGather runs every adapter concurrently and returns all outcomes
	ParallelGather
)

// Runner holds per-call settings shared by both strategies
type Runner struct {
	Timeout time.Duration                                     // per adapter; zero means only the caller's context applies
	Observe func(info Info, items int, elapsed time.Duration) // optional
}

// Run consults fetchers using strategy. For SequentialFirstMatch the result holds
// at most one outcome (the accepted one); for ParallelGather it holds one outcome
// per fetcher, in fetcher order, and accept is ignored.
func Run[T any](ctx context.Context, r Runner, strategy Strategy, fetchers []Fetcher[T], accept func(Outcome[T]) bool) []Outcome[T] {
	switch strategy {
	case ParallelGather:
		return Gather(ctx, r, fetchers)
	default:
		out, ok := FirstMatch(ctx, r, fetchers, accept)
		if !ok {
			return nil
		}
		return []Outcome[T]{out}
	}
}

// FirstMatch tries fetchers in priority order and returns the first outcome accept
// approves. Later fetchers are never called once one is accepted.
func FirstMatch[T any](ctx context.Context, r Runner, fetchers []Fetcher[T], accept func(Outcome[T]) bool) (Outcome[T], bool) {
	for _, f := range fetchers {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("source chain cancelled")
			break
		}
		out := fetchOne(ctx, r, f)
		if accept == nil || accept(out) {
			return out, true
		}
		log.Info().
			Str("source", out.Info.Key).
			Int("items", len(out.Items)).
			Msg("source result rejected, trying next")
	}
	return Outcome[T]{}, false
}

// Gather runs all fetchers concurrently. A failing fetcher only empties its own
// outcome; siblings are never cancelled.
func Gather[T any](ctx context.Context, r Runner, fetchers []Fetcher[T]) []Outcome[T] {
	results := make([]Outcome[T], len(fetchers))

	var g errgroup.Group
	for i, f := range fetchers {
		i, f := i, f
		g.Go(func() error {
			results[i] = fetchOne(ctx, r, f)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func fetchOne[T any](ctx context.Context, r Runner, f Fetcher[T]) Outcome[T] {
	callCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	items := f.Fetch(callCtx)
	out := Outcome[T]{Info: f.Info(), Items: items, Elapsed: time.Since(start)}

	if r.Observe != nil {
		r.Observe(out.Info, len(items), out.Elapsed)
	}
	log.Debug().
		Str("source", out.Info.Key).
		Int("items", len(items)).
		Dur("elapsed", out.Elapsed).
		Msg("source fetched")

	return out
}

func logFailure(info Info, err error) {
	log.Warn().Err(err).Str("source", info.Key).Msg("source fetch failed")
}
