package sources

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	key   string
	items []int
	delay time.Duration
	calls atomic.Int32
}

func (s *stubFetcher) Info() Info { return Info{Key: s.key, Name: s.key} }

func (s *stubFetcher) Fetch(ctx context.Context) []int {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil
		}
	}
	return s.items
}

func nonEmpty(o Outcome[int]) bool { return len(o.Items) > 0 }

func TestFirstMatchStopsAtFirstAccepted(t *testing.T) {
	empty := &stubFetcher{key: "empty"}
	good := &stubFetcher{key: "good", items: []int{1, 2}}
	never := &stubFetcher{key: "never", items: []int{3}}

	out, ok := FirstMatch(context.Background(), Runner{}, []Fetcher[int]{empty, good, never}, nonEmpty)
	require.True(t, ok)
	assert.Equal(t, "good", out.Info.Key)
	assert.Equal(t, []int{1, 2}, out.Items)
	assert.EqualValues(t, 1, empty.calls.Load())
	assert.EqualValues(t, 0, never.calls.Load())
}

func TestFirstMatchTimeoutIsAFailure(t *testing.T) {
	slow := &stubFetcher{key: "slow", items: []int{1}, delay: time.Second}
	fast := &stubFetcher{key: "fast", items: []int{2}}

	var observed []string
	r := Runner{
		Timeout: 20 * time.Millisecond,
		Observe: func(info Info, items int, _ time.Duration) { observed = append(observed, info.Key) },
	}

	out, ok := FirstMatch(context.Background(), r, []Fetcher[int]{slow, fast}, nonEmpty)
	require.True(t, ok)
	assert.Equal(t, "fast", out.Info.Key)
	assert.Equal(t, []string{"slow", "fast"}, observed)
}

func TestFirstMatchNothingAccepted(t *testing.T) {
	_, ok := FirstMatch(context.Background(), Runner{}, []Fetcher[int]{&stubFetcher{key: "a"}}, nonEmpty)
	assert.False(t, ok)
}

func TestFirstMatchHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &stubFetcher{key: "a", items: []int{1}}
	_, ok := FirstMatch(ctx, Runner{}, []Fetcher[int]{f}, nonEmpty)
	assert.False(t, ok)
	assert.EqualValues(t, 0, f.calls.Load())
}

func TestGatherKeepsPartialResults(t *testing.T) {
	a := &stubFetcher{key: "a", items: []int{1}, delay: 10 * time.Millisecond}
	failed := &stubFetcher{key: "failed"}
	b := &stubFetcher{key: "b", items: []int{2, 3}}

	outs := Gather(context.Background(), Runner{Timeout: time.Second}, []Fetcher[int]{a, failed, b})
	require.Len(t, outs, 3)
	assert.Equal(t, []int{1}, outs[0].Items)
	assert.Empty(t, outs[1].Items)
	assert.Equal(t, []int{2, 3}, outs[2].Items)
}

func TestRunDispatchesOnStrategy(t *testing.T) {
	a := &stubFetcher{key: "a", items: []int{1}}
	b := &stubFetcher{key: "b", items: []int{2}}

	first := Run(context.Background(), Runner{}, SequentialFirstMatch, []Fetcher[int]{a, b}, nonEmpty)
	require.Len(t, first, 1)
	assert.Equal(t, "a", first[0].Info.Key)

	all := Run(context.Background(), Runner{}, ParallelGather, []Fetcher[int]{a, b}, nil)
	assert.Len(t, all, 2)
}
