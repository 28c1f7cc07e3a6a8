package semantic

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func TestScorerScore(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"resume":     {1, 0},
		"same":       {1, 0},
		"orthogonal": {0, 1},
		"diagonal":   {1, 1},
		"opposite":   {-1, 0},
		"short":      {1},
	}}
	s := NewScorer(emb, nil)

	tests := []struct {
		name     string
		jd       string
		want     float64
		degraded bool
	}{
		{"identical direction", "same", 100, false},
		{"orthogonal", "orthogonal", 0, false},
		{"forty five degrees", "diagonal", 70.71, false},
		{"negative similarity clamps to zero", "opposite", 0, false},
		{"dimension mismatch", "short", 0, true},
		{"unknown text fails", "missing", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Score(context.Background(), "resume", tt.jd)
			assert.Equal(t, tt.degraded, out.IsDegraded())
			assert.InDelta(t, tt.want, float64(out.Value), 0.01)
			if tt.degraded {
				assert.Equal(t, errors.ErrCodeEncodingFailed, errors.CodeOf(out.Reason))
			}
		})
	}
}

func TestScorerEmbedderFailure(t *testing.T) {
	var calls atomic.Int32
	observe := func(_ context.Context, provider string, err error) {
		calls.Add(1)
		assert.Equal(t, "fake", provider)
		assert.Error(t, err)
	}
	s := NewScorer(&fakeEmbedder{err: assert.AnError}, observe)

	out := s.Score(context.Background(), "a", "b")
	assert.True(t, out.IsDegraded())
	assert.Equal(t, types.ScoreValue(0), out.Value)
	assert.ErrorIs(t, out.Reason, assert.AnError)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestNilScorerDegrades(t *testing.T) {
	var s *Scorer
	out := s.Score(context.Background(), "a", "b")
	assert.True(t, out.IsDegraded())
}

func TestHashingEmbedder(t *testing.T) {
	h := NewHashingEmbedder(0)
	assert.Equal(t, defaultHashingDimensions, h.Dimensions())
	ctx := context.Background()

	a, err := h.Embed(ctx, "Senior Go engineer building distributed systems")
	require.NoError(t, err)
	b, err := h.Embed(ctx, "Senior Go engineer building distributed systems")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	sim, err := Cosine(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)

	empty, err := h.Embed(ctx, "   ")
	require.NoError(t, err)
	sim, err = Cosine(a, empty)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestHashingEmbedderRanksRelatedTextHigher(t *testing.T) {
	s := NewScorer(NewHashingEmbedder(384), nil)
	ctx := context.Background()

	jd := "backend engineer with python django postgresql and docker experience"
	related := s.Score(ctx, "python backend engineer, django and postgresql, docker deployments", jd)
	unrelated := s.Score(ctx, "pastry chef specialising in french desserts and bread", jd)

	require.False(t, related.IsDegraded())
	require.False(t, unrelated.IsDegraded())
	assert.Greater(t, float64(related.Value), float64(unrelated.Value))
}

func TestHashingEmbedderHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHashingEmbedder(8).Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEmbedder(t *testing.T) {
	logger := errors.Discard()

	emb, err := NewEmbedder(config.SemanticConfig{Provider: config.ProviderHashing, Dimensions: 64}, logger)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderHashing, emb.Name())

	_, err = NewEmbedder(config.SemanticConfig{Provider: "word2vec"}, logger)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestBreaker(t *testing.T) {
	t.Run("disabled breaker passes through", func(t *testing.T) {
		b := NewBreaker[int]("test", config.CircuitBreakerConfig{Enabled: false}, nil)
		assert.Nil(t, b)
		v, err := b.Execute(func() (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		assert.True(t, b.IsHealthy())
		assert.Equal(t, false, b.Stats()["enabled"])
	})

	t.Run("trips after failures", func(t *testing.T) {
		b := NewBreaker[int]("test", config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		}, errors.Discard())

		assert.Equal(t, "Embedding-test", b.Stats()["name"])
		for range 2 {
			_, _ = b.Execute(func() (int, error) { return 0, assert.AnError })
		}
		assert.False(t, b.IsHealthy())
		assert.Equal(t, "open", b.Stats()["state"])
	})
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network error", &net.OpError{Op: "dial", Err: fmt.Errorf("refused")}, true},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"unavailable", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusServiceUnavailable}), true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"plain error", assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestBackoff(t *testing.T) {
	assert.GreaterOrEqual(t, backoff(1), time.Second)
	assert.Less(t, backoff(1), 1100*time.Millisecond)
	assert.GreaterOrEqual(t, backoff(3), 4*time.Second)
	assert.Equal(t, 30*time.Second, backoff(10))
}
