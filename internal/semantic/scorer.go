package semantic

import (
	"context"
	"fmt"
	"math"

	"atscore/internal/errors"
	"atscore/internal/types"

	"golang.org/x/sync/errgroup"
)

// EmbedObserver is told about every embedding request.
type EmbedObserver func(ctx context.Context, provider string, err error)

// Scorer compares the embeddings of two raw texts.
type Scorer struct {
	embedder Embedder
	observe  EmbedObserver
}

// NewScorer wraps embedder. observe may be nil.
func NewScorer(embedder Embedder, observe EmbedObserver) *Scorer {
	return &Scorer{embedder: embedder, observe: observe}
}

// Embedder returns the underlying embedder.
func (s *Scorer) Embedder() Embedder { return s.embedder }

// Score is the cosine similarity of the two embeddings scaled to 0..100.
// Any embedding failure degrades the score to zero with ENCODING_FAILED.
func (s *Scorer) Score(ctx context.Context, resume, jobDescription string) types.Outcome {
	if s == nil || s.embedder == nil {
		return types.Degraded(errors.NewScoringError(errors.ErrCodeEncodingFailed,
			"no embedding model configured", nil))
	}

	var resumeVec, jdVec []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.embed(gctx, resume)
		resumeVec = v
		return err
	})
	g.Go(func() error {
		v, err := s.embed(gctx, jobDescription)
		jdVec = v
		return err
	})
	if err := g.Wait(); err != nil {
		return types.Degraded(errors.NewScoringError(errors.ErrCodeEncodingFailed,
			"failed to encode documents", err))
	}

	sim, err := Cosine(resumeVec, jdVec)
	if err != nil {
		return types.Degraded(errors.NewScoringError(errors.ErrCodeEncodingFailed,
			"embeddings are not comparable", err))
	}
	return types.OK(types.ScoreValue(sim * 100))
}

func (s *Scorer) embed(ctx context.Context, text string) ([]float32, error) {
	v, err := s.embedder.Embed(ctx, text)
	if s.observe != nil {
		s.observe(ctx, s.embedder.Name(), err)
	}
	return v, err
}

// Cosine returns 0 when either vector has zero length.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
