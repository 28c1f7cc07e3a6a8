package types

import (
	"fmt"
	"math"
)

// WeightVector assigns a weight to each readiness dimension
type WeightVector struct {
	Semantic float64 `json:"semantic" mapstructure:"semantic"`
	Keyword  float64 `json:"keyword" mapstructure:"keyword"`
	Skill    float64 `json:"skill" mapstructure:"skill"`
	Quality  float64 `json:"quality" mapstructure:"quality"`
}

// Sum returns the total of all four weights.
func (w WeightVector) Sum() float64 {
	return w.Semantic + w.Keyword + w.Skill + w.Quality
}

// Normalize rescales the weights to sum to 1. A zero vector is returned unchanged.
func (w WeightVector) Normalize() WeightVector {
	total := w.Sum()
	if total <= 0 {
		return w
	}
	return WeightVector{
		Semantic: w.Semantic / total,
		Keyword:  w.Keyword / total,
		Skill:    w.Skill / total,
		Quality:  w.Quality / total,
	}
}

// Validate rejects negative or non-finite weights.
func (w WeightVector) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"semantic", w.Semantic},
		{"keyword", w.Keyword},
		{"skill", w.Skill},
		{"quality", w.Quality},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s weight must be a finite number", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%s weight must not be negative, got %v", f.name, f.value)
		}
	}
	return nil
}

// CompositionWeights mixes the semantic and keyword scores into the final score
type CompositionWeights struct {
	Semantic float64 `json:"semantic" mapstructure:"semantic"`
	Keyword  float64 `json:"keyword" mapstructure:"keyword"`
}

// DefaultCompositionWeights weighs semantic and keyword relevance equally.
func DefaultCompositionWeights() CompositionWeights {
	return CompositionWeights{Semantic: 0.5, Keyword: 0.5}
}

// DefaultReadinessWeights are the dashboard defaults for readiness.
func DefaultReadinessWeights() WeightVector {
	return WeightVector{Semantic: 0.4, Keyword: 0.3, Skill: 0.2, Quality: 0.1}
}
