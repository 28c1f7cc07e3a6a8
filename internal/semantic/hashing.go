package semantic

import (
	"context"
	"math"
	"strings"
	"unicode"

	"atscore/internal/config"

	"github.com/cespare/xxhash/v2"
)

const defaultHashingDimensions = 384

// HashingEmbedder is an offline embedder. Lowercased word unigrams and
// bigrams are hashed into a fixed number of signed buckets and the result
// is L2-normalized. Identical texts always produce identical vectors.
type HashingEmbedder struct {
	dims int
}

var _ Embedder = (*HashingEmbedder)(nil)

// NewHashingEmbedder falls back to 384 dimensions when dims is not positive.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = defaultHashingDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Name implements Embedder
func (h *HashingEmbedder) Name() string { return config.ProviderHashing }

// Dimensions is the vector length.
func (h *HashingEmbedder) Dimensions() int { return h.dims }

// Embed implements Embedder. Text without any word yields a zero vector.
func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	acc := make([]float64, h.dims)
	for i, w := range words {
		h.add(acc, w, 1)
		if i > 0 {
			h.add(acc, words[i-1]+" "+w, 0.5)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, h.dims)
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

func (h *HashingEmbedder) add(acc []float64, feature string, weight float64) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(h.dims)
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}
