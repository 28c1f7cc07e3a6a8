// Package lexical scores keyword overlap between two normalized documents
// with a TF-IDF model fitted on just those two documents.
package lexical

import (
	"math"
	"regexp"

	"atscore/internal/errors"
	"atscore/internal/types"
)

// tokenPattern keeps runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Corpus is a TF-IDF model over a fixed set of documents.
// Term frequency is the raw count, IDF is smoothed: ln((1+n)/(1+df))+1,
// and every document vector is L2-normalized.
type Corpus struct {
	vocabulary map[string]int
	vectors    [][]float64
}

// NewCorpus fits a TF-IDF model on documents. It returns an error when no
// document contains a single token.
func NewCorpus(documents ...string) (*Corpus, error) {
	counts := make([]map[string]int, len(documents))
	docFrequency := make(map[string]int)
	vocabulary := make(map[string]int)

	for i, doc := range documents {
		counts[i] = make(map[string]int)
		for _, token := range tokenPattern.FindAllString(doc, -1) {
			counts[i][token]++
		}
		for term := range counts[i] {
			docFrequency[term]++
			if _, ok := vocabulary[term]; !ok {
				vocabulary[term] = len(vocabulary)
			}
		}
	}

	if len(vocabulary) == 0 {
		return nil, errors.NewScoringError(errors.ErrCodeVectorizationFailed,
			"empty vocabulary; documents contain no terms", nil)
	}

	n := float64(len(documents))
	idf := make([]float64, len(vocabulary))
	for term, idx := range vocabulary {
		idf[idx] = math.Log((1+n)/(1+float64(docFrequency[term]))) + 1
	}

	c := &Corpus{vocabulary: vocabulary, vectors: make([][]float64, len(documents))}
	for i := range documents {
		vec := make([]float64, len(vocabulary))
		for term, count := range counts[i] {
			idx := vocabulary[term]
			vec[idx] = float64(count) * idf[idx]
		}
		c.vectors[i] = l2Normalize(vec)
	}
	return c, nil
}

// Terms returns the size of the fitted vocabulary.
func (c *Corpus) Terms() int { return len(c.vocabulary) }

// Similarity is the cosine similarity of two fitted documents.
// Vectors are unit length, or all zero for a document with no terms.
func (c *Corpus) Similarity(i, j int) float64 {
	var dot float64
	for k, v := range c.vectors[i] {
		dot += v * c.vectors[j][k]
	}
	return dot
}

// Score is the TF-IDF cosine similarity of the two normalized texts as a
// percentage. Texts without any terms degrade to zero.
func Score(normalizedResume, normalizedJD string) types.Outcome {
	corpus, err := NewCorpus(normalizedResume, normalizedJD)
	if err != nil {
		return types.Degraded(err)
	}
	return types.OK(types.ScoreValue(corpus.Similarity(0, 1) * 100))
}

func l2Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
