package textproc

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLemmatizer lemmatizes from a fixed table and fails on listed words.
type mapLemmatizer struct {
	table map[string]string
	fail  map[string]bool
}

func (m mapLemmatizer) Lemma(word string) (string, error) {
	if m.fail[word] {
		return "", fmt.Errorf("no lemma for %s", word)
	}
	if lemma, ok := m.table[word]; ok {
		return lemma, nil
	}
	return word, nil
}

func TestEnglishStopwords(t *testing.T) {
	words := EnglishStopwords()
	assert.Len(t, words, 179)
	for _, w := range []string{"the", "and", "with", "because", "wouldn't"} {
		assert.Contains(t, words, w)
	}
	assert.NotContains(t, words, "python")
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only stopwords", "the and of with", ""},
		{"punctuation and digits", "Python3, SQL & Docker!!", "python sql docker"},
		{"short tokens dropped", "Go is an ok AI language", "language"},
		{"mixed whitespace", "Built\tdata\npipelines   daily", "built data pipelines daily"},
		{"non ascii letters become spaces", "café résumé", "caf sum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeLemmatizesWithFallback(t *testing.T) {
	lem := mapLemmatizer{
		table: map[string]string{"running": "run", "pipelines": "pipeline"},
		fail:  map[string]bool{"kubernetes": true},
	}
	n := NewNormalizer(WithLemmatizer(lem))

	assert.Equal(t, "run kubernetes pipeline", n.Normalize("Running Kubernetes pipelines"))
}

func TestNormalizeProtectedTerms(t *testing.T) {
	lem := mapLemmatizer{table: map[string]string{"pandas": "panda", "learning": "learn"}}
	n := NewNormalizer(WithLemmatizer(lem), WithProtectedTerms([]string{"Pandas", "machine learning"}))

	assert.Equal(t, "pandas machine learning", n.Normalize("pandas, machine learning"))
}

func TestNormalizeFixedPoint(t *testing.T) {
	lem := mapLemmatizer{table: map[string]string{"engineers": "engineer", "designed": "design"}}
	n := NewNormalizer(WithLemmatizer(lem))

	inputs := []string{
		"Senior engineers designed scalable APIs with 99.9% uptime.",
		"",
		"The quick brown fox, of course!",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizeOutputShape(t *testing.T) {
	n := NewNormalizer()
	out := n.Normalize("  Led 12 engineers; shipped $2M platform...  ")

	assert.Equal(t, strings.ToLower(out), out)
	assert.NotContains(t, out, "  ")
	for _, tok := range strings.Fields(out) {
		assert.GreaterOrEqual(t, len(tok), minTokenLength)
	}
	assert.Equal(t, []string{"led", "engineers", "shipped", "platform"}, n.Tokens("  Led 12 engineers; shipped $2M platform...  "))
}

func TestNewLemmatizer(t *testing.T) {
	l, err := NewLemmatizer("none")
	require.NoError(t, err)
	got, err := l.Lemma("running")
	require.NoError(t, err)
	assert.Equal(t, "running", got)

	_, err = NewLemmatizer("porter")
	assert.Error(t, err)
}
