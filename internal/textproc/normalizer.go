// Package textproc turns free text into the normalized token stream used by
// lexical scoring and skill extraction.
package textproc

import (
	"bufio"
	"bytes"
	_ "embed"
	"strings"
	"unicode"
)

//go:embed stopwords_en.txt
var stopwordsRaw []byte

// minTokenLength is the shortest token that survives normalization.
const minTokenLength = 3

// EnglishStopwords returns a fresh copy of the bundled English stopword set.
func EnglishStopwords() map[string]struct{} {
	set := make(map[string]struct{}, 180)
	scanner := bufio.NewScanner(bytes.NewReader(stopwordsRaw))
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			set[word] = struct{}{}
		}
	}
	return set
}

// Normalizer holds the stopword set, lemmatizer and protected terms.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	stopwords  map[string]struct{}
	lemmatizer Lemmatizer
	protected  map[string]struct{}
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithStopwords replaces the default English stopword set.
func WithStopwords(words map[string]struct{}) Option {
	return func(n *Normalizer) {
		n.stopwords = words
	}
}

// WithLemmatizer sets the lemmatizer. Without one tokens pass through unchanged.
func WithLemmatizer(l Lemmatizer) Option {
	return func(n *Normalizer) {
		n.lemmatizer = l
	}
}

// WithProtectedTerms keeps every word of the given terms out of lemmatization,
// so vocabulary entries such as "pandas" or "machine learning" still match.
func WithProtectedTerms(terms []string) Option {
	return func(n *Normalizer) {
		for _, term := range terms {
			for _, word := range strings.Fields(strings.ToLower(term)) {
				n.protected[word] = struct{}{}
			}
		}
	}
}

// NewNormalizer creates a Normalizer with the English stopword set and no lemmatizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		stopwords:  EnglishStopwords(),
		lemmatizer: identityLemmatizer{},
		protected:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.lemmatizer == nil {
		n.lemmatizer = identityLemmatizer{}
	}
	return n
}

// Normalize replaces non-letters with spaces, lowercases, drops stopwords and
// tokens shorter than three letters, lemmatizes and joins with single spaces.
//
// Two tokens skip lemmatization: words of protected vocabulary terms, so that
// "pandas" or "kubernetes" still match, and tokens whose lemma would itself be
// filtered out. Protected words therefore also reach lexical scoring in their
// surface form.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	tokens := strings.Fields(strings.ToLower(stripNonLetters(text)))
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) < minTokenLength {
			continue
		}
		if _, stop := n.stopwords[token]; stop {
			continue
		}
		kept = append(kept, n.lemma(token))
	}
	return strings.Join(kept, " ")
}

// Tokens returns the normalized text split into tokens.
func (n *Normalizer) Tokens(text string) []string {
	return strings.Fields(n.Normalize(text))
}

// maxLemmaSteps bounds how far lemma follows a chain such as
// "better" -> "good" before giving up.
const maxLemmaSteps = 3

// lemma returns the base form of token. Protected terms are returned as is.
// The lemmatizer is reapplied until its output stops changing, and a step
// whose result normalization would drop, like "went" -> "go", is not taken. Feeding the output back in is
// therefore a no-op.
func (n *Normalizer) lemma(token string) string {
	if _, ok := n.protected[token]; ok {
		return token
	}
	current := token
	for range maxLemmaSteps {
		next, err := n.lemmatizer.Lemma(current)
		if err != nil || next == current || !n.keeps(next) {
			break
		}
		current = next
	}
	return current
}

// keeps reports whether token would survive the filtering steps unchanged.
func (n *Normalizer) keeps(token string) bool {
	if len(token) < minTokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		if c := token[i]; c < 'a' || c > 'z' {
			return false
		}
	}
	_, stop := n.stopwords[token]
	return !stop
}

// stripNonLetters keeps ASCII letters and whitespace; everything else becomes a space.
func stripNonLetters(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}
