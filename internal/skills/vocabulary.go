// Package skills detects vocabulary skills in normalized text and scores
// how well a résumé covers the skills a job description asks for.
package skills

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"atscore/internal/textproc"

	"go.yaml.in/yaml/v3"
)

//go:embed default_vocabulary.yaml
var defaultVocabularyRaw []byte

// VocabularyFile is the on-disk layout of a skill vocabulary
type VocabularyFile struct {
	Skills     []string            `yaml:"skills,omitempty"`
	Categories map[string][]string `yaml:"categories,omitempty"`
}

// Vocabulary is an immutable, deduplicated set of skill terms with their
// compiled whole-word matchers.
type Vocabulary struct {
	terms    []string
	category map[string]string
	patterns []*regexp.Regexp
	dropped  []string
}

// termNormalizer mirrors the normalization applied to documents, minus
// lemmatization, so unmatchable terms can be found at load time.
var termNormalizer = textproc.NewNormalizer()

// matchable reports whether term survives normalization unchanged. Terms
// with digits or punctuation ("c++", "node.js"), words under three letters
// ("go") and stopwords can never appear in normalized text.
func matchable(term string) bool {
	return termNormalizer.Normalize(term) == term
}

// NewVocabulary builds a vocabulary from plain terms.
func NewVocabulary(terms []string) (*Vocabulary, error) {
	return newVocabulary(VocabularyFile{Skills: terms})
}

// DefaultVocabulary returns the bundled vocabulary.
func DefaultVocabulary() (*Vocabulary, error) {
	return ParseVocabulary(defaultVocabularyRaw)
}

// ParseVocabulary decodes a YAML vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file VocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing vocabulary: %w", err)
	}
	return newVocabulary(file)
}

// LoadVocabulary reads a YAML vocabulary from path.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

func newVocabulary(file VocabularyFile) (*Vocabulary, error) {
	v := &Vocabulary{category: make(map[string]string)}
	seen := make(map[string]struct{})

	add := func(raw, category string) error {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			return nil
		}
		if _, dup := seen[term]; dup {
			return nil
		}
		seen[term] = struct{}{}
		if !matchable(term) {
			v.dropped = append(v.dropped, term)
			return nil
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			return fmt.Errorf("compiling matcher for %q: %w", term, err)
		}
		v.terms = append(v.terms, term)
		v.patterns = append(v.patterns, re)
		if category != "" {
			v.category[term] = category
		}
		return nil
	}

	for _, term := range file.Skills {
		if err := add(term, ""); err != nil {
			return nil, err
		}
	}

	categories := make([]string, 0, len(file.Categories))
	for name := range file.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		for _, term := range file.Categories[name] {
			if err := add(term, name); err != nil {
				return nil, err
			}
		}
	}

	if len(v.terms) == 0 {
		if len(v.dropped) > 0 {
			return nil, fmt.Errorf("vocabulary contains no matchable skills (dropped %s)", strings.Join(v.dropped, ", "))
		}
		return nil, fmt.Errorf("vocabulary contains no skills")
	}
	return v, nil
}

// Terms returns the vocabulary terms in load order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Dropped returns the terms rejected at load because normalized text can
// never contain them.
func (v *Vocabulary) Dropped() []string {
	out := make([]string, len(v.dropped))
	copy(out, v.dropped)
	return out
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Category returns the category a term was declared under, or "".
func (v *Vocabulary) Category(term string) string {
	return v.category[term]
}
