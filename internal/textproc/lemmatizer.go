package textproc

import (
	"fmt"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer reduces a lowercase word to its dictionary base form
type Lemmatizer interface {
	Lemma(word string) (string, error)
}

type identityLemmatizer struct{}

func (identityLemmatizer) Lemma(word string) (string, error) { return word, nil }

// GolemLemmatizer adapts the golem English dictionary to Lemmatizer
type GolemLemmatizer struct {
	lem *golem.Lemmatizer
}

// NewGolemLemmatizer loads the English dictionary. Loading is expensive; build one per process.
func NewGolemLemmatizer() (*GolemLemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load english lemma dictionary: %w", err)
	}
	return &GolemLemmatizer{lem: lem}, nil
}

// Lemma returns the base form of word. Dictionary misses return the word itself.
func (g *GolemLemmatizer) Lemma(word string) (lemma string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lemmatizer panicked on %q: %v", word, r)
		}
	}()
	return g.lem.Lemma(word), nil
}

// NewLemmatizer builds the named lemmatizer. "none" disables lemmatization.
func NewLemmatizer(name string) (Lemmatizer, error) {
	switch name {
	case "", "golem":
		return NewGolemLemmatizer()
	case "none":
		return identityLemmatizer{}, nil
	default:
		return nil, fmt.Errorf("unsupported lemmatizer: %s", name)
	}
}
