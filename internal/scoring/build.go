package scoring

import (
	"context"

	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/semantic"
	"atscore/internal/skills"
	"atscore/internal/textproc"
	"atscore/internal/types"
)

// Observer receives scoring telemetry. Any method may be a no-op.
type Observer interface {
	ObserveEmbedding(ctx context.Context, provider string, err error)
	ObserveDegradation(ctx context.Context, d types.Degradation)
}

// BuildEngine wires an Engine from configuration. observer may be nil.
func BuildEngine(cfg *config.Config, logger *errors.Logger, observer Observer) (*Engine, error) {
	vocab, err := LoadVocabulary(cfg.Scoring.Vocabulary, logger)
	if err != nil {
		return nil, err
	}

	lemmatizer, err := textproc.NewLemmatizer(cfg.Scoring.Lemmatizer)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"failed to initialize lemmatizer", err)
	}

	embedder, err := semantic.NewEmbedder(cfg.Semantic, logger)
	if err != nil {
		return nil, err
	}

	var onEmbed semantic.EmbedObserver
	var onDegraded DegradationObserver
	if observer != nil {
		onEmbed = observer.ObserveEmbedding
		onDegraded = observer.ObserveDegradation
	}

	logger.Debug("Scoring engine initialized",
		"vocabulary_terms", vocab.Len(),
		"lemmatizer", cfg.Scoring.Lemmatizer,
		"embedder", embedder.Name(),
		"composition_semantic", cfg.Scoring.Composition.Semantic,
		"composition_keyword", cfg.Scoring.Composition.Keyword)

	return NewEngine(Options{
		Stopwords:   textproc.EnglishStopwords(),
		Lemmatizer:  lemmatizer,
		Vocabulary:  vocab,
		Semantic:    semantic.NewScorer(embedder, onEmbed),
		Composition: cfg.Scoring.Composition,
		Readiness:   cfg.Scoring.Readiness,
		Logger:      logger,
		OnDegraded:  onDegraded,
	})
}

// LoadVocabulary picks the vocabulary file, then inline skills, then the
// bundled list. Terms that normalized text can never contain are dropped
// with a warning.
func LoadVocabulary(cfg config.VocabularyConfig, logger *errors.Logger) (*skills.Vocabulary, error) {
	var (
		vocab *skills.Vocabulary
		err   error
	)
	switch {
	case cfg.File != "":
		vocab, err = skills.LoadVocabulary(cfg.File)
	case len(cfg.Skills) > 0:
		vocab, err = skills.NewVocabulary(cfg.Skills)
	default:
		vocab, err = skills.DefaultVocabulary()
	}
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeVocabularyLoadFailed,
			"failed to load skill vocabulary", err).WithContext("file", cfg.File)
	}
	if dropped := vocab.Dropped(); len(dropped) > 0 && logger != nil {
		logger.Warn("skill vocabulary terms can never match and were dropped",
			"terms", dropped, "file", cfg.File,
			"hint", "use lowercase letters and spaces, words of three or more letters, no stopwords")
	}
	return vocab, nil
}
