// Package scoring composes the individual scorers into final, readiness and
// full-report results. An Engine is immutable once built and is shared by
// every concurrent analysis.
package scoring

import (
	"context"
	"strings"

	"atscore/internal/errors"
	"atscore/internal/insights"
	"atscore/internal/lexical"
	"atscore/internal/quality"
	"atscore/internal/sections"
	"atscore/internal/semantic"
	"atscore/internal/skills"
	"atscore/internal/textproc"
	"atscore/internal/types"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Component names used in degradations and logs
const (
	ComponentLexical  = "lexical"
	ComponentSemantic = "semantic"
)

// DegradationObserver is told about every degraded scorer.
type DegradationObserver func(ctx context.Context, d types.Degradation)

// Options bundles the process-wide collaborators of an Engine.
type Options struct {
	Stopwords   map[string]struct{}
	Lemmatizer  textproc.Lemmatizer
	Vocabulary  *skills.Vocabulary
	Semantic    *semantic.Scorer
	Composition types.CompositionWeights
	Readiness   types.WeightVector
	Logger      *errors.Logger
	OnDegraded  DegradationObserver
}

// Engine holds everything an analysis needs.
type Engine struct {
	opts       Options
	normalizer *textproc.Normalizer
	skills     *skills.Extractor
	sections   *sections.Extractor
	logger     *errors.Logger
}

// NewEngine builds an Engine. A nil vocabulary falls back to the bundled one.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Vocabulary == nil {
		vocab, err := skills.DefaultVocabulary()
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeVocabularyLoadFailed,
				"failed to load bundled vocabulary", err)
		}
		opts.Vocabulary = vocab
	}
	if opts.Stopwords == nil {
		opts.Stopwords = textproc.EnglishStopwords()
	}
	if opts.Logger == nil {
		opts.Logger = errors.Discard()
	}

	normalizer := textproc.NewNormalizer(
		textproc.WithStopwords(opts.Stopwords),
		textproc.WithLemmatizer(opts.Lemmatizer),
		textproc.WithProtectedTerms(opts.Vocabulary.Terms()),
	)

	return &Engine{
		opts:       opts,
		normalizer: normalizer,
		skills:     skills.NewExtractor(opts.Vocabulary),
		sections:   sections.NewExtractor(),
		logger:     opts.Logger,
	}, nil
}

// WithVocabulary returns a new Engine that shares everything except the
// skill vocabulary. The receiver is left untouched.
func (e *Engine) WithVocabulary(vocab *skills.Vocabulary) (*Engine, error) {
	opts := e.opts
	opts.Vocabulary = vocab
	return NewEngine(opts)
}

// Vocabulary returns the skill vocabulary in use.
func (e *Engine) Vocabulary() *skills.Vocabulary { return e.opts.Vocabulary }

// ReadinessWeights are the configured default readiness weights.
func (e *Engine) ReadinessWeights() types.WeightVector { return e.opts.Readiness }

// Embedder returns the semantic embedder, or nil.
func (e *Engine) Embedder() semantic.Embedder {
	if e.opts.Semantic == nil {
		return nil
	}
	return e.opts.Semantic.Embedder()
}

// Normalize runs the text normalizer.
func (e *Engine) Normalize(text string) string {
	return e.normalizer.Normalize(text)
}

// ComputeScores returns the semantic, keyword and final scores. Blank input
// yields all zeros without invoking any scorer.
func (e *Engine) ComputeScores(ctx context.Context, resume, jobDescription string) types.Scores {
	if strings.TrimSpace(resume) == "" || strings.TrimSpace(jobDescription) == "" {
		return types.Scores{}
	}
	return e.computeScores(ctx, resume, jobDescription, e.Normalize(resume), e.Normalize(jobDescription))
}

func (e *Engine) computeScores(ctx context.Context, resume, jd, normResume, normJD string) types.Scores {
	var lex, sem types.Outcome

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lex = lexical.Score(normResume, normJD)
		return nil
	})
	g.Go(func() error {
		sem = e.opts.Semantic.Score(gctx, resume, jd)
		return nil
	})
	_ = g.Wait()

	scores := types.Scores{
		Semantic: sem.Value.Clamp(),
		Keyword:  lex.Value.Clamp(),
	}
	scores.Final = types.ScoreValue(
		e.opts.Composition.Semantic*float64(scores.Semantic) +
			e.opts.Composition.Keyword*float64(scores.Keyword),
	).Clamp()

	scores.Degradations = append(scores.Degradations, e.degradation(ctx, ComponentLexical, lex)...)
	scores.Degradations = append(scores.Degradations, e.degradation(ctx, ComponentSemantic, sem)...)
	return scores
}

func (e *Engine) degradation(ctx context.Context, component string, o types.Outcome) []types.Degradation {
	if !o.IsDegraded() {
		return nil
	}
	d := types.Degradation{Component: component, Code: errors.CodeOf(o.Reason)}
	if o.Reason != nil {
		d.Reason = o.Reason.Error()
	}
	e.logger.LogDegraded(o.Reason, component)
	if e.opts.OnDegraded != nil {
		e.opts.OnDegraded(ctx, d)
	}
	return []types.Degradation{d}
}

// SkillGap extracts both skill sets and reports the overlap.
func (e *Engine) SkillGap(resume, jobDescription string) types.SkillGapReport {
	return e.skillGap(e.Normalize(resume), e.Normalize(jobDescription))
}

func (e *Engine) skillGap(normResume, normJD string) types.SkillGapReport {
	report := skills.GapReport(e.skills.Extract(normResume), e.skills.Extract(normJD))
	report.Guidance = insights.SkillGuidance(report.SkillScore)
	return report
}

// Quality runs the résumé quality heuristics on raw text.
func (e *Engine) Quality(resume string) types.QualityReport {
	return quality.Analyze(resume)
}

// Sections splits a raw résumé into its standard sections.
func (e *Engine) Sections(resume string) types.SectionMap {
	return e.sections.Extract(resume)
}

// Readiness applies weights to the four dimensions and classifies the result.
func (e *Engine) Readiness(d types.Dimensions, w types.WeightVector) types.ReadinessResult {
	r := RecruiterReadiness(d, w)
	return types.ReadinessResult{
		Readiness:      r,
		Dimensions:     d,
		Weights:        w,
		Classification: insights.ReadinessClassification(r),
		Percentile:     insights.MarketPercentile(r),
	}
}

// Analyze runs every scorer and assembles the full report. The weights are
// used as given.
func (e *Engine) Analyze(ctx context.Context, resume, jobDescription string, weights types.WeightVector) types.AnalysisReport {
	normResume := e.Normalize(resume)
	normJD := e.Normalize(jobDescription)

	var scores types.Scores
	if strings.TrimSpace(resume) != "" && strings.TrimSpace(jobDescription) != "" {
		scores = e.computeScores(ctx, resume, jobDescription, normResume, normJD)
	}

	gap := e.skillGap(normResume, normJD)
	q := e.Quality(resume)
	secs := e.Sections(resume)

	report := types.AnalysisReport{
		ID:            uuid.NewString(),
		Scores:        scores,
		SkillScore:    gap.SkillScore,
		QualityScore:  q.QualityScore,
		Weights:       weights,
		ResumeSkills:  gap.ResumeSkills,
		JobSkills:     gap.JobSkills,
		MatchedSkills: gap.MatchedSkills,
		MissingSkills: gap.MissingSkills,
		Sections:      secs,
		Quality:       q,
	}
	dims := report.Dimensions()
	report.Readiness = RecruiterReadiness(dims, weights)
	report.Insights = insights.Build(scores.Final, report.Readiness, dims, secs)
	return report
}

// RecruiterReadiness is the weighted sum of the four dimensions, clamped.
// Weights are not renormalized.
func RecruiterReadiness(d types.Dimensions, w types.WeightVector) types.ScoreValue {
	sum := w.Semantic*float64(d.Semantic) +
		w.Keyword*float64(d.Keyword) +
		w.Skill*float64(d.Skill) +
		w.Quality*float64(d.Quality)
	return types.ScoreValue(sum).Clamp()
}
