package formatters

import (
	"encoding/json"
	"fmt"
	"sort"

	"atscore/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	for _, style := range []style{styleText, styleMarkdown} {
		registry.RegisterFormatter(string(style), "AnalysisReport", &ReportFormatter{style: style})
		registry.RegisterFormatter(string(style), "Scores", &ScoresFormatter{style: style})
		registry.RegisterFormatter(string(style), "SkillGapReport", &SkillGapFormatter{style: style})
		registry.RegisterFormatter(string(style), "ReadinessResult", &ReadinessFormatter{style: style})
		registry.RegisterFormatter(string(style), "QualityReport", &QualityFormatter{style: style})
		registry.RegisterFormatter(string(style), "SectionMap", &SectionsFormatter{style: style})
	}

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisReport, *types.AnalysisReport:
		return "AnalysisReport"
	case types.Scores:
		return "Scores"
	case types.SkillGapReport:
		return "SkillGapReport"
	case types.ReadinessResult:
		return "ReadinessResult"
	case types.QualityReport:
		return "QualityReport"
	case types.SectionMap:
		return "SectionMap"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ReportFormatter renders a full analysis report
type ReportFormatter struct{ style style }

func (f *ReportFormatter) Format(data any) (string, error) {
	var r types.AnalysisReport
	switch v := data.(type) {
	case types.AnalysisReport:
		r = v
	case *types.AnalysisReport:
		r = *v
	default:
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	w := newWriter(f.style)
	w.title("ATS Analysis Report")
	w.field("Analysis ID", r.ID)
	w.blank()

	w.heading("Core Metrics")
	w.field("Semantic Match", score(r.Scores.Semantic))
	w.field("Keyword Match", score(r.Scores.Keyword))
	w.field("Final ATS Score", score(r.Scores.Final))
	w.field("Skill Match", score(r.SkillScore))
	w.field("Resume Quality", score(r.QualityScore))
	w.field("Recruiter Readiness", score(r.Readiness))
	w.blank()

	w.heading("Classification")
	w.field("Hiring", r.Insights.HiringClassification)
	w.field("Readiness", r.Insights.ReadinessClassification)
	w.field("Market Percentile", fmt.Sprintf("Top %.2f%% of applicants", 100-r.Insights.MarketPercentile))
	w.blank()

	w.heading("Skills")
	w.field("Matched", joinOrNone(r.MatchedSkills))
	w.field("Missing", joinOrNone(r.MissingSkills))
	w.paragraph(r.Insights.SkillGuidance)

	w.heading("Risks")
	w.list(r.Insights.Risks)

	w.heading("Recommendations")
	w.list(r.Insights.Recommendations)

	w.heading("Structure")
	w.field("Section Coverage", score(r.Insights.Diagnostics.SectionCoverage))
	w.field("Sections Found", joinOrNone(r.Sections.Present()))
	w.list(r.Insights.Diagnostics.Observations)

	if len(r.Scores.Degradations) > 0 {
		w.heading("Degraded Scores")
		w.list(degradationLines(r.Scores.Degradations))
	}

	w.heading("Final Recommendation")
	w.paragraph(r.Insights.HiringRecommendation)

	return w.String(), nil
}

func (f *ReportFormatter) SupportedType() string { return "AnalysisReport" }

// ScoresFormatter renders the composed scores
type ScoresFormatter struct{ style style }

func (f *ScoresFormatter) Format(data any) (string, error) {
	s, ok := data.(types.Scores)
	if !ok {
		return "", fmt.Errorf("expected Scores, got %T", data)
	}

	w := newWriter(f.style)
	w.title("ATS Scores")
	w.field("Semantic Match", score(s.Semantic))
	w.field("Keyword Match", score(s.Keyword))
	w.field("Final ATS Score", score(s.Final))
	if len(s.Degradations) > 0 {
		w.blank()
		w.heading("Degraded Scores")
		w.list(degradationLines(s.Degradations))
	}
	return w.String(), nil
}

func (f *ScoresFormatter) SupportedType() string { return "Scores" }

// SkillGapFormatter renders the skill overlap
type SkillGapFormatter struct{ style style }

func (f *SkillGapFormatter) Format(data any) (string, error) {
	g, ok := data.(types.SkillGapReport)
	if !ok {
		return "", fmt.Errorf("expected SkillGapReport, got %T", data)
	}

	w := newWriter(f.style)
	w.title("Skill Gap")
	w.field("Skill Match", score(g.SkillScore))
	w.field("Resume Skills", joinOrNone(g.ResumeSkills))
	w.field("Job Skills", joinOrNone(g.JobSkills))
	w.field("Matched", joinOrNone(g.MatchedSkills))
	w.field("Missing", joinOrNone(g.MissingSkills))
	if g.Guidance != "" {
		w.blank()
		w.paragraph(g.Guidance)
	}
	return w.String(), nil
}

func (f *SkillGapFormatter) SupportedType() string { return "SkillGapReport" }

// ReadinessFormatter renders recruiter readiness
type ReadinessFormatter struct{ style style }

func (f *ReadinessFormatter) Format(data any) (string, error) {
	r, ok := data.(types.ReadinessResult)
	if !ok {
		return "", fmt.Errorf("expected ReadinessResult, got %T", data)
	}

	w := newWriter(f.style)
	w.title("Recruiter Readiness")
	w.field("Readiness", score(r.Readiness))
	w.field("Classification", r.Classification)
	w.field("Market Percentile", fmt.Sprintf("%.2f", r.Percentile))
	w.blank()
	w.heading("Dimensions")
	w.field("Semantic", fmt.Sprintf("%s (weight %.2f)", score(r.Dimensions.Semantic), r.Weights.Semantic))
	w.field("Keyword", fmt.Sprintf("%s (weight %.2f)", score(r.Dimensions.Keyword), r.Weights.Keyword))
	w.field("Skill", fmt.Sprintf("%s (weight %.2f)", score(r.Dimensions.Skill), r.Weights.Skill))
	w.field("Quality", fmt.Sprintf("%s (weight %.2f)", score(r.Dimensions.Quality), r.Weights.Quality))
	return w.String(), nil
}

func (f *ReadinessFormatter) SupportedType() string { return "ReadinessResult" }

// QualityFormatter renders the quality heuristics
type QualityFormatter struct{ style style }

func (f *QualityFormatter) Format(data any) (string, error) {
	q, ok := data.(types.QualityReport)
	if !ok {
		return "", fmt.Errorf("expected QualityReport, got %T", data)
	}

	w := newWriter(f.style)
	w.title("Resume Quality")
	w.field("Quality Score", score(q.QualityScore))
	w.field("Word Count", fmt.Sprint(q.WordCount))
	w.field("Digits", fmt.Sprint(q.NumbersCount))
	w.field("Percentage Mentions", fmt.Sprint(q.PercentageMentions))
	return w.String(), nil
}

func (f *QualityFormatter) SupportedType() string { return "QualityReport" }

// SectionsFormatter renders the extracted résumé sections
type SectionsFormatter struct{ style style }

func (f *SectionsFormatter) Format(data any) (string, error) {
	m, ok := data.(types.SectionMap)
	if !ok {
		return "", fmt.Errorf("expected SectionMap, got %T", data)
	}

	w := newWriter(f.style)
	w.title("Resume Sections")
	for _, name := range types.SectionNames {
		w.heading(name)
		text := m.Get(name)
		if text == "" {
			text = "(not found)"
		}
		w.paragraph(text)
	}
	return w.String(), nil
}

func (f *SectionsFormatter) SupportedType() string { return "SectionMap" }

func degradationLines(ds []types.Degradation) []string {
	lines := make([]string, 0, len(ds))
	for _, d := range ds {
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", d.Component, d.Code, d.Reason))
	}
	return lines
}

// GlobalRegistry is the shared registry used by the CLI and server
var GlobalRegistry = NewFormatterRegistry()
