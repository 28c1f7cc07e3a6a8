package types

import (
	"math"
	"sort"
)

// DocumentKind distinguishes the two inputs of an analysis
type DocumentKind string

const (
	Resume         DocumentKind = "resume"
	JobDescription DocumentKind = "job_description"
)

// RawDocument is arbitrary text as received, before any normalization
type RawDocument struct {
	Kind DocumentKind `json:"kind"`
	Text string       `json:"text"`
}

// ScoreValue is a percentage-scale score. Producers clamp before returning.
type ScoreValue float64

// Clamp bounds the score to [0, 100]. NaN clamps to 0.
func (s ScoreValue) Clamp() ScoreValue {
	v := float64(s)
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return s
}

// Round returns the score rounded to two decimals, as displayed.
func (s ScoreValue) Round() float64 {
	return math.Round(float64(s)*100) / 100
}

// SkillSet is an unordered set of vocabulary terms
type SkillSet map[string]struct{}

// NewSkillSet builds a set from the given terms.
func NewSkillSet(terms ...string) SkillSet {
	s := make(SkillSet, len(terms))
	for _, t := range terms {
		s[t] = struct{}{}
	}
	return s
}

func (s SkillSet) Has(term string) bool {
	_, ok := s[term]
	return ok
}

func (s SkillSet) Len() int { return len(s) }

// Sorted returns the members in lexical order.
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members present in both sets.
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	out := make(SkillSet)
	for t := range s {
		if other.Has(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s absent from other.
func (s SkillSet) Difference(other SkillSet) SkillSet {
	out := make(SkillSet)
	for t := range s {
		if !other.Has(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// QualityReport holds structural counts of a résumé and the derived score
type QualityReport struct {
	WordCount          int        `json:"wordCount"`
	NumbersCount       int        `json:"numbersCount"`
	PercentageMentions int        `json:"percentageMentions"`
	QualityScore       ScoreValue `json:"qualityScore"`
}

// Section names recognised by the section extractor
const (
	SectionSkills     = "skills"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionProjects   = "projects"
)

// SectionNames lists the recognised sections in report order.
var SectionNames = []string{SectionSkills, SectionExperience, SectionEducation, SectionProjects}

// SectionMap holds the captured text of each recognised section ("" when absent)
type SectionMap struct {
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
	Projects   string `json:"projects"`
}

// Get returns the captured text for a section name.
func (m SectionMap) Get(name string) string {
	switch name {
	case SectionSkills:
		return m.Skills
	case SectionExperience:
		return m.Experience
	case SectionEducation:
		return m.Education
	case SectionProjects:
		return m.Projects
	}
	return ""
}

// Set stores the captured text for a section name; unknown names are ignored.
func (m *SectionMap) Set(name, text string) {
	switch name {
	case SectionSkills:
		m.Skills = text
	case SectionExperience:
		m.Experience = text
	case SectionEducation:
		m.Education = text
	case SectionProjects:
		m.Projects = text
	}
}

// Present returns the names of non-empty sections, in report order.
func (m SectionMap) Present() []string {
	var out []string
	for _, name := range SectionNames {
		if m.Get(name) != "" {
			out = append(out, name)
		}
	}
	return out
}

// Degradation records a scorer that returned zero because it could not compute a value
type Degradation struct {
	Component string `json:"component"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// Scores is the output of the score composer
type Scores struct {
	Semantic     ScoreValue    `json:"semantic"`
	Keyword      ScoreValue    `json:"keyword"`
	Final        ScoreValue    `json:"final"`
	Degradations []Degradation `json:"degradations,omitempty"`
}

// Dimensions are the four signals combined into recruiter readiness
type Dimensions struct {
	Semantic ScoreValue `json:"semantic"`
	Keyword  ScoreValue `json:"keyword"`
	Skill    ScoreValue `json:"skill"`
	Quality  ScoreValue `json:"quality"`
}

// SkillGapReport lists the skill overlap between résumé and job description
type SkillGapReport struct {
	SkillScore    ScoreValue `json:"skillScore"`
	ResumeSkills  []string   `json:"resumeSkills"`
	JobSkills     []string   `json:"jobSkills"`
	MatchedSkills []string   `json:"matchedSkills"`
	MissingSkills []string   `json:"missingSkills"`
	Guidance      string     `json:"guidance"`
}

// ReadinessResult is the weighted readiness score with the inputs that produced it
type ReadinessResult struct {
	Readiness      ScoreValue   `json:"readiness"`
	Dimensions     Dimensions   `json:"dimensions"`
	Weights        WeightVector `json:"weights"`
	Classification string       `json:"classification"`
	Percentile     float64      `json:"percentile"`
}

// Diagnostics summarizes structural completeness of a résumé
type Diagnostics struct {
	SectionCoverage ScoreValue `json:"sectionCoverage"`
	Observations    []string   `json:"observations"`
}

// Insights is the human-facing interpretation of the scores
type Insights struct {
	HiringClassification    string      `json:"hiringClassification"`
	ReadinessClassification string      `json:"readinessClassification"`
	MarketPercentile        float64     `json:"marketPercentile"`
	Risks                   []string    `json:"risks"`
	Recommendations         []string    `json:"recommendations"`
	SkillGuidance           string      `json:"skillGuidance"`
	HiringRecommendation    string      `json:"hiringRecommendation"`
	Diagnostics             Diagnostics `json:"diagnostics"`
}

// AnalysisReport is the full output of one résumé/job description analysis
type AnalysisReport struct {
	ID            string        `json:"id"`
	Scores        Scores        `json:"scores"`
	SkillScore    ScoreValue    `json:"skillScore"`
	QualityScore  ScoreValue    `json:"qualityScore"`
	Readiness     ScoreValue    `json:"readiness"`
	Weights       WeightVector  `json:"weights"`
	ResumeSkills  []string      `json:"resumeSkills"`
	JobSkills     []string      `json:"jobSkills"`
	MatchedSkills []string      `json:"matchedSkills"`
	MissingSkills []string      `json:"missingSkills"`
	Sections      SectionMap    `json:"sections"`
	Quality       QualityReport `json:"quality"`
	Insights      Insights      `json:"insights"`
}

// Dimensions returns the readiness inputs carried by the report.
func (r AnalysisReport) Dimensions() Dimensions {
	return Dimensions{
		Semantic: r.Scores.Semantic,
		Keyword:  r.Scores.Keyword,
		Skill:    r.SkillScore,
		Quality:  r.QualityScore,
	}
}
