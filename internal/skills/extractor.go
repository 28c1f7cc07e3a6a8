package skills

import (
	"atscore/internal/types"
)

// Extractor finds vocabulary skills in normalized text
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor binds an extractor to a vocabulary.
func NewExtractor(vocab *Vocabulary) *Extractor {
	return &Extractor{vocab: vocab}
}

// Vocabulary returns the vocabulary the extractor matches against.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocab
}

// Extract returns every vocabulary term that occurs as a whole word in text.
func (e *Extractor) Extract(normalized string) types.SkillSet {
	found := make(types.SkillSet)
	if normalized == "" {
		return found
	}
	for i, re := range e.vocab.patterns {
		if re.MatchString(normalized) {
			found[e.vocab.terms[i]] = struct{}{}
		}
	}
	return found
}

// MatchScore is the percentage of job description skills the résumé covers.
// An empty job description skill set scores 0.
func MatchScore(resume, jd types.SkillSet) types.ScoreValue {
	if jd.Len() == 0 {
		return 0
	}
	matched := resume.Intersect(jd).Len()
	return types.ScoreValue(float64(matched) / float64(jd.Len()) * 100).Clamp()
}

// Gap returns the sorted matched and missing job description skills.
func Gap(resume, jd types.SkillSet) (matched, missing []string) {
	return resume.Intersect(jd).Sorted(), jd.Difference(resume).Sorted()
}

// GapReport assembles the skill overlap between résumé and job description.
func GapReport(resume, jd types.SkillSet) types.SkillGapReport {
	matched, missing := Gap(resume, jd)
	return types.SkillGapReport{
		SkillScore:    MatchScore(resume, jd),
		ResumeSkills:  resume.Sorted(),
		JobSkills:     jd.Sorted(),
		MatchedSkills: matched,
		MissingSkills: missing,
	}
}
