// Package insights turns scores into recruiter-facing classifications,
// risks and recommendations.
package insights

import (
	"math"

	"atscore/internal/sections"
	"atscore/internal/types"
)

// Hiring classification bands, applied to the final score
const (
	hireHighConfidence = 85
	hireStrong         = 70
	hireModerate       = 55
)

// Readiness classification bands
const (
	readyElite    = 85
	readyStrong   = 70
	readyModerate = 50
)

const (
	riskThreshold        = 60
	qualityRiskThreshold = 50

	recommendThreshold        = 75
	qualityRecommendThreshold = 60

	coverageObservationThreshold = 75
	qualityObservationThreshold  = 60
	keywordObservationThreshold  = 60

	percentileFactor = 0.9
)

// HiringClassification labels the final score.
func HiringClassification(final types.ScoreValue) string {
	switch {
	case final >= hireHighConfidence:
		return "High Confidence Hire"
	case final >= hireStrong:
		return "Strong Potential Candidate"
	case final >= hireModerate:
		return "Moderate Fit – Needs Optimization"
	default:
		return "High Rejection Risk"
	}
}

// ReadinessClassification labels recruiter readiness.
func ReadinessClassification(readiness types.ScoreValue) string {
	switch {
	case readiness >= readyElite:
		return "Elite – Interview Ready"
	case readiness >= readyStrong:
		return "Strong Potential"
	case readiness >= readyModerate:
		return "Moderate – Needs Optimization"
	default:
		return "High Risk – Resume Requires Major Enhancement"
	}
}

// MarketPercentile estimates where the candidate sits among applicants.
func MarketPercentile(readiness types.ScoreValue) float64 {
	return math.Round(float64(readiness)*percentileFactor*100) / 100
}

// Risks lists the weak dimensions.
func Risks(d types.Dimensions) []string {
	var risks []string
	if d.Semantic < riskThreshold {
		risks = append(risks, "Low contextual alignment with job description.")
	}
	if d.Keyword < riskThreshold {
		risks = append(risks, "Insufficient keyword optimization for ATS filters.")
	}
	if d.Skill < riskThreshold {
		risks = append(risks, "Skill coverage does not sufficiently match job requirements.")
	}
	if d.Quality < qualityRiskThreshold {
		risks = append(risks, "Resume lacks quantified achievements or optimal structure.")
	}
	if len(risks) == 0 {
		risks = append(risks, "No major structural or alignment risks detected.")
	}
	return risks
}

// Recommendations suggests concrete edits for dimensions below target.
func Recommendations(d types.Dimensions) []string {
	var recs []string
	if d.Keyword < recommendThreshold {
		recs = append(recs, "Integrate more role-specific keywords naturally within experience section.")
	}
	if d.Semantic < recommendThreshold {
		recs = append(recs, "Rephrase responsibilities to better mirror job description context.")
	}
	if d.Skill < recommendThreshold {
		recs = append(recs, "Add missing required skills explicitly in skills section.")
	}
	if d.Quality < qualityRecommendThreshold {
		recs = append(recs, "Include measurable achievements (%, numbers, impact metrics).")
	}
	if len(recs) == 0 {
		recs = append(recs, "Resume is strategically aligned. Minor refinements may enhance competitiveness.")
	}
	return recs
}

// SkillGuidance describes the skill score in one sentence.
func SkillGuidance(skill types.ScoreValue) string {
	switch {
	case skill < 60:
		return "Significant skill gap detected. Add required competencies explicitly."
	case skill < 80:
		return "Moderate alignment. Minor skill additions could improve competitiveness."
	default:
		return "Strong skill alignment. Resume demonstrates relevant capability coverage."
	}
}

// Diagnose reports section coverage and structural observations.
func Diagnose(m types.SectionMap, quality, keyword types.ScoreValue) types.Diagnostics {
	coverage := sections.Coverage(m)

	var obs []string
	if coverage < coverageObservationThreshold {
		obs = append(obs, "Resume is missing important structural sections.")
	}
	if quality < qualityObservationThreshold {
		obs = append(obs, "Resume lacks strong quantification and measurable impact.")
	}
	if keyword < keywordObservationThreshold {
		obs = append(obs, "Keyword optimization for ATS systems is below recommended level.")
	}
	if len(obs) == 0 {
		obs = append(obs, "Resume structure and formatting meet professional standards.")
	}
	return types.Diagnostics{SectionCoverage: coverage, Observations: obs}
}

// HiringRecommendation is the closing paragraph of a report.
func HiringRecommendation(readiness types.ScoreValue) string {
	switch {
	case readiness >= 80:
		return "The candidate demonstrates strong semantic alignment, high keyword integration, " +
			"and structured resume quality. The profile is ATS-optimized and competitively " +
			"positioned within the upper percentile of applicants. Recommendation: Proceed to " +
			"advanced technical evaluation and managerial discussion."
	case readiness >= 60:
		return "The candidate shows moderate ATS compatibility. While core skills are present, " +
			"improvements in keyword density and semantic targeting would enhance recruiter " +
			"visibility. Recommendation: Consider screening round with improvement advisory."
	default:
		return "The resume presents structural or keyword alignment gaps that may reduce ATS " +
			"ranking probability. Strategic optimization is recommended before advancing to " +
			"the interview pipeline."
	}
}

// Build assembles the full insight block for one analysis.
func Build(final, readiness types.ScoreValue, d types.Dimensions, m types.SectionMap) types.Insights {
	return types.Insights{
		HiringClassification:    HiringClassification(final),
		ReadinessClassification: ReadinessClassification(readiness),
		MarketPercentile:        MarketPercentile(readiness),
		Risks:                   Risks(d),
		Recommendations:         Recommendations(d),
		SkillGuidance:           SkillGuidance(d.Skill),
		HiringRecommendation:    HiringRecommendation(readiness),
		Diagnostics:             Diagnose(m, d.Quality, d.Keyword),
	}
}
