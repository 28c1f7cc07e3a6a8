// Package quality scores résumé structure from simple counts: length,
// quantification and percentage usage.
package quality

import (
	"strings"
	"unicode"

	"atscore/internal/types"
)

// Score bands. These are fixed, not configurable.
const (
	idealMinWords      = 400
	idealMaxWords      = 900
	acceptableMinWords = 300
	acceptableMaxWords = 1100

	idealLengthBonus      = 40
	acceptableLengthBonus = 20

	strongNumbersThreshold = 10
	someNumbersThreshold   = 5
	strongNumbersBonus     = 30
	someNumbersBonus       = 15

	percentageBonus = 30
)

// Analyze counts words, digits and percent signs and derives the quality score.
func Analyze(text string) types.QualityReport {
	if text == "" {
		return types.QualityReport{}
	}

	report := types.QualityReport{
		WordCount:          len(strings.Fields(text)),
		NumbersCount:       countDigits(text),
		PercentageMentions: strings.Count(text, "%"),
	}

	score := 0
	switch {
	case report.WordCount >= idealMinWords && report.WordCount <= idealMaxWords:
		score += idealLengthBonus
	case report.WordCount >= acceptableMinWords && report.WordCount < idealMinWords,
		report.WordCount > idealMaxWords && report.WordCount <= acceptableMaxWords:
		score += acceptableLengthBonus
	}

	switch {
	case report.NumbersCount > strongNumbersThreshold:
		score += strongNumbersBonus
	case report.NumbersCount > someNumbersThreshold:
		score += someNumbersBonus
	}

	if report.PercentageMentions > 0 {
		score += percentageBonus
	}

	report.QualityScore = types.ScoreValue(score).Clamp()
	return report
}

func countDigits(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
