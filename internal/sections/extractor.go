// Package sections performs best-effort segmentation of a résumé into its
// skills, experience, education and projects sections.
package sections

import (
	"regexp"
	"strings"
	"unicode"

	"atscore/internal/types"
)

// synonyms lists the heading alternatives recognised for each section.
var synonyms = map[string]string{
	types.SectionSkills:     `skills|technical skills|core competencies`,
	types.SectionExperience: `experience|work experience|professional experience|employment`,
	types.SectionEducation:  `education|academic background|qualification`,
	types.SectionProjects:   `projects|academic projects|research|personal projects`,
}

const (
	maxHeaderLength = 40
	maxHeaderWords  = 4
)

type sectionPattern struct {
	name     string
	anywhere *regexp.Regexp
	heading  *regexp.Regexp
}

// Extractor locates section headings and captures the text beneath them
type Extractor struct {
	patterns []sectionPattern
}

// NewExtractor compiles the heading patterns.
func NewExtractor() *Extractor {
	e := &Extractor{}
	for _, name := range types.SectionNames {
		alt := synonyms[name]
		e.patterns = append(e.patterns, sectionPattern{
			name:     name,
			anywhere: regexp.MustCompile(`(?i)(` + alt + `)`),
			heading:  regexp.MustCompile(`(?i)^(` + alt + `)$`),
		})
	}
	return e
}

type line struct {
	start, end int
	text       string
}

// Extract returns the captured text of each section. A section whose heading
// is not found maps to "".
//
// A heading on a line of its own wins over a mention inside prose. Capture
// runs from the heading to the next header-like line, or the end of text.
func (e *Extractor) Extract(text string) types.SectionMap {
	var out types.SectionMap
	if strings.TrimSpace(text) == "" {
		return out
	}

	lines := splitLines(text)
	for _, p := range e.patterns {
		start, after, ok := e.locate(p, text, lines)
		if !ok {
			continue
		}
		end := len(text)
		for _, l := range lines {
			if l.start >= after && e.isHeader(l.text) {
				end = l.start
				break
			}
		}
		out.Set(p.name, strings.TrimSpace(text[start:end]))
	}
	return out
}

// locate finds where a section starts and the offset from which the next
// header is searched.
func (e *Extractor) locate(p sectionPattern, text string, lines []line) (start, after int, ok bool) {
	for _, l := range lines {
		if p.heading.MatchString(headingText(l.text)) {
			return l.start, l.end, true
		}
	}
	loc := p.anywhere.FindStringIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	after = len(text)
	for _, l := range lines {
		if loc[1] <= l.end {
			after = l.end
			break
		}
	}
	return loc[0], after, true
}

// isHeader reports whether a line looks like the start of a new section:
// a known heading, a short all-caps line, or a short line ending in a colon.
func (e *Extractor) isHeader(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > maxHeaderLength || len(strings.Fields(trimmed)) > maxHeaderWords {
		return false
	}
	candidate := headingText(trimmed)
	for _, p := range e.patterns {
		if p.heading.MatchString(candidate) {
			return true
		}
	}
	return strings.HasSuffix(trimmed, ":") || isUpper(trimmed)
}

// headingText strips surrounding whitespace and decoration such as
// a trailing colon or leading bullets from a candidate heading line.
func headingText(raw string) string {
	return strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == ':' || r == '#' || r == '*' || r == '-' || r == '='
	})
}

func isUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}

func splitLines(text string) []line {
	var lines []line
	start := 0
	for start <= len(text) {
		idx := strings.IndexByte(text[start:], '\n')
		if idx < 0 {
			lines = append(lines, line{start: start, end: len(text), text: text[start:]})
			break
		}
		end := start + idx
		lines = append(lines, line{start: start, end: end, text: text[start:end]})
		start = end + 1
	}
	return lines
}

// Coverage is the percentage of recognised sections that were detected.
func Coverage(m types.SectionMap) types.ScoreValue {
	return types.ScoreValue(float64(len(m.Present())) / float64(len(types.SectionNames)) * 100).Clamp()
}
