package formatters

import (
	"fmt"
	"strings"

	"atscore/internal/types"
)

type style string

const (
	styleText     style = "text"
	styleMarkdown style = "markdown"
)

// writer emits the same document structure as plain text or markdown.
type writer struct {
	style style
	b     strings.Builder
}

func newWriter(s style) *writer {
	return &writer{style: s}
}

func (w *writer) title(s string) {
	if w.style == styleMarkdown {
		fmt.Fprintf(&w.b, "# %s\n\n", s)
		return
	}
	fmt.Fprintf(&w.b, "=== %s ===\n", strings.ToUpper(s))
}

func (w *writer) heading(s string) {
	if w.style == styleMarkdown {
		fmt.Fprintf(&w.b, "## %s\n\n", s)
		return
	}
	fmt.Fprintf(&w.b, "%s:\n", s)
}

func (w *writer) field(label, value string) {
	if w.style == styleMarkdown {
		fmt.Fprintf(&w.b, "- **%s:** %s\n", label, value)
		return
	}
	fmt.Fprintf(&w.b, "%s: %s\n", label, value)
}

func (w *writer) list(items []string) {
	for _, item := range items {
		if w.style == styleMarkdown {
			fmt.Fprintf(&w.b, "- %s\n", item)
		} else {
			fmt.Fprintf(&w.b, "  - %s\n", item)
		}
	}
	w.blank()
}

func (w *writer) paragraph(s string) {
	w.b.WriteString(s)
	w.b.WriteString("\n\n")
}

func (w *writer) blank() {
	w.b.WriteString("\n")
}

func (w *writer) String() string {
	return strings.TrimRight(w.b.String(), "\n") + "\n"
}

func score(v types.ScoreValue) string {
	return fmt.Sprintf("%.2f/100", v.Round())
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
