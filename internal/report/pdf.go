// Package report renders an analysis as a printable PDF.
package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"atscore/internal/errors"
	"atscore/internal/types"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 16.0
	lineHeight = 6.0
	radarSize  = 38.0
)

type rgb struct{ r, g, b int }

var (
	navy  = rgb{15, 23, 42}
	blue  = rgb{37, 99, 235}
	grey  = rgb{107, 114, 128}
	light = rgb{243, 244, 246}
)

// Generator renders AnalysisReports to PDF.
type Generator struct {
	Title string
	now   func() time.Time
}

// NewGenerator returns a generator with the default title.
func NewGenerator() *Generator {
	return &Generator{Title: "ATS Intelligence Report", now: time.Now}
}

// Bytes renders r into memory.
func (g *Generator) Bytes(r types.AnalysisReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Render(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes r as PDF to w.
func (g *Generator) Render(w io.Writer, r types.AnalysisReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pageMargin, 28, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")
	pdf.SetTitle(g.Title, true)

	now := g.now
	if now == nil {
		now = time.Now
	}
	generated := now().Format("January 2, 2006")

	pageW, pageH := pdf.GetPageSize()
	pdf.SetHeaderFunc(func() {
		pdf.SetDrawColor(navy.r, navy.g, navy.b)
		pdf.SetLineWidth(0.4)
		pdf.Rect(7, 7, pageW-14, pageH-14, "D")
		pdf.SetFillColor(navy.r, navy.g, navy.b)
		pdf.Rect(7, 10, pageW-50, 12, "F")
		pdf.SetFillColor(blue.r, blue.g, blue.b)
		pdf.Polygon([]fpdf.PointType{
			{X: pageW - 43, Y: 10}, {X: pageW - 30, Y: 16}, {X: pageW - 43, Y: 22},
		}, "F")
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(12, 18, tr(g.Title))
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(grey.r, grey.g, grey.b)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Analysis %s | Generated %s", r.ID, generated)), "", 0, "L", false, 0, "")
		pdf.SetX(pageMargin)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	d := r.Dimensions()

	heading(pdf, tr, "Executive Summary")
	highlight(pdf, tr, fmt.Sprintf("Recruiter Simulation Index: %.2f%%", r.Readiness.Round()))
	highlight(pdf, tr, fmt.Sprintf("Final ATS Score: %.2f%% (%s)", r.Scores.Final.Round(), r.Insights.HiringClassification))

	heading(pdf, tr, "Detailed Score Breakdown")
	scoreTable(pdf, tr, [][2]string{
		{"Semantic Alignment", percent(d.Semantic)},
		{"Keyword Optimization", percent(d.Keyword)},
		{"Skill Coverage", percent(d.Skill)},
		{"Structural Quality", percent(d.Quality)},
		{"Overall Readiness", percent(r.Readiness)},
	})

	heading(pdf, tr, "Candidate Classification")
	highlight(pdf, tr, "Classification Result: "+r.Insights.ReadinessClassification)

	heading(pdf, tr, "Market Benchmark Positioning")
	highlight(pdf, tr, fmt.Sprintf("This candidate ranks in the %.2fth percentile against current ATS market benchmarks.",
		r.Insights.MarketPercentile))

	heading(pdf, tr, "Performance Radar Analysis")
	radar(pdf, tr, d)

	pdf.AddPage()
	heading(pdf, tr, "Skill Intelligence Analysis")
	skillList(pdf, tr, "Matched Skills", r.MatchedSkills)
	skillList(pdf, tr, "Missing Skills", r.MissingSkills)
	if r.Insights.SkillGuidance != "" {
		paragraph(pdf, tr, r.Insights.SkillGuidance)
	}

	heading(pdf, tr, "Risk Assessment")
	bullets(pdf, tr, r.Insights.Risks)

	heading(pdf, tr, "Optimization Recommendations")
	bullets(pdf, tr, r.Insights.Recommendations)

	heading(pdf, tr, "Structural Diagnostics")
	paragraph(pdf, tr, fmt.Sprintf("Section coverage: %.2f%%", r.Insights.Diagnostics.SectionCoverage.Round()))
	bullets(pdf, tr, r.Insights.Diagnostics.Observations)

	if len(r.Scores.Degradations) > 0 {
		heading(pdf, tr, "Degraded Scores")
		lines := make([]string, 0, len(r.Scores.Degradations))
		for _, deg := range r.Scores.Degradations {
			lines = append(lines, fmt.Sprintf("%s scorer returned 0 (%s)", deg.Component, deg.Code))
		}
		bullets(pdf, tr, lines)
	}

	heading(pdf, tr, "Final Hiring Recommendation")
	highlight(pdf, tr, fmt.Sprintf("Overall Readiness Score: %.2f%%", r.Readiness.Round()))
	paragraph(pdf, tr, r.Insights.HiringRecommendation)

	if err := pdf.Output(w); err != nil {
		return errors.NewInternalError(errors.ErrCodeReportFailed, "Failed to render PDF report", err)
	}
	return nil
}

func heading(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(navy.r, navy.g, navy.b)
	pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func highlight(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(light.r, light.g, light.b)
	pdf.MultiCell(0, lineHeight+1, tr(text), "", "L", true)
	pdf.Ln(1)
}

func paragraph(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, lineHeight, tr(text), "", "L", false)
	pdf.Ln(1)
}

func bullets(pdf *fpdf.Fpdf, tr func(string) string, items []string) {
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.CellFormat(6, lineHeight, tr("•"), "", 0, "C", false, 0, "")
		pdf.MultiCell(0, lineHeight, tr(item), "", "L", false)
	}
}

func skillList(pdf *fpdf.Fpdf, tr func(string) string, label string, skills []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, lineHeight, tr(label+":"), "", 1, "L", false, 0, "")
	if len(skills) == 0 {
		paragraph(pdf, tr, "None")
		return
	}
	bullets(pdf, tr, skills)
	pdf.Ln(2)
}

func scoreTable(pdf *fpdf.Fpdf, tr func(string) string, rows [][2]string) {
	const labelW, valueW = 90.0, 50.0
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(navy.r, navy.g, navy.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(labelW, 7, "Metric", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueW, 7, "Score (%)", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(labelW, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 7, row[1], "1", 1, "C", false, 0, "")
	}
}

// radar draws the four dimensions on a square polar chart scaled to 0..100.
func radar(pdf *fpdf.Fpdf, tr func(string) string, d types.Dimensions) {
	labels := []string{"Semantic", "Keyword", "Skill", "Quality"}
	values := []types.ScoreValue{d.Semantic, d.Keyword, d.Skill, d.Quality}

	pageW, pageH := pdf.GetPageSize()
	if pdf.GetY()+2*radarSize+30 > pageH {
		pdf.AddPage()
	}
	cx := pageW / 2
	cy := pdf.GetY() + radarSize + 6
	point := func(i int, frac float64) fpdf.PointType {
		angle := -math.Pi/2 + float64(i)*2*math.Pi/float64(len(labels))
		return fpdf.PointType{X: cx + radarSize*frac*math.Cos(angle), Y: cy + radarSize*frac*math.Sin(angle)}
	}

	pdf.SetDrawColor(grey.r, grey.g, grey.b)
	pdf.SetLineWidth(0.2)
	for _, ring := range []float64{0.25, 0.5, 0.75, 1} {
		grid := make([]fpdf.PointType, len(labels))
		for i := range labels {
			grid[i] = point(i, ring)
		}
		pdf.Polygon(grid, "D")
	}

	shape := make([]fpdf.PointType, len(labels))
	for i, v := range values {
		shape[i] = point(i, float64(v.Clamp())/100)
	}
	pdf.SetAlpha(0.35, "Normal")
	pdf.SetFillColor(blue.r, blue.g, blue.b)
	pdf.Polygon(shape, "F")
	pdf.SetAlpha(1, "Normal")
	pdf.SetDrawColor(blue.r, blue.g, blue.b)
	pdf.SetLineWidth(0.6)
	pdf.Polygon(shape, "D")

	pdf.SetFont("Helvetica", "", 9)
	for i, label := range labels {
		p := point(i, 1.18)
		text := tr(fmt.Sprintf("%s %.0f", label, values[i].Round()))
		pdf.Text(p.X-pdf.GetStringWidth(text)/2, p.Y+1.5, text)
	}
	pdf.SetY(cy + radarSize + 10)
}

func percent(v types.ScoreValue) string {
	return fmt.Sprintf("%.2f%%", v.Round())
}
