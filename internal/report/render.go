package report

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Layout metrics in canvas pixels. Text is drawn with the fixed 7x13 face,
// so heights are stable across machines and exports.
const (
	titleAdvance  = 30.0
	headerAdvance = 26.0
	rowAdvance    = 22.0
	textOffset    = 14.0 // baseline offset inside a block
)

func marginPx() float64 {
	return marginMM * (PageCanvasHeight() / pageHeightMM)
}

func pageContext(landscape bool) *gg.Context {
	w := ContentWidth * CanvasScale
	h := int(math.Round(PageCanvasHeight()))
	if landscape {
		w, h = h, w
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(0, 0, 0)
	return dc
}

// Row is one table row. Highlighted rows are drawn in red.
type Row struct {
	Cells     []string
	Highlight bool
}

// tableRenderer draws one table type and doubles as its own Measurer: the
// measurement pass renders the same fragments it will emit on real pages.
type tableRenderer struct {
	title   string
	columns []string
	// widths are column width fractions of the content width; they must
	// sum to 1 and match len(columns).
	widths  []float64
	rows    []Row
	summary string
}

func (t *tableRenderer) contentWidth() float64 {
	return float64(ContentWidth*CanvasScale) - 2*marginPx()
}

func (t *tableRenderer) columnX(i int) float64 {
	x := marginPx()
	for j := 0; j < i; j++ {
		x += t.widths[j] * t.contentWidth()
	}
	return x
}

// drawHeader renders the title line, the column labels and a rule, and
// returns the new cursor.
func (t *tableRenderer) drawHeader(dc *gg.Context, y float64, continued bool) float64 {
	title := t.title
	if continued {
		title += " (continued)"
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawString(title, marginPx(), y+textOffset)
	y += titleAdvance

	for i, col := range t.columns {
		dc.DrawString(col, t.columnX(i), y+textOffset)
	}
	y += headerAdvance

	dc.SetLineWidth(1)
	dc.DrawLine(marginPx(), y-4, marginPx()+t.contentWidth(), y-4)
	dc.Stroke()
	return y
}

func (t *tableRenderer) drawRow(dc *gg.Context, y float64, row Row) float64 {
	if row.Highlight {
		dc.SetRGB(0.8, 0.1, 0.1)
	} else {
		dc.SetRGB(0, 0, 0)
	}
	for i, cell := range row.Cells {
		dc.DrawString(cell, t.columnX(i), y+textOffset)
	}
	dc.SetRGB(0, 0, 0)
	return y + rowAdvance
}

func (t *tableRenderer) drawSummary(dc *gg.Context, y float64) float64 {
	dc.SetLineWidth(1)
	dc.DrawLine(marginPx(), y, marginPx()+t.contentWidth(), y)
	dc.Stroke()
	dc.DrawString(t.summary, marginPx(), y+textOffset+4)
	return y + headerAdvance
}

// renderFragment draws a header plus the given rows into a scratch context
// and reports the consumed height. Measurement and page rendering share the
// same drawing code, so measured heights match emitted pages exactly.
func (t *tableRenderer) renderFragment(rows []Row) float64 {
	dc := pageContext(false)
	y := t.drawHeader(dc, 0, false)
	for _, row := range rows {
		y = t.drawRow(dc, y, row)
	}
	return y
}

func (t *tableRenderer) MeasureHeader() (float64, error) {
	return t.renderFragment(nil), nil
}

func (t *tableRenderer) MeasureHeaderWithRow() (float64, error) {
	sample := Row{Cells: make([]string, len(t.columns))}
	if len(t.rows) > 0 {
		sample = t.rows[0]
	}
	return t.renderFragment([]Row{sample}), nil
}

// renderPages paginates the table by measurement and renders one page per
// chunk. The summary line, when present, lands only on the last page.
func (t *tableRenderer) renderPages() ([]*gg.Context, error) {
	plan, err := Plan(len(t.rows), t, UsableCanvasHeight())
	if err != nil {
		return nil, fmt.Errorf("paginate %q: %w", t.title, err)
	}

	pages := make([]*gg.Context, 0, len(plan.Chunks))
	for _, chunk := range plan.Chunks {
		dc := pageContext(false)
		y := t.drawHeader(dc, marginPx(), !chunk.First)
		for _, row := range t.rows[chunk.Start:chunk.End] {
			y = t.drawRow(dc, y, row)
		}
		if chunk.Last && t.summary != "" {
			t.drawSummary(dc, y)
		}
		pages = append(pages, dc)
	}
	return pages, nil
}

// renderStatsPage draws the headline page: route name and the three route
// statistics.
func renderStatsPage(routeName string, lines []string) *gg.Context {
	dc := pageContext(false)

	y := marginPx()
	dc.DrawString(routeName, marginPx(), y+textOffset)
	y += titleAdvance * 2

	for _, line := range lines {
		dc.DrawString(line, marginPx(), y+textOffset)
		y += rowAdvance
	}
	return dc
}

// renderMapPage draws the map snapshot on a landscape page, scaled to fit
// and centered while preserving its aspect ratio.
func renderMapPage(snapshot image.Image) *gg.Context {
	dc := pageContext(true)

	bounds := snapshot.Bounds()
	imgW := float64(bounds.Dx())
	imgH := float64(bounds.Dy())
	if imgW <= 0 || imgH <= 0 {
		return dc
	}

	availW := float64(dc.Width()) - 2*marginPx()
	availH := float64(dc.Height()) - 2*marginPx()
	scale := math.Min(availW/imgW, availH/imgH)

	drawW := imgW * scale
	drawH := imgH * scale
	x := (float64(dc.Width()) - drawW) / 2
	y := (float64(dc.Height()) - drawH) / 2

	dc.Push()
	dc.Translate(x, y)
	dc.Scale(scale, scale)
	dc.DrawImage(snapshot, 0, 0)
	dc.Pop()
	return dc
}
