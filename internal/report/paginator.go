// Package report builds the multi-page route report: stats, waypoint and
// steepness tables, and a closing map page, rendered to PNG pages.
package report

import (
	"fmt"
	"math"
)

// Page geometry. Content is laid out at a fixed width and a 2x raster
// scale; the page height follows the A4 aspect ratio with a 10 mm margin on
// each edge.
const (
	ContentWidth = 800
	CanvasScale  = 2

	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	marginMM     = 10.0
)

// PageCanvasHeight is the full page height in canvas pixels.
func PageCanvasHeight() float64 {
	return float64(ContentWidth*CanvasScale) * (pageHeightMM / pageWidthMM)
}

// UsableCanvasHeight is the page height minus the top and bottom margins,
// in canvas pixels.
func UsableCanvasHeight() float64 {
	pxPerMM := PageCanvasHeight() / pageHeightMM
	return PageCanvasHeight() - 2*marginMM*pxPerMM
}

// Measurer reports rendered pixel heights for a table type. Heights come
// from actually rasterizing the fragments, so pagination tracks real
// rendered size instead of a layout model.
type Measurer interface {
	// MeasureHeader is the height of the table header alone.
	MeasureHeader() (float64, error)
	// MeasureHeaderWithRow is the height of the header plus one
	// representative row.
	MeasureHeaderWithRow() (float64, error)
}

// Chunk is one page worth of rows.
type Chunk struct {
	Start, End int // half-open row index range
	First      bool
	Last       bool
}

// PagePlan is the derived pagination of one table for one export.
type PagePlan struct {
	RowsPerPage int
	Chunks      []Chunk
}

// RowsPerPage computes how many rows fit under a header on one page,
// clamped to one so a pathological row height still makes progress.
func RowsPerPage(usableHeight, headerHeight, rowHeight float64) int {
	if rowHeight <= 0 {
		return 1
	}
	n := int(math.Floor((usableHeight - headerHeight) / rowHeight))
	if n < 1 {
		return 1
	}
	return n
}

// Plan measures the table once and partitions rowCount rows into pages.
func Plan(rowCount int, m Measurer, usableHeight float64) (PagePlan, error) {
	headerH, err := m.MeasureHeader()
	if err != nil {
		return PagePlan{}, fmt.Errorf("measure header: %w", err)
	}
	combinedH, err := m.MeasureHeaderWithRow()
	if err != nil {
		return PagePlan{}, fmt.Errorf("measure header with row: %w", err)
	}

	perPage := RowsPerPage(usableHeight, headerH, combinedH-headerH)
	return PagePlan{RowsPerPage: perPage, Chunks: chunkRows(rowCount, perPage)}, nil
}

func chunkRows(rowCount, perPage int) []Chunk {
	if rowCount <= 0 {
		return []Chunk{{Start: 0, End: 0, First: true, Last: true}}
	}

	var chunks []Chunk
	for start := 0; start < rowCount; start += perPage {
		end := start + perPage
		if end > rowCount {
			end = rowCount
		}
		chunks = append(chunks, Chunk{Start: start, End: end, First: start == 0})
	}
	chunks[len(chunks)-1].Last = true
	return chunks
}
