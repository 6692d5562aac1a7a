package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/go-pdf/fpdf"
)

// AssemblePDF packs rendered page images into one PDF document. Each PDF
// page takes the pixel dimensions of its image divided by CanvasScale, so
// portrait table pages and the landscape map page keep their own formats.
func AssemblePDF(pages [][]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, errors.New("assemble pdf: no pages")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt"})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, page := range pages {
		cfg, err := png.DecodeConfig(bytes.NewReader(page))
		if err != nil {
			return nil, fmt.Errorf("assemble pdf: decode page %d: %w", i+1, err)
		}
		w := float64(cfg.Width) / CanvasScale
		h := float64(cfg.Height) / CanvasScale

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		name := fmt.Sprintf("page-%02d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	}
	if pdf.Err() {
		return nil, fmt.Errorf("assemble pdf: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}
	return buf.Bytes(), nil
}
