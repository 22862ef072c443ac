// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chart renders PNG charts of scored studies: a per-study summary
// bar chart coloured by quality tier, a domain heatmap, and the study-type
// distribution.
package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/pdiddy/nos-assess/internal/logger"
	"github.com/pdiddy/nos-assess/internal/report"
	"github.com/pdiddy/nos-assess/pkg/types"
)

// ErrNoStudies is returned when there is nothing to chart.
var ErrNoStudies = errors.New("no studies to chart")

const (
	minWidth   = 600
	fontSize   = 13
	margin     = 20.0
	titleH     = 50.0
	rowH       = 28.0
	barPad     = 5.0
	labelW     = 240.0
	ratingW    = 220.0
	headerH    = 40.0
	typeChartH = 420
)

// Renderer draws charts at a fixed width with one font face.
type Renderer struct {
	width int
	face  font.Face
	log   *logger.Logger
}

// New returns a renderer. A non-empty cfg.FontPath loads a TrueType face;
// otherwise the built-in bitmap face is used.
func New(cfg types.ReportConfig, log *logger.Logger) (*Renderer, error) {
	if log == nil {
		log = logger.Nop()
	}
	width := cfg.ChartWidth
	if width < minWidth {
		width = minWidth
	}

	var face font.Face = basicfont.Face7x13
	if cfg.FontPath != "" {
		log.Debug("loading chart font", "font", cfg.FontPath)
		f, err := loadFontFace(cfg.FontPath, fontSize)
		if err != nil {
			return nil, fmt.Errorf("could not load chart font: %w", err)
		}
		face = f
	}
	return &Renderer{width: width, face: face, log: log}, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

func (r *Renderer) newContext(height int, title string) *gg.Context {
	dc := gg.NewContext(r.width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(r.face)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, float64(r.width)/2, titleH/2, 0.5, 0.5)
	return dc
}

// barGeometry returns the rectangle of the i-th summary bar for a study with
// the given stars out of max.
func (r *Renderer) barGeometry(i, stars, maxStars int) (x, y, w, h float64) {
	plotW := float64(r.width) - labelW - ratingW - 2*margin
	x = margin + labelW
	y = titleH + float64(i)*rowH + barPad
	h = rowH - 2*barPad
	if maxStars > 0 {
		w = plotW * float64(stars) / float64(maxStars)
	}
	return x, y, w, h
}

// Summary draws one horizontal bar per study, its length the fraction of
// the maximum stars and its colour the quality tier.
func (r *Renderer) Summary(scored []report.StudyScore) (image.Image, error) {
	if len(scored) == 0 {
		return nil, ErrNoStudies
	}
	height := int(titleH + float64(len(scored))*rowH + margin)
	dc := r.newContext(height, "NOS Quality Assessment Summary")

	for i, st := range scored {
		x, y, w, h := r.barGeometry(i, st.Result.TotalStars, st.Result.MaxStars)
		cy := y + h/2

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(clip(dc, st.Record.StudyName, labelW-10), margin, cy, 0, 0.35)

		// Track showing the full scale.
		_, _, fullW, _ := r.barGeometry(i, 1, 1)
		dc.SetHexColor("#e9ecef")
		dc.DrawRectangle(x, y, fullW, h)
		dc.Fill()

		if w > 0 {
			dc.SetHexColor(st.Result.Tier.Color())
			dc.DrawRectangle(x, y, w, h)
			dc.Fill()
		}

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(st.Result.Rating(), x+fullW+10, cy, 0, 0.35)
	}
	return dc.Image(), nil
}

// cellGeometry returns the rectangle of the heatmap cell at row i, column j.
func (r *Renderer) cellGeometry(i, j, cols int) (x, y, w, h float64) {
	w = (float64(r.width) - labelW - 2*margin) / float64(cols)
	x = margin + labelW + float64(j)*w
	y = titleH + headerH + float64(i)*rowH
	return x, y, w, rowH
}

// Heatmap draws a study-by-domain grid shaded by the fraction of the domain
// maximum earned. Domains a study type does not have are shown as N/A.
func (r *Renderer) Heatmap(scored []report.StudyScore, domains []string) (image.Image, error) {
	if len(scored) == 0 {
		return nil, ErrNoStudies
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("heatmap needs at least one domain")
	}
	height := int(titleH + headerH + float64(len(scored))*rowH + margin)
	dc := r.newContext(height, "Domain Performance Heatmap")

	for j, name := range domains {
		x, _, w, _ := r.cellGeometry(0, j, len(domains))
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(name, x+w/2, titleH+headerH/2, 0.5, 0.5)
	}

	for i, st := range scored {
		_, y, _, h := r.cellGeometry(i, 0, len(domains))
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(clip(dc, st.Record.StudyName, labelW-10), margin, y+h/2, 0, 0.35)

		for j, name := range domains {
			x, y, w, h := r.cellGeometry(i, j, len(domains))
			label := "N/A"
			fill := color.Color(color.RGBA{0xce, 0xd4, 0xda, 0xff})
			if ds, ok := st.Result.Domain(name); ok {
				fill = HeatColor(ds.Fraction())
				label = fmt.Sprintf("%d/%d", ds.Stars, ds.MaxStars)
			}
			dc.SetColor(fill)
			dc.DrawRectangle(x, y, w, h)
			dc.Fill()

			dc.SetColor(color.White)
			dc.SetLineWidth(1)
			dc.DrawRectangle(x, y, w, h)
			dc.Stroke()

			dc.SetColor(color.Black)
			dc.DrawStringAnchored(label, x+w/2, y+h/2, 0.5, 0.35)
		}
	}
	return dc.Image(), nil
}

// typePalette colours the study-type bars in registry order.
var typePalette = []string{"#2e86ab", "#a23b72", "#f18f01"}

// StudyTypes draws a vertical bar per study type present in the summary.
func (r *Renderer) StudyTypes(s report.Summary) (image.Image, error) {
	if s.TotalStudies == 0 {
		return nil, ErrNoStudies
	}
	dc := r.newContext(typeChartH, "Study Type Distribution")

	maxCount := 0
	for _, c := range s.StudyTypes {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}

	baseY := float64(typeChartH) - margin - headerH
	plotH := baseY - titleH - headerH
	slotW := (float64(r.width) - 2*margin) / float64(len(s.StudyTypes))
	barW := slotW * 0.6

	for i, c := range s.StudyTypes {
		h := plotH * float64(c.Count) / float64(maxCount)
		x := margin + float64(i)*slotW + (slotW-barW)/2

		dc.SetHexColor(typePalette[i%len(typePalette)])
		dc.DrawRectangle(x, baseY-h, barW, h)
		dc.Fill()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(fmt.Sprintf("%d (%.1f%%)", c.Count, c.Percentage), x+barW/2, baseY-h-12, 0.5, 0.5)
		dc.DrawStringAnchored(c.Label, x+barW/2, baseY+headerH/2, 0.5, 0.5)
	}

	dc.SetLineWidth(1)
	dc.DrawLine(margin, baseY, float64(r.width)-margin, baseY)
	dc.Stroke()
	return dc.Image(), nil
}

// HeatColor maps a fraction in [0,1] onto the red→yellow→green scale.
func HeatColor(f float64) color.RGBA {
	red := color.RGBA{0xdc, 0x35, 0x45, 0xff}
	yellow := color.RGBA{0xff, 0xc1, 0x07, 0xff}
	green := color.RGBA{0x28, 0xa7, 0x45, 0xff}
	switch {
	case f <= 0:
		return red
	case f >= 1:
		return green
	case f < 0.5:
		return lerp(red, yellow, f*2)
	}
	return lerp(yellow, green, (f-0.5)*2)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// clip shortens s with an ellipsis until it fits in maxW pixels.
func clip(dc *gg.Context, s string, maxW float64) string {
	if w, _ := dc.MeasureString(s); w <= maxW {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if w, _ := dc.MeasureString(candidate); w <= maxW {
			return candidate
		}
	}
	return "..."
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// FileName returns the timestamped chart file name for kind, e.g.
// nos_summary_chart_20260314_093000.png.
func FileName(kind string, now time.Time) string {
	return fmt.Sprintf("nos_%s_%s.png", kind, now.Format("20060102_150405"))
}

// WriteAll renders the three charts into dir and returns the paths written.
func (r *Renderer) WriteAll(dir string, s report.Summary, domains []string, now time.Time) ([]string, error) {
	if s.TotalStudies == 0 {
		return nil, ErrNoStudies
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	summary, err := r.Summary(s.Studies)
	if err != nil {
		return nil, err
	}
	heatmap, err := r.Heatmap(s.Studies, domains)
	if err != nil {
		return nil, err
	}
	studyTypes, err := r.StudyTypes(s)
	if err != nil {
		return nil, err
	}

	charts := []struct {
		kind string
		img  image.Image
	}{
		{"summary_chart", summary},
		{"domain_heatmap", heatmap},
		{"study_types", studyTypes},
	}

	var paths []string
	for _, c := range charts {
		path := filepath.Join(dir, FileName(c.kind, now))
		if err := gg.SavePNG(path, c.img); err != nil {
			return paths, fmt.Errorf("saving %s: %w", path, err)
		}
		r.log.Debug("chart written", "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}
