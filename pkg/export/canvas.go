package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

type anchor int

const (
	anchorStart anchor = iota
	anchorMiddle
	anchorEnd
)

// surface is the small drawing vocabulary the chart panels need. One
// implementation writes SVG, the other rasterises to PNG.
type surface interface {
	fillRect(x, y, w, h float64, fill color.RGBA)
	strokeRect(x, y, w, h float64, stroke color.RGBA)
	line(x1, y1, x2, y2 float64, stroke color.RGBA, width float64)
	circle(x, y, r float64, stroke color.RGBA)
	text(x, y float64, s string, c color.RGBA, size float64, a anchor, bold bool)
}

// --- SVG -------------------------------------------------------------------

type svgSurface struct {
	canvas *svg.SVG
}

func newSVGSurface(w io.Writer, width, height int) *svgSurface {
	canvas := svg.New(w)
	canvas.Start(width, height)
	return &svgSurface{canvas: canvas}
}

func (s *svgSurface) end() { s.canvas.End() }

func (s *svgSurface) fillRect(x, y, w, h float64, fill color.RGBA) {
	s.canvas.Rect(px(x), px(y), px(w), px(h), fmt.Sprintf("fill:%s", css(fill)))
}

func (s *svgSurface) strokeRect(x, y, w, h float64, stroke color.RGBA) {
	s.canvas.Rect(px(x), px(y), px(w), px(h), fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(stroke)))
}

func (s *svgSurface) line(x1, y1, x2, y2 float64, stroke color.RGBA, width float64) {
	s.canvas.Line(px(x1), px(y1), px(x2), px(y2), fmt.Sprintf("stroke:%s;stroke-width:%g", css(stroke), width))
}

func (s *svgSurface) circle(x, y, r float64, stroke color.RGBA) {
	s.canvas.Circle(px(x), px(y), px(r), fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(stroke)))
}

func (s *svgSurface) text(x, y float64, str string, c color.RGBA, size float64, a anchor, bold bool) {
	style := fmt.Sprintf("fill:%s;font-size:%gpx;font-family:monospace;text-anchor:%s;dominant-baseline:middle",
		css(c), size, [...]string{"start", "middle", "end"}[a])
	if bold {
		style += ";font-weight:bold"
	}
	s.canvas.Text(px(x), px(y), str, style)
}

// --- PNG -------------------------------------------------------------------

type pngSurface struct {
	dc *gg.Context
}

func newPNGSurface(width, height int) *pngSurface {
	dc := gg.NewContext(width, height)
	dc.SetFontFace(basicfont.Face7x13)
	return &pngSurface{dc: dc}
}

func (p *pngSurface) encode(w io.Writer) error { return p.dc.EncodePNG(w) }

func (p *pngSurface) fillRect(x, y, w, h float64, fill color.RGBA) {
	p.dc.SetColor(fill)
	p.dc.DrawRectangle(x, y, w, h)
	p.dc.Fill()
}

func (p *pngSurface) strokeRect(x, y, w, h float64, stroke color.RGBA) {
	p.dc.SetColor(stroke)
	p.dc.SetLineWidth(1)
	p.dc.DrawRectangle(x, y, w, h)
	p.dc.Stroke()
}

func (p *pngSurface) line(x1, y1, x2, y2 float64, stroke color.RGBA, width float64) {
	p.dc.SetColor(stroke)
	p.dc.SetLineWidth(width)
	p.dc.DrawLine(x1, y1, x2, y2)
	p.dc.Stroke()
}

func (p *pngSurface) circle(x, y, r float64, stroke color.RGBA) {
	p.dc.SetColor(stroke)
	p.dc.SetLineWidth(1)
	p.dc.DrawCircle(x, y, r)
	p.dc.Stroke()
}

// The bitmap face has a single size; size and bold are ignored.
func (p *pngSurface) text(x, y float64, s string, c color.RGBA, _ float64, a anchor, _ bool) {
	p.dc.SetColor(c)
	p.dc.DrawStringAnchored(s, x, y, float64(a)/2, 0.5)
}

// --- helpers ---------------------------------------------------------------

func px(v float64) int { return int(math.Round(v)) }

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
