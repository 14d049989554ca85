package export

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/mehaktrehan/titanic/pkg/charts"
)

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorPanelBG  = color.RGBA{0xf7, 0xf8, 0xfa, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorAxis     = color.RGBA{0x33, 0x33, 0x33, 0xff}
	colorGrid     = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
)

// palette follows the usual categorical order: blue, orange, green, red.
var palette = []color.RGBA{
	{0x4c, 0x72, 0xb0, 0xff},
	{0xdd, 0x84, 0x52, 0xff},
	{0x55, 0xa8, 0x68, 0xff},
	{0xc4, 0x4e, 0x52, 0xff},
	{0x81, 0x72, 0xb3, 0xff},
}

func seriesColor(i int) color.RGBA { return palette[i%len(palette)] }

// panel is the pixel box one chart is drawn into.
type panel struct {
	X, Y, W, H float64
}

// Plot area insets inside a panel.
const (
	insetLeft   = 52.0
	insetRight  = 16.0
	insetTop    = 44.0
	insetBottom = 48.0
)

func (p panel) plot() (x0, y0, x1, y1 float64) {
	return p.X + insetLeft, p.Y + insetTop, p.X + p.W - insetRight, p.Y + p.H - insetBottom
}

// yScale maps data values onto the plot's vertical extent.
type yScale struct {
	lo, hi float64
	top    float64
	bottom float64
}

func (s yScale) at(v float64) float64 {
	if s.hi == s.lo {
		return s.bottom
	}
	return s.bottom - (v-s.lo)/(s.hi-s.lo)*(s.bottom-s.top)
}

// niceTicks returns evenly spaced round tick values covering [lo, hi].
func niceTicks(lo, hi float64, n int) []float64 {
	if hi <= lo {
		hi = lo + 1
	}
	raw := (hi - lo) / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*mag >= raw {
			step = m * mag
			break
		}
	}
	var ticks []float64
	for v := math.Floor(lo/step) * step; v <= hi+step/2; v += step {
		ticks = append(ticks, v)
		if v >= hi {
			break
		}
	}
	return ticks
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// frame draws the panel background, title, axes, y grid and axis labels,
// and returns the y scale for the given data range.
func frame(s surface, p panel, meta charts.Meta, lo, hi float64) yScale {
	s.fillRect(p.X, p.Y, p.W, p.H, colorPanelBG)
	s.text(p.X+p.W/2, p.Y+18, meta.Title, colorText, 14, anchorMiddle, true)

	x0, y0, x1, y1 := p.plot()
	ticks := niceTicks(lo, hi, 5)
	sc := yScale{lo: ticks[0], hi: ticks[len(ticks)-1], top: y0, bottom: y1}

	for _, t := range ticks {
		y := sc.at(t)
		s.line(x0, y, x1, y, colorGrid, 1)
		s.text(x0-6, y, formatTick(t), colorSubtle, 10, anchorEnd, false)
	}
	s.line(x0, y0, x0, y1, colorAxis, 1)
	s.line(x0, y1, x1, y1, colorAxis, 1)

	s.text((x0+x1)/2, p.Y+p.H-10, meta.XLabel, colorText, 12, anchorMiddle, false)
	s.text(p.X+10, p.Y+insetTop-14, meta.YLabel, colorText, 12, anchorStart, false)
	return sc
}

func legend(s surface, p panel, names []string) {
	_, y0, x1, _ := p.plot()
	for i, name := range names {
		y := y0 + 8 + float64(i)*16
		s.fillRect(x1-110, y-5, 10, 10, seriesColor(i))
		s.text(x1-95, y, name, colorSubtle, 10, anchorStart, false)
	}
}

func drawGender(s surface, p panel, g charts.GenderSurvival) {
	sc := frame(s, p, g.Meta, 0, float64(max(g.Max(), 1)))
	x0, _, x1, y1 := p.plot()

	groupW := (x1 - x0) / float64(max(len(g.Categories), 1))
	barW := groupW * 0.8 / float64(max(len(g.Series), 1))
	for i, cat := range g.Categories {
		gx := x0 + float64(i)*groupW + groupW*0.1
		for j := range g.Series {
			top := sc.at(float64(g.Counts[i][j]))
			s.fillRect(gx+float64(j)*barW, top, barW, y1-top, seriesColor(j))
		}
		s.text(x0+(float64(i)+0.5)*groupW, y1+12, cat, colorText, 11, anchorMiddle, false)
	}
	legend(s, p, g.Series)
}

func drawAge(s surface, p panel, h charts.AgeHistogram) {
	sc := frame(s, p, h.Meta, 0, float64(max(h.MaxTotal(), 1)))
	x0, y0, x1, y1 := p.plot()
	if h.Empty() {
		s.text((x0+x1)/2, (y0+y1)/2, "No age data", colorSubtle, 12, anchorMiddle, false)
		return
	}

	lo, hi := h.Edges[0], h.Edges[len(h.Edges)-1]
	xAt := func(v float64) float64 { return x0 + (v-lo)/(hi-lo)*(x1-x0) }
	for _, b := range h.Bins {
		base := 0
		for li, c := range b.Counts {
			if c == 0 {
				continue
			}
			top := sc.at(float64(base + c))
			bottom := sc.at(float64(base))
			s.fillRect(xAt(b.Low), top, xAt(b.High)-xAt(b.Low), bottom-top, seriesColor(li))
			s.strokeRect(xAt(b.Low), top, xAt(b.High)-xAt(b.Low), bottom-top, colorBackdrop)
			base += c
		}
	}
	for _, t := range niceTicks(lo, hi, 5) {
		if t < lo || t > hi {
			continue
		}
		s.text(xAt(t), y1+12, formatTick(t), colorSubtle, 10, anchorMiddle, false)
	}
	legend(s, p, h.Labels)
}

func drawFare(s surface, p panel, f charts.FareBoxPlot) {
	lo, hi := f.Range()
	sc := frame(s, p, f.Meta, math.Min(0, lo), hi)
	x0, _, x1, y1 := p.plot()

	slot := (x1 - x0) / float64(max(len(f.Boxes), 1))
	for i, b := range f.Boxes {
		cx := x0 + (float64(i)+0.5)*slot
		half := slot * 0.3

		s.line(cx, sc.at(b.LowWhisk), cx, sc.at(b.Q1), colorStroke, 1)
		s.line(cx, sc.at(b.Q3), cx, sc.at(b.HighWhisk), colorStroke, 1)
		s.line(cx-half/2, sc.at(b.LowWhisk), cx+half/2, sc.at(b.LowWhisk), colorStroke, 1)
		s.line(cx-half/2, sc.at(b.HighWhisk), cx+half/2, sc.at(b.HighWhisk), colorStroke, 1)

		top, bottom := sc.at(b.Q3), sc.at(b.Q1)
		s.fillRect(cx-half, top, 2*half, bottom-top, seriesColor(i))
		s.strokeRect(cx-half, top, 2*half, bottom-top, colorStroke)
		s.line(cx-half, sc.at(b.Median), cx+half, sc.at(b.Median), colorStroke, 2)

		for _, o := range b.Outliers {
			s.circle(cx, sc.at(o), 3, colorStroke)
		}
		s.text(cx, y1+12, b.Class, colorText, 11, anchorMiddle, false)
	}
}

// Subtitle is the caption line written under the snapshot title.
func Subtitle(matched, total int, filters string) string {
	return fmt.Sprintf("%d of %d passengers · %s", matched, total, filters)
}
