// Package export writes the dashboard charts to image files.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mehaktrehan/titanic/pkg/charts"
	"github.com/mehaktrehan/titanic/pkg/debug"
	"github.com/mehaktrehan/titanic/pkg/metrics"
)

// ErrNoCharts is returned when there is nothing to draw.
var ErrNoCharts = errors.New("no charts to export")

// Supported formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Layout of the combined snapshot.
const (
	panelW  = 400.0
	panelH  = 320.0
	gap     = 20.0
	pad     = 24.0
	headerH = 70.0
)

// SnapshotOptions configures SaveChartSnapshot.
type SnapshotOptions struct {
	Path     string
	Format   string // "svg" or "png"; inferred from Path when empty
	Title    string
	Subtitle string
	Charts   *charts.Set
}

// ResolveFormat returns the output format for path, preferring an explicit
// format. A path without an extension defaults to SVG and gets ".svg"
// appended.
func ResolveFormat(path, format string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = FormatSVG
		case ".png":
			format = FormatPNG
		case "":
			format = FormatSVG
			if path != "" {
				path += ".svg"
			}
		default:
			format = FormatSVG
		}
	}
	if format != FormatSVG && format != FormatPNG {
		return path, "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return path, format, nil
}

// SaveChartSnapshot renders the three charts side by side into one SVG or
// PNG file.
func SaveChartSnapshot(opts SnapshotOptions) error {
	if opts.Charts == nil {
		return ErrNoCharts
	}
	path, format, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	defer metrics.Timer(metrics.Export)()

	var buf bytes.Buffer
	if err := Render(&buf, format, opts.Title, opts.Subtitle, opts.Charts); err != nil {
		return err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	debug.Log("exported %s snapshot to %s (%d bytes)", format, path, buf.Len())
	return nil
}

// Render draws the full snapshot to w in the given format.
func Render(w io.Writer, format, title, sub string, set *charts.Set) error {
	if set == nil {
		return ErrNoCharts
	}
	width := int(2*pad + 3*panelW + 2*gap)
	height := int(2*pad + headerH + panelH)

	draw := func(s surface) {
		s.fillRect(0, 0, float64(width), float64(height), colorBackdrop)
		s.fillRect(0, 0, float64(width), headerH, colorHeaderBG)
		s.text(pad, 26, title, colorText, 20, anchorStart, true)
		if sub != "" {
			s.text(pad, 52, sub, colorSubtle, 12, anchorStart, false)
		}
		y := pad + headerH
		drawGender(s, panel{X: pad, Y: y, W: panelW, H: panelH}, set.Gender)
		drawAge(s, panel{X: pad + panelW + gap, Y: y, W: panelW, H: panelH}, set.Age)
		drawFare(s, panel{X: pad + 2*(panelW+gap), Y: y, W: panelW, H: panelH}, set.Fare)
	}
	return renderWith(w, format, width, height, draw)
}

func renderWith(w io.Writer, format string, width, height int, draw func(surface)) error {
	switch format {
	case FormatSVG:
		s := newSVGSurface(w, width, height)
		draw(s)
		s.end()
		return nil
	case FormatPNG:
		s := newPNGSurface(width, height)
		draw(s)
		return s.encode(w)
	default:
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
}

// PanelFiles are the file names SavePanels writes, without extension.
var PanelFiles = [...]string{"survival_by_gender", "age_distribution", "fare_by_class"}

// SavePanels writes one image per chart into dir and returns the paths in
// display order.
func SavePanels(ctx context.Context, dir, format string, set *charts.Set) ([]string, error) {
	if set == nil {
		return nil, ErrNoCharts
	}
	_, format, err := ResolveFormat("", format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	defer metrics.Timer(metrics.Export)()

	width, height := int(panelW+2*pad), int(panelH+2*pad)
	panels := [...]func(surface, panel){
		func(s surface, p panel) { drawGender(s, p, set.Gender) },
		func(s surface, p panel) { drawAge(s, p, set.Age) },
		func(s surface, p panel) { drawFare(s, p, set.Fare) },
	}

	paths := make([]string, len(panels))
	g, ctx := errgroup.WithContext(ctx)
	for i, drawPanel := range panels {
		paths[i] = filepath.Join(dir, PanelFiles[i]+"."+format)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			err := renderWith(&buf, format, width, height, func(s surface) {
				s.fillRect(0, 0, float64(width), float64(height), colorBackdrop)
				drawPanel(s, panel{X: pad, Y: pad, W: panelW, H: panelH})
			})
			if err != nil {
				return err
			}
			return writeFile(paths[i], buf.Bytes())
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	debug.Log("exported %d %s panels to %s", len(paths), format, dir)
	return paths, nil
}

// writeFile writes data through a temp file in the same directory so a
// failed export never leaves a truncated image behind.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".titanic-export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
