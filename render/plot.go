// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/10xengineers/rvvcharts/chartdata"
)

// Plot renders charts locally with gonum.org/v1/plot.
type Plot struct{}

var errNoLabels = errors.New("nothing to plot")

// Render implements Renderer.
func (r *Plot) Render(ctx context.Context, s *chartdata.Spec, w io.Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if len(s.Labels) == 0 {
		return fmt.Errorf("chart %q: %w", s.Title, errNoLabels)
	}
	pl, err := r.build(s)
	if err != nil {
		return fmt.Errorf("chart %q: %w", s.Title, err)
	}

	dpi := s.Options.EffectiveDPI()
	width := vg.Length(s.Options.Width) * vg.Inch / vg.Length(dpi)
	height := vg.Length(s.Options.Height) * vg.Inch / vg.Length(dpi)
	can := vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, height),
		vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}
	pl.Draw(draw.New(can))
	if _, err := can.WriteTo(w); err != nil {
		return fmt.Errorf("chart %q: %w", s.Title, err)
	}
	return nil
}

func (r *Plot) build(s *chartdata.Spec) (*plot.Plot, error) {
	opts := &s.Options
	pl := plot.New()
	pl.Title.Text = s.Title
	pl.Title.TextStyle.Font.Size = vg.Points(14)
	pl.X.Label.Text = opts.XLabel
	pl.Y.Label.Text = opts.YLabel

	if opts.LogScale {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Horizontal.Color = color.Gray{Y: 0xb0}
	pl.Add(grid)

	colors := seriesColors(s)
	if opts.LegendTitle != "" {
		pl.Legend.Add(opts.LegendTitle)
	}
	pl.Legend.Top = true

	switch s.Kind {
	case chartdata.Bar:
		bg := newBarGroup(s, colors)
		if opts.ValueLabels {
			sty := pl.Y.Tick.Label
			sty.Font.Size = vg.Points(6.5)
			sty.Rotation = math.Pi / 2
			sty.XAlign = draw.XLeft
			sty.YAlign = draw.YCenter
			bg.labelStyle = &sty
			bg.labelFormat = opts.ValueFormat
		}
		pl.Add(bg)
		for i, ds := range s.Datasets {
			pl.Legend.Add(ds.Label, swatch{colors[i]})
		}
	case chartdata.Line:
		for i, ds := range s.Datasets {
			var xys plotter.XYs
			for j, v := range ds.Values {
				if s.Drawable(v) {
					xys = append(xys, plotter.XY{X: float64(j), Y: v})
				}
			}
			if len(xys) == 0 {
				pl.Legend.Add(ds.Label, swatch{colors[i]})
				continue
			}
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, err
			}
			line.LineStyle.Color = colors[i]
			line.LineStyle.Width = vg.Points(1.5)
			points, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, err
			}
			points.GlyphStyle.Color = colors[i]
			points.GlyphStyle.Shape = draw.CircleGlyph{}
			points.GlyphStyle.Radius = vg.Points(2.5)
			pl.Add(line, points)
			pl.Legend.Add(ds.Label, line, points)
		}
		pl.X.Min, pl.X.Max = -0.5, float64(len(s.Labels))-0.5
	default:
		return nil, fmt.Errorf("unsupported chart type %q", s.Kind)
	}

	if opts.SuggestedMin != nil && *opts.SuggestedMin < pl.Y.Min && !(opts.LogScale && *opts.SuggestedMin <= 0) {
		pl.Y.Min = *opts.SuggestedMin
	}
	if opts.SuggestedMax != nil && *opts.SuggestedMax > pl.Y.Max {
		pl.Y.Max = *opts.SuggestedMax
	}
	if opts.ValueLabels {
		// Leave room for the labels above the tallest bar.
		if opts.LogScale {
			pl.Y.Max *= 4
		} else {
			pl.Y.Max += 0.1 * (pl.Y.Max - pl.Y.Min)
		}
	}

	pl.NominalX(s.Labels...)
	pl.X.Tick.Label.Rotation = math.Pi / 4
	pl.X.Tick.Label.XAlign = draw.XRight
	pl.X.Tick.Label.YAlign = draw.YTop
	pl.X.Tick.Label.Font.Size = vg.Points(8)
	return pl, nil
}

// A barGroup draws every dataset of a bar chart. Bars of one label
// are either side by side or stacked.
type barGroup struct {
	values  [][]float64
	colors  []color.Color
	stacked bool
	log     bool

	// floor is where unstacked bars start: 0 on a linear axis, the
	// power of ten below the smallest value on a log axis.
	floor float64

	line        draw.LineStyle
	labelStyle  *text.Style
	labelFormat string
}

func newBarGroup(s *chartdata.Spec, colors []drawing.Color) *barGroup {
	bg := &barGroup{
		stacked: s.Options.Stacked,
		line:    draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)},
	}
	for i, ds := range s.Datasets {
		bg.values = append(bg.values, ds.Values)
		bg.colors = append(bg.colors, colors[i])
	}
	if s.Options.LogScale {
		bg.log = true
		min, _ := s.Bounds()
		bg.floor = math.Pow(10, math.Floor(math.Log10(min)))
		if bg.floor >= min {
			bg.floor /= 10
		}
		// Stacking is meaningless on a log axis.
		bg.stacked = false
	}
	return bg
}

func (b *barGroup) n() int {
	if len(b.values) == 0 {
		return 0
	}
	return len(b.values[0])
}

// bar is one rectangle in data coordinates, plus its offset and width
// as a fraction of the distance between labels.
type bar struct {
	x, lo, hi float64
	off, w    float64
	value     float64
	set       int
}

func (b *barGroup) bars() []bar {
	const groupWidth = 0.8
	var out []bar
	sets := len(b.values)
	for i := 0; i < b.n(); i++ {
		pos, neg := 0.0, 0.0
		for k := range b.values {
			v := b.values[k][i]
			if b.log && v <= 0 {
				continue
			}
			br := bar{x: float64(i), value: v, set: k}
			switch {
			case b.stacked && v >= 0:
				br.lo, br.hi = pos, pos+v
				pos += v
				br.w = groupWidth
			case b.stacked:
				br.lo, br.hi = neg, neg+v
				neg += v
				br.w = groupWidth
			default:
				br.lo, br.hi = b.floor, v
				br.w = groupWidth / float64(sets)
				br.off = (float64(k) - float64(sets-1)/2) * br.w
			}
			out = append(out, br)
		}
	}
	return out
}

// Plot implements plot.Plotter.
func (b *barGroup) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	unit := trX(1) - trX(0)
	for _, br := range b.bars() {
		x := trX(br.x) + vg.Length(br.off)*unit
		if !c.ContainsX(x) || br.lo == br.hi {
			continue
		}
		half := vg.Length(br.w) * unit / 2
		lo, hi := trY(br.lo), trY(br.hi)
		pts := []vg.Point{
			{X: x - half, Y: lo},
			{X: x - half, Y: hi},
			{X: x + half, Y: hi},
			{X: x + half, Y: lo},
		}
		c.FillPolygon(b.colors[br.set], c.ClipPolygonY(pts))
		c.StrokeLines(b.line, c.ClipLinesY(append(pts, pts[0]))...)

		if b.labelStyle != nil {
			top := hi
			if br.hi < br.lo {
				top = lo
			}
			label := fmt.Sprintf(b.labelFormat, br.value)
			pt := vg.Point{X: x, Y: top + vg.Points(2)}
			if c.ContainsY(pt.Y) {
				c.FillText(*b.labelStyle, pt, label)
			}
		}
	}
}

// DataRange implements plot.DataRanger.
func (b *barGroup) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = -0.5, float64(b.n())-0.5
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, br := range b.bars() {
		ymin = math.Min(ymin, math.Min(br.lo, br.hi))
		ymax = math.Max(ymax, math.Max(br.lo, br.hi))
	}
	if ymin > ymax {
		ymin, ymax = 0, 1
	}
	return
}

// A swatch is a legend thumbnail filled with one color.
type swatch struct {
	color color.Color
}

// Thumbnail implements plot.Thumbnailer.
func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}
