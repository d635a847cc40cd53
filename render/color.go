// Copyright 2024 10xEngineers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot/palette/brewer"

	"github.com/10xengineers/rvvcharts/chartdata"
)

// seriesColors returns one fill color per dataset of s. Datasets
// without an explicit color take the next color of a qualitative
// palette.
func seriesColors(s *chartdata.Spec) []drawing.Color {
	n := len(s.Datasets)
	// Set2 has between 3 and 8 colors.
	pn := n
	if pn < 3 {
		pn = 3
	} else if pn > 8 {
		pn = 8
	}
	var pal []color.Color
	if p, err := brewer.GetPalette(brewer.TypeQualitative, "Set2", pn); err == nil {
		pal = p.Colors()
	} else {
		pal = []color.Color{color.Gray{Y: 0x80}}
	}

	colors := make([]drawing.Color, n)
	next := 0
	for i, ds := range s.Datasets {
		if ds.Color != "" {
			colors[i] = hexColor(ds.Color)
			continue
		}
		colors[i] = toDrawing(pal[next%len(pal)])
		next++
	}
	return colors
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

func toDrawing(c color.Color) drawing.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return drawing.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// cssColor formats c as "#rrggbb" for Chart.js.
func cssColor(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
