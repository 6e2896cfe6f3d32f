// --------------------------------------------------------------------------------
// Author: Thomas F McGeehan V
//
// This file is part of a software project developed by Thomas F McGeehan V.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
// For more information about the MIT License, please visit:
// https://opensource.org/licenses/MIT
//
// Acknowledgment appreciated but not required.
// --------------------------------------------------------------------------------

// Package chart renders overlaid kernel density curves for labeled
// observation series.
package chart

import (
	"fmt"

	"github.com/tempdist/tempdist/pkg/kde"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is one labeled sample set to draw a density curve for.
type Series struct {
	Label  string
	Values []float64
}

// Options carries the figure's text and dimensions. Zero dimensions default
// to 8x5 inches.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
	// KDE tunes the density estimation for every series.
	KDE *kde.Options
}

// Curve describes one rendered density for inspection by callers and tests.
type Curve struct {
	Label     string
	Samples   int
	Bandwidth float64
}

// Chart is a prepared figure. Nothing is written until Save.
type Chart struct {
	Curves []Curve

	plot   *plot.Plot
	width  vg.Length
	height vg.Length
}

// RenderError reports a series that could not be rendered, usually because
// it holds fewer samples than density estimation needs.
type RenderError struct {
	Label string
	Err   error
}

func (e *RenderError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("chart: render failed: %v", e.Err)
	}
	return fmt.Sprintf("chart: series %q: render failed: %v", e.Label, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Densities estimates a kernel density per series and lays them out on one
// figure with a legend entry per label. An empty series set, or any series
// below the sample minimum, fails with a *RenderError before any file is
// written.
func Densities(series []Series, opts *Options) (*Chart, error) {
	if opts == nil {
		opts = &Options{}
	}
	if len(series) == 0 {
		return nil, &RenderError{Err: kde.ErrInsufficientData}
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Legend.Top = true

	chart := &Chart{plot: p, width: opts.Width, height: opts.Height}
	if chart.width <= 0 {
		chart.width = 8 * vg.Inch
	}
	if chart.height <= 0 {
		chart.height = 5 * vg.Inch
	}

	for i, s := range series {
		density, err := kde.Estimate(s.Values, opts.KDE)
		if err != nil {
			return nil, &RenderError{Label: s.Label, Err: err}
		}

		pts := make(plotter.XYs, len(density.Xs))
		for j := range density.Xs {
			pts[j].X = density.Xs[j]
			pts[j].Y = density.Ys[j]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, &RenderError{Label: s.Label, Err: err}
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)

		p.Add(line)
		p.Legend.Add(s.Label, line)

		chart.Curves = append(chart.Curves, Curve{
			Label:     s.Label,
			Samples:   len(s.Values),
			Bandwidth: density.Bandwidth,
		})
	}

	return chart, nil
}

// Save renders the figure to path; the image format follows the extension
// (.png, .svg, .pdf).
func (c *Chart) Save(path string) error {
	if err := c.plot.Save(c.width, c.height, path); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}
