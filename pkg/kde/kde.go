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

// Package kde estimates one-dimensional probability densities with a
// Gaussian kernel.
package kde

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MinSamples is the smallest sample count a density can be estimated from.
const MinSamples = 2

// defaultGridPoints is the evaluation grid size when none is configured.
const defaultGridPoints = 200

// bandwidthFloor keeps the density finite when every sample is equal.
const bandwidthFloor = 1e-3

// ErrInsufficientData is returned when fewer than MinSamples values are
// supplied.
var ErrInsufficientData = errors.New("kde: insufficient data for density estimation")

// Options tunes the estimate. The zero value means Silverman bandwidth and
// the default grid.
type Options struct {
	// Bandwidth overrides the Silverman rule-of-thumb when positive.
	Bandwidth float64
	// GridPoints sets the evaluation grid size when positive.
	GridPoints int
}

// Density is an estimated probability density evaluated on a fixed grid.
type Density struct {
	Xs        []float64
	Ys        []float64
	Bandwidth float64
}

// Estimate computes a Gaussian kernel density estimate of xs. The bandwidth
// follows Silverman's rule of thumb, h = 0.9 min(σ̂, IQR/1.34) n^(-1/5),
// unless overridden; the grid spans [min−3h, max+3h].
func Estimate(xs []float64, opts *Options) (*Density, error) {
	if len(xs) < MinSamples {
		return nil, ErrInsufficientData
	}
	if opts == nil {
		opts = &Options{}
	}

	h := opts.Bandwidth
	if h <= 0 {
		h = silverman(xs)
	}

	// A one-point grid would make the step division degenerate.
	points := opts.GridPoints
	if points < 2 {
		points = defaultGridPoints
	}

	lo, hi := minMax(xs)
	lo -= 3 * h
	hi += 3 * h

	grid := make([]float64, points)
	dens := make([]float64, points)
	step := (hi - lo) / float64(points-1)
	norm := 1 / (float64(len(xs)) * h * math.Sqrt(2*math.Pi))
	for i := range grid {
		x := lo + float64(i)*step
		grid[i] = x
		sum := 0.0
		for _, xi := range xs {
			u := (x - xi) / h
			sum += math.Exp(-0.5 * u * u)
		}
		dens[i] = norm * sum
	}

	return &Density{Xs: grid, Ys: dens, Bandwidth: h}, nil
}

// silverman returns the rule-of-thumb bandwidth with a floor for degenerate
// all-equal samples.
func silverman(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	sigma := stat.StdDev(sorted, nil)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)

	spread := sigma
	if iqr > 0 && iqr/1.34 < spread {
		spread = iqr / 1.34
	}

	h := 0.9 * spread * math.Pow(float64(len(xs)), -1.0/5.0)
	if h < bandwidthFloor {
		h = bandwidthFloor
	}
	return h
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
