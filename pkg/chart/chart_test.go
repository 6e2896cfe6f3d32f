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

package chart_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempdist/tempdist/pkg/chart"
	"github.com/tempdist/tempdist/pkg/kde"
)

func TestDensitiesOverlaysTwoCurves(t *testing.T) {
	t.Parallel()

	series := []chart.Series{
		{Label: "2023", Values: []float64{14.2, 15.1, 16.0, 15.4, 14.8}},
		{Label: "2020", Values: []float64{12.9, 13.4, 13.8, 14.1, 13.2}},
	}

	figure, err := chart.Densities(series, &chart.Options{
		Title:  "Promedio de la temperatura",
		XLabel: "Temperatura (°C)",
		YLabel: "Densidad de probabilidad",
	})
	require.NoError(t, err, "Error should be nil for two well-formed series")

	require.Len(t, figure.Curves, 2, "One curve per series should be drawn")
	assert.Equal(t, "2023", figure.Curves[0].Label)
	assert.Equal(t, "2020", figure.Curves[1].Label)
	assert.Equal(t, 5, figure.Curves[0].Samples)
	assert.Greater(t, figure.Curves[0].Bandwidth, 0.0, "Each curve should record its bandwidth")
}

func TestDensitiesEmptySet(t *testing.T) {
	t.Parallel()

	_, err := chart.Densities(nil, nil)
	require.Error(t, err, "An empty series set should fail before rendering")

	var renderErr *chart.RenderError
	require.True(t, errors.As(err, &renderErr), "Error should be a *RenderError")
	assert.ErrorIs(t, err, kde.ErrInsufficientData)
}

func TestDensitiesUndersizedSeries(t *testing.T) {
	t.Parallel()

	series := []chart.Series{
		{Label: "2023", Values: []float64{14.2, 15.1, 16.0}},
		{Label: "2020", Values: []float64{12.9}},
	}

	_, err := chart.Densities(series, nil)
	require.Error(t, err, "A one-sample series should fail the whole figure")

	var renderErr *chart.RenderError
	require.True(t, errors.As(err, &renderErr), "Error should be a *RenderError")
	assert.Equal(t, "2020", renderErr.Label, "The failing label should be reported")
	assert.ErrorIs(t, err, kde.ErrInsufficientData)
}

func TestChartSaveWritesImage(t *testing.T) {
	t.Parallel()

	series := []chart.Series{
		{Label: "2023", Values: []float64{14.2, 15.1, 16.0, 15.4}},
		{Label: "2020", Values: []float64{12.9, 13.4, 13.8, 14.1}},
	}

	figure, err := chart.Densities(series, &chart.Options{Title: "densities"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tempdist.png")
	require.NoError(t, figure.Save(path), "Error should be nil when saving the figure")

	info, err := os.Stat(path)
	require.NoError(t, err, "The image file should exist")
	assert.Positive(t, info.Size(), "The image file should not be empty")
}

func TestChartSaveUnknownExtension(t *testing.T) {
	t.Parallel()

	series := []chart.Series{
		{Label: "a", Values: []float64{1, 2, 3}},
		{Label: "b", Values: []float64{2, 3, 4}},
	}

	figure, err := chart.Densities(series, nil)
	require.NoError(t, err)

	err = figure.Save(filepath.Join(t.TempDir(), "tempdist.xyz"))
	require.Error(t, err, "An unsupported extension should fail the save")

	var renderErr *chart.RenderError
	assert.True(t, errors.As(err, &renderErr), "Error should be a *RenderError")
}
