package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "EUR → USD", []Series{
		{Name: "Rate", Values: []float64{1.10, 1.12, 1.08, 1.09, 1.11}},
		{Name: "2-day avg", Values: []float64{1.10, 1.11, 1.10, 1.085, 1.10}},
	}, 20, 4)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "EUR → USD")
	assert.Contains(t, out, "1.120000", "shared max axis label")
	assert.Contains(t, out, "1.080000", "shared min axis label")
	assert.Contains(t, out, "Legend:")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1+4+1)
}

func TestPlotSeriesSinglePointFlat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlotSeries(&buf, "", []Series{{Name: "Rate", Values: []float64{0.91}}}, 10, 3))
	assert.NotContains(t, buf.String(), "Legend:")
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 3)
}

func TestPlotSeriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlotSeries(&buf, "empty", nil, 10, 3))
	assert.Zero(t, buf.Len())
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + utf8.RuneCountInString(axisSeparator)
	assert.Equal(t, 80-axisWidth, PlotWidthFor(80))
	assert.Equal(t, minPlotWidth, PlotWidthFor(0))
}
