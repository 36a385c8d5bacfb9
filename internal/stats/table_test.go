package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Date", "Rate", "Change"}
	rows := [][]string{
		{"2024-01-01", "1.100000", "0.00%"},
		{"2024-01-02", "1.120000", "+1.82%"},
	}

	lines := FormatTable(headers, rows, NumericColumns(rows))
	require.Len(t, lines, 3)
	assert.Equal(t, "Date            Rate  Change", lines[0])
	assert.Equal(t, "2024-01-01  1.100000   0.00%", lines[1])
	assert.Equal(t, "2024-01-02  1.120000  +1.82%", lines[2])
}

func TestFormatTableTrimsTrailingPadding(t *testing.T) {
	lines := FormatTable([]string{"Code", "Name"}, [][]string{{"EUR", ""}}, nil)
	assert.Equal(t, "EUR", lines[1])
}

func TestFormatTableEmpty(t *testing.T) {
	assert.Nil(t, FormatTable(nil, nil, nil))
}

func TestNumericColumns(t *testing.T) {
	rows := [][]string{
		{"*", "2024-01-02", "1.120000", "1.82% ▲", "EUR - Euro"},
		{"", "2024-01-03", "n/a", "-3.57% ▼", "USD"},
		{"", "2024-01-04", "-", "0.00% ▲", ""},
	}
	assert.Equal(t, map[int]bool{2: true, 3: true}, NumericColumns(rows))

	mixed := [][]string{{"1.5"}, {"abc"}, {"2.5"}}
	assert.Empty(t, NumericColumns(mixed))

	onlyPlaceholders := [][]string{{"n/a"}, {"-"}}
	assert.Empty(t, NumericColumns(onlyPlaceholders))
}
