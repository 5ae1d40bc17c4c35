package analyze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	finerrors "github.com/finspect/finspect/internal/errors"
)

func TestCSVWithHeader(t *testing.T) {
	data := "id,name,amount\n1,widget,10\n2,gadget,14\n"
	m, err := CSV("/data/in/orders.csv", []byte(data), false, 3)
	require.NoError(t, err)

	assert.Equal(t, ",", m.Delimiter)
	assert.True(t, m.HasHeader)
	assert.Equal(t, 2, m.RowCount)
	assert.Equal(t, 3, m.ColumnCount)
	assert.Equal(t, []string{"numeric", "text", "numeric"}, m.ColumnTypes)
	assert.Equal(t, [][]string{{"1", "widget", "10"}, {"2", "gadget", "14"}}, m.SampleRows)
	assert.False(t, m.Ragged)
}

func TestCSVSemicolonNoHeader(t *testing.T) {
	rows := []string{
		"1;aa;2.5",
		"2;bb;3.5",
		"3;cc;4.5",
		"4;dd;5.5",
		"5;ee;6.5",
	}
	m, err := CSV("/data/in/export.dat", []byte(strings.Join(rows, "\n")+"\n"), false, 3)
	require.NoError(t, err)

	assert.Equal(t, ";", m.Delimiter)
	assert.False(t, m.HasHeader)
	assert.Equal(t, 5, m.RowCount)
	assert.Equal(t, 3, m.ColumnCount)
	assert.Equal(t, []string{"numeric", "text", "numeric"}, m.ColumnTypes)
	assert.Len(t, m.SampleRows, 3)
}

func TestCSVSingleColumnTSVFallback(t *testing.T) {
	m, err := CSV("/data/in/names.tsv", []byte("alpha\nbeta\n"), false, 3)
	require.NoError(t, err)

	assert.Equal(t, "\t", m.Delimiter)
	assert.Equal(t, 1, m.ColumnCount)
	assert.Equal(t, 2, m.RowCount)
	assert.False(t, m.HasHeader)
	assert.Equal(t, []string{"text"}, m.ColumnTypes)
}

func TestCSVRagged(t *testing.T) {
	data := "a,b,c\n1,2\n3,4,5\n"
	m, err := CSV("/data/in/ragged.csv", []byte(data), false, 3)
	require.Error(t, err)

	assert.True(t, m.Ragged)
	assert.Equal(t, finerrors.StageCSV, finerrors.StageOf(err))
	assert.Equal(t, 3, m.ColumnCount)
	assert.True(t, m.HasHeader)
	assert.Equal(t, 2, m.RowCount)
}

func TestCSVQuotedDelimiter(t *testing.T) {
	data := "name,note\nwidget,\"cheap, cheerful\"\n"
	m, err := CSV("/data/in/notes.csv", []byte(data), false, 3)
	require.NoError(t, err)

	assert.Equal(t, ",", m.Delimiter)
	assert.Equal(t, 2, m.ColumnCount)
	assert.False(t, m.Ragged)
	require.Len(t, m.SampleRows, 2)
	assert.Equal(t, "cheap, cheerful", m.SampleRows[1][1])
}

func TestCSVMixedAndEmptyColumns(t *testing.T) {
	data := "x,,y\n1,,foo\nbar,,baz\n"
	m, err := CSV("/data/in/mixed.csv", []byte(data), false, 3)
	require.NoError(t, err)

	assert.True(t, m.HasHeader)
	assert.Equal(t, []string{"mixed", "empty", "text"}, m.ColumnTypes)
	assert.Equal(t, 2, m.RowCount)
}

func TestCSVEmptyContent(t *testing.T) {
	m, err := CSV("/data/in/empty.csv", nil, false, 3)
	require.NoError(t, err)

	assert.Equal(t, ",", m.Delimiter)
	assert.Zero(t, m.RowCount)
	assert.Zero(t, m.ColumnCount)
	assert.False(t, m.HasHeader)
	assert.Empty(t, m.ColumnTypes)
	assert.Empty(t, m.SampleRows)
}

func TestCSVSampleRowsZero(t *testing.T) {
	m, err := CSV("/data/in/orders.csv", []byte("a,b\n1,2\n"), false, 0)
	require.NoError(t, err)
	assert.Empty(t, m.SampleRows)
	assert.Equal(t, 1, m.RowCount)
}
