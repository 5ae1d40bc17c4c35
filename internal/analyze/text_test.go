package analyze

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/insight"
)

func TestTextUTF8(t *testing.T) {
	m, err := Text("/data/in/notes.txt", []byte("The cat sat. The cat ran!\n"), insight.Options{})
	require.NoError(t, err)

	assert.Equal(t, "utf-8", m.Encoding)
	assert.Equal(t, 6, m.WordCount)
	assert.Equal(t, 2, m.SentenceCount)
	assert.Equal(t, 1, m.LineCount)
	assert.Equal(t, "the", m.TopWords[0].Word)
}

func TestTextUTF8BOMStripped(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi")...)
	m, err := Text("/data/in/bom.txt", content, insight.Options{})
	require.NoError(t, err)

	assert.Equal(t, "utf-8", m.Encoding)
	assert.Equal(t, 2, m.CharCount)
	assert.Equal(t, 1, m.WordCount)
}

func TestTextUTF16(t *testing.T) {
	le := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	m, err := Text("/data/in/le.txt", le, insight.Options{})
	require.NoError(t, err)
	assert.Equal(t, "utf-16le", m.Encoding)
	assert.Equal(t, 2, m.CharCount)

	be := []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}
	m, err = Text("/data/in/be.txt", be, insight.Options{})
	require.NoError(t, err)
	assert.Equal(t, "utf-16be", m.Encoding)
	assert.Equal(t, 2, m.CharCount)
}

func TestTextLatin1Fallback(t *testing.T) {
	m, err := Text("/data/in/legacy.txt", []byte{'c', 'a', 'f', 0xE9}, insight.Options{})
	require.NoError(t, err)

	assert.Equal(t, "latin-1", m.Encoding)
	assert.Equal(t, 4, m.CharCount)
	require.Len(t, m.TopWords, 1)
	assert.Equal(t, "café", m.TopWords[0].Word)
}

func TestTextBinaryContentFails(t *testing.T) {
	// 0xFF is never valid UTF-8 and the NUL share trips the binary check
	m, err := Text("/data/in/blob.txt", bytes.Repeat([]byte{0xFF, 0x00}, 64), insight.Options{})
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Equal(t, finerrors.StageText, finerrors.StageOf(err))
}

func TestTextEmpty(t *testing.T) {
	m, err := Text("/data/in/empty.txt", nil, insight.Options{})
	require.NoError(t, err)

	assert.Equal(t, "utf-8", m.Encoding)
	assert.Zero(t, m.CharCount)
	assert.Zero(t, m.WordCount)
	assert.Zero(t, m.SentenceCount)
}
