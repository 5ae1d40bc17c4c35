package analyze

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	finerrors "github.com/finspect/finspect/internal/errors"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(40 * x), G: 90, B: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImagePNG(t *testing.T) {
	m, err := Image("/data/in/chart.png", encodePNG(t, 3, 2))
	require.NoError(t, err)

	assert.True(t, m.Valid)
	assert.Equal(t, 3, m.Width)
	assert.Equal(t, 2, m.Height)
	assert.Equal(t, "png", m.Format)
	assert.Equal(t, "nrgba", m.ColorMode)
}

func TestImageGIF(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), []color.Color{
		color.White, color.Black,
	})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))

	m, err := Image("/data/in/anim.gif", buf.Bytes())
	require.NoError(t, err)
	assert.True(t, m.Valid)
	assert.Equal(t, "gif", m.Format)
	assert.Equal(t, "paletted", m.ColorMode)
	assert.Equal(t, 4, m.Width)
}

func TestImageJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))

	m, err := Image("/data/in/photo.jpg", buf.Bytes())
	require.NoError(t, err)
	assert.True(t, m.Valid)
	assert.Equal(t, "jpeg", m.Format)
	assert.Equal(t, "ycbcr", m.ColorMode)
}

func TestImageTruncatedBody(t *testing.T) {
	full := encodePNG(t, 16, 16)
	m, err := Image("/data/in/cut.png", full[:len(full)-10])
	require.Error(t, err)

	assert.False(t, m.Valid)
	assert.Zero(t, m.Width)
	assert.Zero(t, m.Height)
	assert.Empty(t, m.Format)
	assert.Equal(t, finerrors.StageImage, finerrors.StageOf(err))
}

func TestImageGarbage(t *testing.T) {
	m, err := Image("/data/in/fake.png", []byte("not an image at all"))
	require.Error(t, err)
	assert.False(t, m.Valid)
	assert.Equal(t, finerrors.StageImage, finerrors.StageOf(err))
}

func TestImageEmpty(t *testing.T) {
	m, err := Image("/data/in/zero.png", nil)
	require.Error(t, err)
	assert.False(t, m.Valid)
}
