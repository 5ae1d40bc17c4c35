package analyze

import (
	"bytes"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/report"
)

// Image reads container metadata and then verifies that the pixel data
// fully decodes. Any decode failure yields zeroed metrics with Valid=false;
// a container with a good header but truncated body is invalid, not fatal.
func Image(path string, content []byte) (*report.ImageMetrics, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return &report.ImageMetrics{}, finerrors.NewParseError(finerrors.StageImage, path, err)
	}

	if _, _, err := image.Decode(bytes.NewReader(content)); err != nil {
		return &report.ImageMetrics{}, finerrors.NewParseError(finerrors.StageImage, path, err)
	}

	return &report.ImageMetrics{
		Width:     cfg.Width,
		Height:    cfg.Height,
		ColorMode: colorModeName(cfg.ColorModel),
		Format:    format,
		Valid:     true,
	}, nil
}

func colorModeName(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "paletted"
	}
	switch m {
	case color.RGBAModel:
		return "rgba"
	case color.NRGBAModel:
		return "nrgba"
	case color.RGBA64Model:
		return "rgba64"
	case color.NRGBA64Model:
		return "nrgba64"
	case color.GrayModel:
		return "gray"
	case color.Gray16Model:
		return "gray16"
	case color.AlphaModel:
		return "alpha"
	case color.CMYKModel:
		return "cmyk"
	case color.YCbCrModel:
		return "ycbcr"
	}
	return "unknown"
}
