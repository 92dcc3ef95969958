// Package avatar validates and shrinks images picked as profile avatars
// before they are uploaded.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/dmitrijs2005/hrmis/internal/common"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Quality is the JPEG quality of normalized avatars.
const Quality = 85

// MaxPixels caps the decoded size of an accepted image.
const MaxPixels = 40_000_000

var errNotImage = common.NewValidationError("You must select an image to upload.")

// Normalize checks that data is an image of at most MaxPixels and scales it down so that
// neither side exceeds maxSide, re-encoding it as JPEG. It returns the
// bytes to upload and their file extension. With maxSide <= 0 the input is
// returned as is, with the extension of its detected format.
func Normalize(data []byte, maxSide int) ([]byte, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", errNotImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", errNotImage
	}
	if maxSide <= 0 {
		return data, extension(format), nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errNotImage
	}

	w, h := fit(cfg.Width, cfg.Height, maxSide)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha; flatten onto white.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, "", fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), "jpg", nil
}

// fit scales w x h to fit inside a maxSide square, keeping the aspect ratio
// and never enlarging.
func fit(w, h, maxSide int) (int, int) {
	if w <= maxSide && h <= maxSide {
		return w, h
	}
	if w >= h {
		nh := h * maxSide / w
		return maxSide, max(nh, 1)
	}
	nw := w * maxSide / h
	return max(nw, 1), maxSide
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
