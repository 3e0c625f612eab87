package blogfs

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// defaultCoverType is served when the cover format cannot be sniffed.
	defaultCoverType = "image/jpeg"
	jpegQuality      = 80
	maxCoverPixels   = 40 << 20
)

var errCoverTooLarge = errors.New("cover too large to resize")

var coverTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

// coverContentType sniffs the image format from the file header.
func coverContentType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return "image/svg+xml"
	}
	f, err := os.Open(path)
	if err != nil {
		return defaultCoverType
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return defaultCoverType
	}
	if ct, ok := coverTypes[format]; ok {
		return ct
	}
	return defaultCoverType
}

// scaleCover decodes the image at path and, when it is wider than width,
// scales it down proportionally and encodes it as JPEG. It reports false
// when the original is already narrow enough. Images above maxCoverPixels
// are rejected before their pixels are decoded.
func scaleCover(path string, width int) ([]byte, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, false, fmt.Errorf("decode image config: %w", err)
	}
	if width >= cfg.Width {
		return nil, false, nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxCoverPixels {
		return nil, false, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, errCoverTooLarge)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, false, err
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if width >= w {
		return nil, false, nil
	}

	newH := h * width / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, false, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), true, nil
}
