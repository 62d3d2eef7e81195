package vision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // crops are JPEG, but callers may hand us PNG scans directly
	"os"

	xdraw "golang.org/x/image/draw"
)

const (
	maxEdge       = 1024
	encodeQuality = 85
	dataURLPrefix = "data:image/jpeg;base64,"
)

// encodeImage loads an image, fits it within 1024x1024 preserving aspect
// ratio (never upscaling), flattens any alpha onto a white background,
// re-encodes as JPEG and returns a base64 data URL.
func encodeImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return "", fmt.Errorf("empty image %dx%d", w, h)
	}

	tw, th := fitWithin(w, h, maxEdge)

	// White background absorbs transparency; JPEG has no alpha channel.
	flat := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	if tw == w && th == h {
		xdraw.Draw(flat, flat.Bounds(), img, bounds.Min, xdraw.Over)
	} else {
		xdraw.CatmullRom.Scale(flat, flat.Bounds(), img, bounds, xdraw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: encodeQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// fitWithin scales (w,h) down to fit a max×max square, never up.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		return max, h * max / w
	}
	return w * max / h, max
}
