package crop

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png" // scanned pages arrive as PNG too
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const jpegQuality = 95

// Cropper cuts receipt regions out of scanned page images and persists them
// as JPEG files under a designated output folder.
type Cropper struct {
	logger *slog.Logger
}

func NewCropper(logger *slog.Logger) *Cropper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cropper{logger: logger}
}

// Extract crops the bounding rectangle of box from the image at srcPath and
// writes it to outDir as {base}_receipt_{docIndex}.jpg. The output folder is
// created if absent. Returns the written path.
func (c *Cropper) Extract(srcPath string, box BoundingBox, outDir string, docIndex int) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			c.logger.Warn("crop.source_close_error", "path", srcPath, "error", cerr)
		}
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode source image: %w", err)
	}

	rect := box.Rect().Intersect(img.Bounds())
	if rect.Empty() {
		return "", fmt.Errorf("receipt region %v is degenerate or outside image bounds %v", box.Rect(), img.Bounds())
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	outPath := filepath.Join(outDir, fmt.Sprintf("%s_receipt_%d.jpg", base, docIndex))

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create crop file: %w", err)
	}
	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("encode crop: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close crop file: %w", err)
	}

	c.logger.Debug("crop.ok",
		"source", srcPath,
		"out", outPath,
		"rect", rect.String(),
	)
	return outPath, nil
}
