package constants

import "strings"

// AllowedExtensions holds the file extensions the batch picks up from an
// input folder. Extension matching is case-insensitive.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// ReceiptAreaField is the reserved field name under which the recognition
// client serializes the receipt-region polygon.
const ReceiptAreaField = "receipt_image_area"

// ReceiptImagesDir is the subfolder (under the input folder) where cropped
// receipt images are written.
const ReceiptImagesDir = "receipt_images"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExt reports whether a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
