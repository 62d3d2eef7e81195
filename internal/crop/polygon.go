package crop

import (
	"image"
	"regexp"
	"strconv"
	"strings"
)

// BoundingBox is the quadrilateral a recognition model drew around a receipt
// region. The four corners are not necessarily axis-aligned.
type BoundingBox [4]image.Point

// Rect returns the minimal axis-aligned rectangle enclosing the four corners.
// Polygon rotation is deliberately ignored; this is a bounding crop, not a
// perspective correction.
func (b BoundingBox) Rect() image.Rectangle {
	left, top := b[0].X, b[0].Y
	right, bottom := b[0].X, b[0].Y
	for _, p := range b[1:] {
		if p.X < left {
			left = p.X
		}
		if p.X > right {
			right = p.X
		}
		if p.Y < top {
			top = p.Y
		}
		if p.Y > bottom {
			bottom = p.Y
		}
	}
	return image.Rect(left, top, right, bottom)
}

var pointCoordRe = regexp.MustCompile(`[xy]=\s*(-?\d+(?:\.\d+)?)`)

// ParsePolygon decodes the textual polygon descriptor attached to a receipt
// region. Two encodings are accepted: a flat comma-separated list of 8
// integers, and a point-descriptor form embedding x=/y= pairs. Anything else
// yields ok=false; callers skip cropping for that document, never abort.
func ParsePolygon(s string) (BoundingBox, bool) {
	var box BoundingBox

	if strings.Contains(s, "x=") {
		matches := pointCoordRe.FindAllStringSubmatch(s, -1)
		if len(matches) != 8 {
			return box, false
		}
		for i, m := range matches {
			f, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return box, false
			}
			if i%2 == 0 {
				box[i/2].X = int(f)
			} else {
				box[i/2].Y = int(f)
			}
		}
		return box, true
	}

	tokens := strings.Split(s, ",")
	if len(tokens) != 8 {
		return box, false
	}
	for i, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return box, false
		}
		if i%2 == 0 {
			box[i/2].X = n
		} else {
			box[i/2].Y = n
		}
	}
	return box, true
}
