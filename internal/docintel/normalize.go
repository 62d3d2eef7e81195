package docintel

import (
	"strconv"
	"strings"

	"github.com/politrack-jp/disclosure-ocr/constants"
)

// normalize folds the heterogeneous API response into one of the two result
// shapes. Document-level fields win; a response with no documents degrades to
// page-level text.
func normalize(res analyzeResult) RecognitionResult {
	if len(res.Documents) > 0 {
		docs := make([]DocumentRecord, 0, len(res.Documents))
		for _, d := range res.Documents {
			docs = append(docs, normalizeDocument(d))
		}
		return RecognitionResult{Kind: KindStructured, Documents: docs}
	}

	pages := make([]PageRecord, 0, len(res.Pages))
	var texts []string
	for _, p := range res.Pages {
		lines := make([]string, 0, len(p.Lines))
		for _, l := range p.Lines {
			lines = append(lines, l.Content)
		}
		text := strings.TrimSpace(strings.Join(lines, "\n"))
		pages = append(pages, PageRecord{PageNumber: p.PageNumber, Text: text})
		texts = append(texts, text)
	}
	return RecognitionResult{
		Kind:     KindTextPages,
		FullText: strings.TrimSpace(strings.Join(texts, "\n")),
		Pages:    pages,
	}
}

func normalizeDocument(d apiDocument) DocumentRecord {
	rec := DocumentRecord{
		DocType: d.DocType,
		Fields:  make(map[string]*string, len(d.Fields)+1),
	}
	for name, f := range d.Fields {
		switch {
		case f.ValueString != nil:
			v := *f.ValueString
			rec.Fields[name] = &v
		case f.Content != "":
			v := f.Content
			rec.Fields[name] = &v
		default:
			rec.Fields[name] = nil
		}

		// The receipt-region field's value is its location, not its text:
		// serialize the polygon under the reserved pseudo-field name.
		if name == constants.ReceiptAreaField && len(f.BoundingRegions) > 0 {
			if poly := serializePolygon(f.BoundingRegions[0].Polygon); poly != "" {
				rec.Fields[constants.ReceiptAreaField] = &poly
			}
		}
	}
	return rec
}

func serializePolygon(polygon []float64) string {
	if len(polygon) == 0 {
		return ""
	}
	parts := make([]string, 0, len(polygon))
	for _, v := range polygon {
		parts = append(parts, strconv.Itoa(int(v)))
	}
	return strings.Join(parts, ",")
}
