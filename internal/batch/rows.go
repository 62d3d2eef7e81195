package batch

import (
	"github.com/politrack-jp/disclosure-ocr/internal/vision"
)

// AIMode selects which analysis columns reach the output table.
type AIMode int

const (
	// AIModeAll writes every AI__ column.
	AIModeAll AIMode = 1
	// AIModeNone writes no AI__ columns (the four base fields still merge).
	AIModeNone AIMode = 2
	// AIModeExclude writes every AI__ column except the listed ones.
	AIModeExclude AIMode = 3
	// AIModeInclude writes only the listed AI__ columns.
	AIModeInclude AIMode = 4
)

const aiColumnPrefix = "AI__"

// analysisExtra pairs an output column name with its value accessor, in the
// stable order the columns appear when emitted.
var analysisExtras = []struct {
	name string
	get  func(vision.Analysis) string
}{
	{"validity_score", func(a vision.Analysis) string { return a.ValidityScore }},
	{"validity_reason", func(a vision.Analysis) string { return a.ValidityReason }},
	{"payee_detail", func(a vision.Analysis) string { return a.PayeeDetail }},
	{"transparency_score", func(a vision.Analysis) string { return a.TransparencyScore }},
	{"alternative_suggestion", func(a vision.Analysis) string { return a.AlternativeSuggestion }},
	{"news_value_potential_score", func(a vision.Analysis) string { return a.NewsValuePotentialScore }},
	{"news_value_potential_score_reason", func(a vision.Analysis) string { return a.NewsValueReason }},
}

// mergeAnalysis folds a receipt analysis into a row. The four base fields
// land unprefixed (they belong to the priority prefix); the scoring extras go
// under AI__ names subject to the column mode. modeColumns carries the
// exclude list for AIModeExclude and the include list for AIModeInclude,
// named without the AI__ prefix.
func mergeAnalysis(row *Row, a vision.Analysis, mode AIMode, modeColumns []string) {
	row.Set("payee_name", a.PayeeName)
	row.Set("payee_address", a.PayeeAddress)
	row.Set("payment_date_extracted", a.PaymentDate)
	row.Set("payment_purpose", a.PaymentPurpose)

	if mode == AIModeNone {
		return
	}

	listed := make(map[string]struct{}, len(modeColumns))
	for _, c := range modeColumns {
		listed[c] = struct{}{}
	}

	for _, extra := range analysisExtras {
		_, inList := listed[extra.name]
		switch mode {
		case AIModeExclude:
			if inList {
				continue
			}
		case AIModeInclude:
			if !inList {
				continue
			}
		}
		row.Set(aiColumnPrefix+extra.name, extra.get(a))
	}
}
