package batch

import (
	"strings"
	"testing"

	"github.com/politrack-jp/disclosure-ocr/internal/vision"
)

func sampleAnalysis() vision.Analysis {
	return vision.Analysis{
		PayeeName:               "株式会社テスト",
		PayeeAddress:            "東京都千代田区1-1",
		PaymentDate:             "2024年1月15日",
		PaymentPurpose:          "会合費",
		ValidityScore:           "0.8",
		ValidityReason:          "妥当",
		PayeeDetail:             "飲食店",
		TransparencyScore:       "0.9",
		AlternativeSuggestion:   "",
		NewsValuePotentialScore: "0.1",
		NewsValueReason:         "特になし",
	}
}

func aiColumns(r *Row) []string {
	var cols []string
	for _, c := range r.Columns() {
		if strings.HasPrefix(c, "AI__") {
			cols = append(cols, c)
		}
	}
	return cols
}

func TestMergeAnalysisBaseFields(t *testing.T) {
	r := NewRow()
	mergeAnalysis(r, sampleAnalysis(), AIModeNone, nil)

	for col, want := range map[string]string{
		"payee_name":             "株式会社テスト",
		"payee_address":          "東京都千代田区1-1",
		"payment_date_extracted": "2024年1月15日",
		"payment_purpose":        "会合費",
	} {
		if v, _ := r.Get(col); v != want {
			t.Fatalf("%s = %q, want %q", col, v, want)
		}
	}
}

func TestMergeAnalysisModes(t *testing.T) {
	allExtras := []string{
		"AI__validity_score",
		"AI__validity_reason",
		"AI__payee_detail",
		"AI__transparency_score",
		"AI__alternative_suggestion",
		"AI__news_value_potential_score",
		"AI__news_value_potential_score_reason",
	}

	tests := []struct {
		name    string
		mode    AIMode
		columns []string
		want    []string
	}{
		{"all", AIModeAll, nil, allExtras},
		{"none", AIModeNone, nil, nil},
		{
			"exclude",
			AIModeExclude,
			[]string{"validity_reason", "alternative_suggestion"},
			[]string{
				"AI__validity_score",
				"AI__payee_detail",
				"AI__transparency_score",
				"AI__news_value_potential_score",
				"AI__news_value_potential_score_reason",
			},
		},
		{
			"include",
			AIModeInclude,
			[]string{"validity_score", "news_value_potential_score"},
			[]string{"AI__validity_score", "AI__news_value_potential_score"},
		},
		{"include empty list", AIModeInclude, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRow()
			mergeAnalysis(r, sampleAnalysis(), tt.mode, tt.columns)

			got := aiColumns(r)
			if len(got) != len(tt.want) {
				t.Fatalf("AI columns = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("AI columns = %v, want %v", got, tt.want)
				}
			}
			// Base fields always merge regardless of mode.
			if v, _ := r.Get("payee_name"); v != "株式会社テスト" {
				t.Fatalf("payee_name = %q", v)
			}
		})
	}
}

func TestMergeAnalysisValues(t *testing.T) {
	r := NewRow()
	mergeAnalysis(r, sampleAnalysis(), AIModeAll, nil)

	if v, _ := r.Get("AI__transparency_score"); v != "0.9" {
		t.Fatalf("AI__transparency_score = %q", v)
	}
	if v, _ := r.Get("AI__news_value_potential_score_reason"); v != "特になし" {
		t.Fatalf("reason = %q", v)
	}
}
