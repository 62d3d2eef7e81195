package docintel

import (
	"testing"

	"github.com/politrack-jp/disclosure-ocr/constants"
)

func strptr(s string) *string { return &s }

func TestNormalizeStructured(t *testing.T) {
	res := analyzeResult{
		Documents: []apiDocument{
			{
				DocType: "custom:form-6-5",
				Fields: map[string]apiField{
					"支出の目的": {Type: "string", ValueString: strptr("会合費"), Content: "会合費"},
					"金額":    {Type: "string", Content: "12,000"},
					"備考":    {Type: "string"},
				},
			},
		},
		// pages present too; documents must win
		Pages: []apiPage{{PageNumber: 1, Lines: []apiLine{{Content: "ignored"}}}},
	}

	got := normalize(res)
	if got.Kind != KindStructured {
		t.Fatalf("kind = %v, want structured", got.Kind)
	}
	if len(got.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(got.Documents))
	}
	doc := got.Documents[0]
	if doc.DocType != "custom:form-6-5" {
		t.Fatalf("docType = %q", doc.DocType)
	}
	if v := doc.Fields["支出の目的"]; v == nil || *v != "会合費" {
		t.Fatalf("valueString precedence broken: %v", v)
	}
	if v := doc.Fields["金額"]; v == nil || *v != "12,000" {
		t.Fatalf("content fallback broken: %v", v)
	}
	if v, ok := doc.Fields["備考"]; !ok || v != nil {
		t.Fatalf("empty field should be present and nil, got %v ok=%v", v, ok)
	}
}

func TestNormalizeReceiptAreaPolygon(t *testing.T) {
	res := analyzeResult{
		Documents: []apiDocument{
			{
				Fields: map[string]apiField{
					constants.ReceiptAreaField: {
						Type: "string",
						BoundingRegions: []apiBoundingRegion{
							{PageNumber: 1, Polygon: []float64{10.7, 20.2, 110.9, 20.4, 110.1, 220.8, 10.5, 220.3}},
						},
					},
				},
			},
		},
	}

	got := normalize(res)
	v := got.Documents[0].Fields[constants.ReceiptAreaField]
	if v == nil {
		t.Fatal("receipt area pseudo-field missing")
	}
	if want := "10,20,110,20,110,220,10,220"; *v != want {
		t.Fatalf("got %q want %q", *v, want)
	}
}

func TestNormalizeTextPagesFallback(t *testing.T) {
	res := analyzeResult{
		Pages: []apiPage{
			{PageNumber: 1, Lines: []apiLine{{Content: "一行目"}, {Content: "二行目"}}},
			{PageNumber: 2, Lines: []apiLine{{Content: "次ページ"}}},
		},
	}

	got := normalize(res)
	if got.Kind != KindTextPages {
		t.Fatalf("kind = %v, want text pages", got.Kind)
	}
	if len(got.Documents) != 0 {
		t.Fatalf("text-pages variant must carry no documents, got %d", len(got.Documents))
	}
	if len(got.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(got.Pages))
	}
	if got.Pages[0].Text != "一行目\n二行目" {
		t.Fatalf("page text = %q", got.Pages[0].Text)
	}
	if got.FullText != "一行目\n二行目\n次ページ" {
		t.Fatalf("full text = %q", got.FullText)
	}
}
