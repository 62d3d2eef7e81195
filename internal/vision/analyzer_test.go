package vision

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCrop(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "page_1_receipt_0.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	// PNG content behind a .jpg name still decodes via image.Decode.
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 60))); err != nil {
		t.Fatal(err)
	}
	return path
}

func analysisBody(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	inner, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": string(inner)}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func fullAnalysisFields() map[string]string {
	return map[string]string{
		"payee_name":                        "株式会社テスト",
		"payee_address":                     "群馬県前橋市1-2-3",
		"payment_date":                      "2024年1月15日",
		"payment_purpose":                   "会合費",
		"validity_score":                    "0.8",
		"validity_reason":                   "用途と金額が妥当",
		"payee_detail":                      "",
		"transparency_score":                "0.9",
		"alternative_suggestion":            "",
		"news_value_potential_score":        "0.1",
		"news_value_potential_score_reason": "特段の異常なし",
	}
}

func TestAnalyzeExtractsFields(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			for _, part := range req.Messages[0].Content {
				if part.Type == "text" {
					gotPrompt = part.Text
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(analysisBody(t, fullAnalysisFields()))
	}))
	defer srv.Close()

	a := NewAnalyzer(Config{APIKey: "k", BaseURL: srv.URL + "/v1"}, nil, nil)
	result := a.Analyze(context.Background(), writeCrop(t), "政治活動用の会合", "¥12,000")

	if result.PayeeName != "株式会社テスト" {
		t.Fatalf("payee = %q", result.PayeeName)
	}
	if result.ValidityScore != "0.8" || result.TransparencyScore != "0.9" {
		t.Fatalf("scores = %q / %q", result.ValidityScore, result.TransparencyScore)
	}
	if !strings.Contains(gotPrompt, "12000円") {
		t.Fatal("parsed amount missing from prompt")
	}
	if !strings.Contains(gotPrompt, "政治活動用の会合") {
		t.Fatal("activity description missing from prompt")
	}
}

func TestAnalyzeFailureYieldsSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewAnalyzer(Config{APIKey: "k", BaseURL: srv.URL + "/v1"}, nil, nil)
	result := a.Analyze(context.Background(), writeCrop(t), "", "")

	for name, v := range map[string]string{
		"payee_name":                 result.PayeeName,
		"payee_address":              result.PayeeAddress,
		"payment_date":               result.PaymentDate,
		"payment_purpose":            result.PaymentPurpose,
		"validity_score":             result.ValidityScore,
		"validity_reason":            result.ValidityReason,
		"payee_detail":               result.PayeeDetail,
		"transparency_score":         result.TransparencyScore,
		"alternative_suggestion":     result.AlternativeSuggestion,
		"news_value_potential_score": result.NewsValuePotentialScore,
		"news_value_reason":          result.NewsValueReason,
	} {
		if v != "エラー" {
			t.Fatalf("%s = %q, want エラー", name, v)
		}
	}
}

func TestAnalyzeUnreadableImageYieldsSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no model call expected for unreadable image")
	}))
	defer srv.Close()

	a := NewAnalyzer(Config{APIKey: "k", BaseURL: srv.URL + "/v1"}, nil, nil)
	result := a.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), "", "")
	if result.PayeeName != "エラー" {
		t.Fatalf("payee = %q, want エラー", result.PayeeName)
	}
}

func TestBuildAnalysisPromptAmountUnknown(t *testing.T) {
	prompt := buildAnalysisPrompt("", "金額記載なし")
	if !strings.Contains(prompt, "報告された支出金額: 不明") {
		t.Fatal("unparsable amount should surface as 不明")
	}
}
