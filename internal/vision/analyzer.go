package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/politrack-jp/disclosure-ocr/internal/enrich"
	"github.com/politrack-jp/disclosure-ocr/internal/llm"
)

// Analysis is the vision model's reading of one cropped receipt plus three
// evaluation scores. Every field degrades to the "エラー" sentinel when the
// whole analyze flow fails.
type Analysis struct {
	PayeeName                   string `json:"payee_name"`
	PayeeAddress                string `json:"payee_address"`
	PaymentDate                 string `json:"payment_date"`
	PaymentPurpose              string `json:"payment_purpose"`
	ValidityScore               string `json:"validity_score"`
	ValidityReason              string `json:"validity_reason"`
	PayeeDetail                 string `json:"payee_detail"`
	TransparencyScore           string `json:"transparency_score"`
	AlternativeSuggestion       string `json:"alternative_suggestion"`
	NewsValuePotentialScore     string `json:"news_value_potential_score"`
	NewsValueReason             string `json:"news_value_potential_score_reason"`
}

// Config for the vision analyzer.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string // vision-capable, e.g. "gpt-4o-mini"
	Temperature float32
	Timeout     time.Duration
}

// Analyzer extracts payee information from cropped receipt images and scores
// the expenditure, blending in business-profile enrichment when configured.
type Analyzer struct {
	cfg      Config
	client   *openai.Client
	enricher *enrich.Service
	logger   *slog.Logger
}

// NewAnalyzer builds an Analyzer. enricher may be nil; payee details then
// stay whatever the vision model produced.
func NewAnalyzer(cfg Config, enricher *enrich.Service, logger *slog.Logger) *Analyzer {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Analyzer{
		cfg:      cfg,
		client:   openai.NewClientWithConfig(clientCfg),
		enricher: enricher,
		logger:   logger,
	}
}

// Analyze runs the vision model on a cropped receipt. activityDescription and
// amount give the model context; amount is parsed into yen and included only
// when parseable. Any failure returns an Analysis with every field "エラー".
func (a *Analyzer) Analyze(ctx context.Context, imagePath, activityDescription, amount string) Analysis {
	rid := uuid.New().String()
	start := time.Now()

	result, err := a.analyze(ctx, imagePath, activityDescription, amount)
	if err != nil {
		a.logger.Error("vision.analyze_failed",
			"req_id", rid,
			"image", imagePath,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return errorAnalysis()
	}

	a.mergePayeeDetail(ctx, &result)

	a.logger.Info("vision.analyze_ok",
		"req_id", rid,
		"image", imagePath,
		"payee", result.PayeeName,
		"validity", result.ValidityScore,
		"transparency", result.TransparencyScore,
		"news_value", result.NewsValuePotentialScore,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result
}

func (a *Analyzer) analyze(ctx context.Context, imagePath, activityDescription, amount string) (Analysis, error) {
	dataURL, err := encodeImage(imagePath)
	if err != nil {
		return Analysis{}, err
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		MaxTokens:   1000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: buildAnalysisPrompt(activityDescription, amount),
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return Analysis{}, err
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, fmt.Errorf("no choices in model response")
	}
	content := []byte(strings.TrimSpace(resp.Choices[0].Message.Content))

	if err := llm.ValidateJSONAgainstSchema(llm.BuildReceiptAnalysisJSONSchema(), content); err != nil {
		return Analysis{}, err
	}

	var result Analysis
	if err := json.Unmarshal(content, &result); err != nil {
		return Analysis{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return result, nil
}

// mergePayeeDetail replaces the model's own payee_detail with a slash-joined
// business-profile summary when enrichment yields anything usable.
func (a *Analyzer) mergePayeeDetail(ctx context.Context, result *Analysis) {
	if a.enricher == nil {
		return
	}
	name := result.PayeeName
	if name == "" || name == enrich.SentinelUnknown || name == enrich.SentinelError {
		return
	}

	rec := a.enricher.Enrich(ctx, name, result.PayeeAddress, true)

	var parts []string
	for _, v := range []string{rec.BusinessType, rec.BusinessDescription, rec.EstablishmentYear, rec.Website} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		result.PayeeDetail = strings.Join(parts, "/")
	}
}

func buildAnalysisPrompt(activityDescription, amount string) string {
	var b strings.Builder
	b.WriteString("この画像は政治資金収支報告書に添付された領収書です。以下の情報を抽出・評価してください。日本語で回答してください。\n")
	b.WriteString("情報が見つからない場合は「不明」と回答してください。\n\n")

	if activityDescription != "" {
		b.WriteString("支出の活動内容: " + activityDescription + "\n")
	}
	if amount != "" {
		if yen, ok := parseAmount(amount); ok {
			b.WriteString(fmt.Sprintf("報告された支出金額: %d円\n", yen))
		} else {
			b.WriteString("報告された支出金額: 不明\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(`抽出項目:
1. 支出先名（店舗名・会社名）
2. 支出先住所
3. 支出日（YYYY年MM月DD日形式）
4. 支払い用途（何のための支払いか）

評価項目:
- validity_score: 支出の妥当性。明確な法令違反は -1。それ以外は用途・金額・支出先の適切さに応じて 0.0〜1.0。
  金額の目安: 飲食は一人あたり1万円以内、事務用品は10万円以内、交通費は実費相当、会合費は規模相当。
  目安を大きく超える場合や用途と支出先が噛み合わない場合はスコアを下げること。
- transparency_score: 領収書の記載の完全性・具体性に応じて 0.0〜1.0。但し書き・日付・金額・発行者が揃うほど高い。
- news_value_potential_score: 報道価値（スキャンダル性・異常性）の可能性に応じて 0.0〜1.0。

以下の11項目を厳密なJSONで回答してください。スコアも文字列で返してください:
{
  "payee_name": "支出先名",
  "payee_address": "支出先住所",
  "payment_date": "支出日",
  "payment_purpose": "支払い用途",
  "validity_score": "-1または0.0〜1.0",
  "validity_reason": "スコアの理由",
  "payee_detail": "支出先に関する補足",
  "transparency_score": "0.0〜1.0",
  "alternative_suggestion": "より適切な支出方法の提案（あれば）",
  "news_value_potential_score": "0.0〜1.0",
  "news_value_potential_score_reason": "スコアの理由"
}`)
	return b.String()
}

func errorAnalysis() Analysis {
	return Analysis{
		PayeeName:               enrich.SentinelError,
		PayeeAddress:            enrich.SentinelError,
		PaymentDate:             enrich.SentinelError,
		PaymentPurpose:          enrich.SentinelError,
		ValidityScore:           enrich.SentinelError,
		ValidityReason:          enrich.SentinelError,
		PayeeDetail:             enrich.SentinelError,
		TransparencyScore:       enrich.SentinelError,
		AlternativeSuggestion:   enrich.SentinelError,
		NewsValuePotentialScore: enrich.SentinelError,
		NewsValueReason:         enrich.SentinelError,
	}
}
