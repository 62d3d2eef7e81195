package enrich

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

	"github.com/politrack-jp/disclosure-ocr/internal/llm"
)

const (
	// Sentinels surfaced to operators in exported rows.
	SentinelUnknown = "不明"
	SentinelError   = "エラー"

	enrichmentDateLayout = "2006-01-02 15:04:05"
)

// Payee identifies one enrichment subject. Keys are exact strings; no
// normalization or fuzzy matching is applied.
type Payee struct {
	Name    string
	Address string
}

// Config for the enrichment service.
type Config struct {
	APIKey      string
	BaseURL     string // default api.openai.com
	Model       string // e.g. "gpt-4o-mini"
	Temperature float32
	Timeout     time.Duration
	CacheTTL    time.Duration
	Pacing      time.Duration // spacing between sequential BatchEnrich calls
}

// Service asks a language model for public business-profile data on a payee,
// read-through cached for the cache TTL.
type Service struct {
	cfg    Config
	client *openai.Client
	cache  *Cache
	pacer  *Pacer
	logger *slog.Logger
}

func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.Pacing == 0 {
		cfg.Pacing = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Service{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		cache:  NewCache(cfg.CacheTTL),
		pacer:  NewPacer(cfg.Pacing),
		logger: logger,
	}
}

// Enrich returns business-profile data for a payee. Cache hits within the TTL
// issue no external call and are not refreshed. Failures degrade into a
// record with BusinessType "エラー" and the cause in Notes, and are never
// cached so the next call retries.
func (s *Service) Enrich(ctx context.Context, name, address string, useCache bool) Record {
	key := name + "_" + address
	if useCache {
		if rec, ok := s.cache.Get(key); ok {
			s.logger.Info("enrich.cache_hit", "payee", name)
			return rec
		}
	}

	rid := uuid.New().String()
	start := time.Now()

	rec, err := s.requestProfile(ctx, rid, name, address)
	if err != nil {
		s.logger.Error("enrich.failed",
			"req_id", rid,
			"payee", name,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Record{
			BusinessType:        SentinelError,
			BusinessDescription: "情報取得エラー",
			Notes:               err.Error(),
			EnrichmentDate:      time.Now().Format(enrichmentDateLayout),
		}
	}

	s.cache.Put(key, rec)
	s.logger.Info("enrich.ok",
		"req_id", rid,
		"payee", name,
		"business_type", rec.BusinessType,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec
}

func (s *Service) requestProfile(ctx context.Context, rid, name, address string) (Record, error) {
	addr := address
	if addr == "" {
		addr = SentinelUnknown
	}

	var prompt strings.Builder
	prompt.WriteString("以下の企業・団体について、公知の情報を基に詳細情報を提供してください。\n")
	prompt.WriteString("推測や不確実な情報は含めないでください。\n\n")
	prompt.WriteString("企業・団体名: " + name + "\n")
	prompt.WriteString("住所: " + addr + "\n\n")
	prompt.WriteString(`以下の形式でJSONで回答してください：
{
  "business_type": "業種（例：飲食業、小売業、サービス業等）",
  "business_description": "事業内容の簡潔な説明",
  "establishment_year": "設立年（分かる場合のみ、不明なら空文字）",
  "capital": "資本金（分かる場合のみ、不明なら空文字）",
  "employees": "従業員数（分かる場合のみ、不明なら空文字）",
  "website": "ウェブサイト（分かる場合のみ、不明なら空文字）",
  "notes": "その他の注記事項"
}`)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   500,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "あなたは企業情報の専門家です。確実な情報のみを提供してください。",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt.String(),
			},
		},
	})
	if err != nil {
		return Record{}, err
	}
	if len(resp.Choices) == 0 {
		return Record{}, fmt.Errorf("no choices in model response")
	}
	content := []byte(strings.TrimSpace(resp.Choices[0].Message.Content))

	if err := llm.ValidateJSONAgainstSchema(llm.BuildBusinessProfileJSONSchema(), content); err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(content, &rec); err != nil {
		return Record{}, err
	}
	if rec.BusinessType == "" {
		rec.BusinessType = SentinelUnknown
	}
	rec.EnrichmentDate = time.Now().Format(enrichmentDateLayout)
	return rec, nil
}

// BatchEnrich enriches payees one at a time with rate-limit pacing between
// calls. batchSize shapes the iteration only; there is no parallelism.
func (s *Service) BatchEnrich(ctx context.Context, payees []Payee, batchSize int) []Record {
	if batchSize <= 0 {
		batchSize = 10
	}
	results := make([]Record, 0, len(payees))
	for i := 0; i < len(payees); i += batchSize {
		end := i + batchSize
		if end > len(payees) {
			end = len(payees)
		}
		for _, p := range payees[i:end] {
			s.pacer.WaitTurn()
			results = append(results, s.Enrich(ctx, p.Name, p.Address, true))
		}
	}
	return results
}

// CacheStats reports the enrichment cache census.
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}
