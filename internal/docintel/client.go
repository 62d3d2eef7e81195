package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/politrack-jp/disclosure-ocr/constants"
	"github.com/politrack-jp/disclosure-ocr/internal/common"
)

// ModelResolver maps a form type to the recognition model trained for it.
type ModelResolver interface {
	ResolveModel(formType string) (string, error)
}

// Config for the recognition client.
type Config struct {
	Endpoint     string
	APIKey       string
	APIVersion   string        // default 2023-07-31
	PollInterval time.Duration // default 2s
	Timeout      time.Duration // whole submit+poll budget, default 5m
}

type Client struct {
	cfg         Config
	resolver    ModelResolver
	httpClient  *http.Client
	retryPolicy common.RetryPolicy
	logger      *slog.Logger
}

func NewClient(cfg Config, resolver ModelResolver, logger *slog.Logger) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-07-31"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:         cfg,
		resolver:    resolver,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		retryPolicy: common.DefaultRetryPolicy,
		logger:      logger,
	}
}

// Recognize submits the raw file under the model mapped to formType and
// blocks until the remote analysis job completes, then normalizes the
// response into a RecognitionResult. Fails fast when formType is unmapped.
func (c *Client) Recognize(ctx context.Context, filePath, formType string) (RecognitionResult, error) {
	modelID, err := c.resolver.ResolveModel(formType)
	if err != nil {
		return RecognitionResult{}, err
	}

	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("recognize.start",
		"req_id", rid,
		"file", filePath,
		"form_type", formType,
		"model_id", modelID,
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var opURL string
	err = common.Retry(ctx, c.logger, c.retryPolicy, func() error {
		var serr error
		opURL, serr = c.submit(ctx, filePath, modelID)
		return serr
	})
	if err != nil {
		c.logger.Error("recognize.submit_error", "req_id", rid, "error", err)
		return RecognitionResult{}, err
	}

	op, err := c.poll(ctx, opURL)
	if err != nil {
		c.logger.Error("recognize.poll_error", "req_id", rid, "error", err)
		return RecognitionResult{}, err
	}

	result := normalize(op.Result)
	c.logger.Info("recognize.ok",
		"req_id", rid,
		"file", filePath,
		"structured", result.Kind == KindStructured,
		"documents", len(result.Documents),
		"pages", len(result.Pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (c *Client) submit(ctx context.Context, filePath, modelID string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read input file: %w", err)
	}

	url := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), modelID, c.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", contentTypeFor(filePath))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("recognition http error: %w", err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", common.NewAppError("RECOGNITION_ERROR",
			fmt.Sprintf("analyze submit status %d: %s", resp.StatusCode, string(body)),
			common.ErrRemoteFailure)
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", common.NewAppError("RECOGNITION_ERROR", "missing Operation-Location header", common.ErrRemoteFailure)
	}
	return opURL, nil
}

func (c *Client) poll(ctx context.Context, opURL string) (analyzeOperation, error) {
	for {
		op, err := c.fetchOperation(ctx, opURL)
		if err != nil {
			return analyzeOperation{}, err
		}

		switch op.Status {
		case statusSucceeded:
			return op, nil
		case statusFailed:
			msg := "analysis failed"
			if op.Error != nil {
				msg = fmt.Sprintf("analysis failed: %s: %s", op.Error.Code, op.Error.Message)
			}
			return analyzeOperation{}, common.NewAppError("RECOGNITION_ERROR", msg, common.ErrRemoteFailure)
		case statusNotStarted, statusRunning:
			// keep waiting
		default:
			return analyzeOperation{}, common.NewAppError("RECOGNITION_ERROR",
				fmt.Sprintf("unexpected operation status %q", op.Status), common.ErrRemoteFailure)
		}

		select {
		case <-ctx.Done():
			return analyzeOperation{}, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

func (c *Client) fetchOperation(ctx context.Context, opURL string) (analyzeOperation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return analyzeOperation{}, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return analyzeOperation{}, fmt.Errorf("poll http error: %w", err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return analyzeOperation{}, common.NewAppError("RECOGNITION_ERROR",
			fmt.Sprintf("poll status %d: %s", resp.StatusCode, string(body)),
			common.ErrRemoteFailure)
	}

	var op analyzeOperation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return analyzeOperation{}, fmt.Errorf("decode operation: %w", err)
	}
	return op, nil
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.logger.Warn("recognition response body close error", "error", err)
	}
}

func contentTypeFor(filePath string) string {
	switch constants.NormalizeExt(filepath.Ext(filePath)) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
