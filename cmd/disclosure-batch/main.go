package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/politrack-jp/disclosure-ocr/internal/batch"
	"github.com/politrack-jp/disclosure-ocr/internal/common"
	"github.com/politrack-jp/disclosure-ocr/internal/crop"
	"github.com/politrack-jp/disclosure-ocr/internal/docintel"
	"github.com/politrack-jp/disclosure-ocr/internal/enrich"
	"github.com/politrack-jp/disclosure-ocr/internal/export"
	"github.com/politrack-jp/disclosure-ocr/internal/journal"
	"github.com/politrack-jp/disclosure-ocr/internal/vision"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out         = flag.String("o", "output.csv", "output file path")
		configFile  = flag.String("c", "", "JSON config file overlaying the model mapping")
		verbose     = flag.Bool("v", false, "enable debug logging")
		formatStr   = flag.String("format", "", "output format: csv, tsv or xlsx (default: by output extension)")
		noReceipts  = flag.Bool("no-receipts", false, "disable receipt region extraction")
		noAnalysis  = flag.Bool("no-analysis", false, "disable vision analysis of extracted receipts")
		aiMode      = flag.Int("ai-mode", 1, "AI column mode: 1 all, 2 none, 3 exclude listed, 4 include listed")
		aiColumns   = flag.String("ai-columns", "", "comma-separated AI column names for modes 3 and 4")
		journalPath = flag.String("journal", "", "SQLite run journal path (default: JOURNAL_PATH env, empty disables)")
	)
	flag.Usage = func() {
		printError("Usage: disclosure-batch [flags] <inputFolder> <formType>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputFolder := flag.Arg(0)
	formType := flag.Arg(1)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg, err := common.LoadConfig(*configFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		logger.Error("check the .env file or environment variables")
		os.Exit(1)
	}

	if st, err := os.Stat(inputFolder); err != nil || !st.IsDir() {
		logger.Error("input folder not found", "path", inputFolder)
		os.Exit(1)
	}
	if _, err := cfg.ResolveModel(formType); err != nil {
		known := make([]string, 0, len(cfg.ModelMapping))
		for ft := range cfg.ModelMapping {
			known = append(known, ft)
		}
		logger.Error("unknown form type", "form_type", formType, "available", strings.Join(known, ", "))
		os.Exit(1)
	}

	if *aiMode < 1 || *aiMode > 4 {
		logger.Error("invalid -ai-mode, expected 1..4", "ai_mode", *aiMode)
		os.Exit(1)
	}
	var modeColumns []string
	if *aiColumns != "" {
		for _, c := range strings.Split(*aiColumns, ",") {
			if c = strings.TrimSpace(c); c != "" {
				modeColumns = append(modeColumns, c)
			}
		}
	}

	format := export.FormatForPath(*out)
	if *formatStr != "" {
		format, err = export.ParseFormat(*formatStr)
		if err != nil {
			logger.Error("invalid -format", "error", err)
			os.Exit(1)
		}
	}

	recognizer := docintel.NewClient(docintel.Config{
		Endpoint:     cfg.Recognition.Endpoint,
		APIKey:       cfg.Recognition.APIKey,
		APIVersion:   cfg.Recognition.APIVersion,
		PollInterval: cfg.Recognition.PollInterval,
		Timeout:      cfg.Recognition.Timeout,
	}, cfg, logger)

	// Vision + enrichment are optional: missing OpenAI key degrades to plain
	// field extraction, matching the toggles.
	var analyzer batch.ReceiptAnalyzer
	if !*noAnalysis {
		if cfg.LLM.APIKey == "" {
			logger.Warn("OPENAI_API_KEY not configured, receipt analysis will be skipped")
		} else {
			enricher := enrich.NewService(enrich.Config{
				APIKey:      cfg.LLM.APIKey,
				BaseURL:     cfg.LLM.BaseURL,
				Model:       cfg.LLM.Model,
				Temperature: cfg.LLM.Temperature,
				Timeout:     cfg.LLM.Timeout,
				CacheTTL:    cfg.Enrichment.CacheTTL,
				Pacing:      cfg.Enrichment.Pacing,
			}, logger)
			analyzer = vision.NewAnalyzer(vision.Config{
				APIKey:      cfg.LLM.APIKey,
				BaseURL:     cfg.LLM.BaseURL,
				Model:       cfg.LLM.Model,
				Temperature: cfg.LLM.Temperature,
				Timeout:     cfg.LLM.Timeout,
			}, enricher, logger)
			logger.Info("vision analyzer initialized", "model", cfg.LLM.Model)
		}
	}

	var runJournal batch.RunJournal
	jpath := *journalPath
	if jpath == "" {
		jpath = cfg.JournalPath
	}
	if jpath != "" {
		store, err := journal.Open(jpath, logger)
		if err != nil {
			logger.Warn("journal unavailable, continuing without it", "path", jpath, "error", err)
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("journal close error", "error", err)
				}
			}()
			runJournal = store
			logger.Info("run journal enabled", "path", jpath, "run_id", store.RunID())
		}
	}

	orchestrator := batch.NewOrchestrator(recognizer, cfg, crop.NewCropper(logger), analyzer, runJournal, logger)

	logger.Info("processing folder", "path", inputFolder, "form_type", formType)
	table, err := orchestrator.ProcessFolder(ctx, inputFolder, formType, batch.Options{
		ExtractReceipts: !*noReceipts,
		AnalyzeReceipts: !*noAnalysis,
		AIMode:          batch.AIMode(*aiMode),
		AIColumns:       modeColumns,
	})
	if err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}

	if len(table.Rows) == 0 {
		logger.Warn("no matching files were processed", "path", inputFolder)
		os.Exit(0)
	}

	if err := export.NewWriter(logger).WriteTable(table, *out, format); err != nil {
		logger.Error("failed to write output", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("processing complete", "rows", len(table.Rows), "output", *out)
	fmt.Printf("Processed %d rows -> %s\n", len(table.Rows), *out)
}
