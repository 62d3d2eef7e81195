package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/politrack-jp/disclosure-ocr/internal/batch"
)

// Format is the caller-selected output mode; it is never inferred from the
// table contents.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// FormatForPath picks a format from the output file extension, defaulting to CSV.
func FormatForPath(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "tsv":
		return FormatTSV
	case "xlsx":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// ParseFormat validates an explicit format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV, FormatTSV, FormatXLSX:
		return Format(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Writer serializes a result table to disk.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// WriteTable persists the table at path in the given format. Delimited output
// is UTF-8 with a BOM so spreadsheet tools pick the encoding up.
func (w *Writer) WriteTable(table batch.Table, path string, format Format) error {
	start := time.Now()

	var err error
	switch format {
	case FormatXLSX:
		err = writeXLSX(table, path)
	case FormatTSV:
		err = writeDelimited(table, path, '\t')
	default:
		err = writeDelimited(table, path, ',')
	}
	if err != nil {
		return err
	}

	w.logger.Info("export.ok",
		"path", path,
		"format", string(format),
		"rows", len(table.Rows),
		"columns", len(table.Columns),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func writeDelimited(table batch.Table, path string, comma rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(f)
	cw.Comma = comma

	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = table.Cell(row, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return f.Close()
}

func writeXLSX(table batch.Table, path string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, col := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col)
	}
	for r, row := range table.Rows {
		for i, col := range table.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			_ = f.SetCellValue(sheet, cell, table.Cell(row, col))
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
