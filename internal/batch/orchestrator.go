package batch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/politrack-jp/disclosure-ocr/constants"
	"github.com/politrack-jp/disclosure-ocr/internal/crop"
	"github.com/politrack-jp/disclosure-ocr/internal/docintel"
	"github.com/politrack-jp/disclosure-ocr/internal/journal"
	"github.com/politrack-jp/disclosure-ocr/internal/vision"
)

// Recognizer is the document-understanding boundary.
type Recognizer interface {
	Recognize(ctx context.Context, filePath, formType string) (docintel.RecognitionResult, error)
}

// ModelResolver maps a form type to its recognition model ID.
type ModelResolver interface {
	ResolveModel(formType string) (string, error)
}

// Cropper cuts a receipt region out of a page image.
type Cropper interface {
	Extract(srcPath string, box crop.BoundingBox, outDir string, docIndex int) (string, error)
}

// ReceiptAnalyzer runs the vision model over a cropped receipt.
type ReceiptAnalyzer interface {
	Analyze(ctx context.Context, imagePath, activityDescription, amount string) vision.Analysis
}

// RunJournal records per-file outcomes. Optional; a nil journal disables it.
type RunJournal interface {
	RecordFile(ctx context.Context, e journal.Entry) error
}

// Options tune one ProcessFolder run.
type Options struct {
	ExtractReceipts bool
	AnalyzeReceipts bool
	AIMode          AIMode   // zero value falls back to AIModeAll
	AIColumns       []string // exclude/include list for modes 3 and 4
}

// Orchestrator drives the per-folder pipeline: recognize each supported file,
// flatten documents into rows, optionally crop and analyze receipt regions,
// and assemble the final table. Failures isolate at the file and document
// level; one bad input never aborts the batch.
type Orchestrator struct {
	recognizer Recognizer
	resolver   ModelResolver
	cropper    Cropper
	analyzer   ReceiptAnalyzer
	journal    RunJournal
	logger     *slog.Logger
}

func NewOrchestrator(
	recognizer Recognizer,
	resolver ModelResolver,
	cropper Cropper,
	analyzer ReceiptAnalyzer,
	runJournal RunJournal,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		recognizer: recognizer,
		resolver:   resolver,
		cropper:    cropper,
		analyzer:   analyzer,
		journal:    runJournal,
		logger:     logger,
	}
}

var pageTokenRe = regexp.MustCompile(`page_(\d+)`)

// ProcessFolder runs the pipeline over every supported file directly inside
// folderPath (non-recursive) and returns the assembled table. The form type
// is validated before any file is opened.
func (o *Orchestrator) ProcessFolder(ctx context.Context, folderPath, formType string, opts Options) (Table, error) {
	modelID, err := o.resolver.ResolveModel(formType)
	if err != nil {
		return Table{}, err
	}
	if opts.AIMode == 0 {
		opts.AIMode = AIModeAll
	}

	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return Table{}, err
	}

	folderName := filepath.Base(folderPath)
	var rows []*Row

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filePath := filepath.Join(folderPath, entry.Name())
		if !constants.AllowedExt(filepath.Ext(entry.Name())) {
			o.recordFile(ctx, journal.Entry{
				Path:     filePath,
				FormType: formType,
				Status:   constants.FileStatusSkipped,
			})
			continue
		}
		start := time.Now()

		result, err := o.recognizer.Recognize(ctx, filePath, formType)
		if err != nil {
			o.logger.Error("batch.file_failed", "file", filePath, "error", err)
			o.recordFile(ctx, journal.Entry{
				Path:      filePath,
				FormType:  formType,
				Status:    constants.FileStatusFailed,
				Err:       err.Error(),
				ElapsedMS: time.Since(start).Milliseconds(),
			})
			continue
		}

		fileRows := o.collectRows(ctx, result, folderPath, folderName, entry.Name(), modelID, formType, opts)
		rows = append(rows, fileRows...)

		status := constants.FileStatusOK
		if len(fileRows) == 0 {
			status = constants.FileStatusEmpty
		}
		o.recordFile(ctx, journal.Entry{
			Path:      filePath,
			FormType:  formType,
			Status:    status,
			Rows:      len(fileRows),
			ElapsedMS: time.Since(start).Milliseconds(),
		})
	}

	return BuildTable(rows), nil
}

// collectRows flattens one file's recognition result into zero or more rows.
func (o *Orchestrator) collectRows(
	ctx context.Context,
	result docintel.RecognitionResult,
	folderPath, folderName, filename, modelID, formType string,
	opts Options,
) []*Row {
	switch result.Kind {
	case docintel.KindTextPages:
		return textPageRows(filename, result.Pages)
	case docintel.KindStructured:
		rows := make([]*Row, 0, len(result.Documents))
		for docIndex, doc := range result.Documents {
			rows = append(rows, o.documentRow(ctx, doc, docIndex, folderPath, folderName, filename, modelID, formType, opts))
		}
		return rows
	default:
		return nil
	}
}

func textPageRows(filename string, pages []docintel.PageRecord) []*Row {
	rows := make([]*Row, 0, len(pages))
	for _, p := range pages {
		row := NewRow()
		row.Set("filename", filename)
		row.Set("page", strconv.Itoa(p.PageNumber))
		row.Set("ocr_result", p.Text)
		rows = append(rows, row)
	}
	return rows
}

func (o *Orchestrator) documentRow(
	ctx context.Context,
	doc docintel.DocumentRecord,
	docIndex int,
	folderPath, folderName, filename, modelID, formType string,
	opts Options,
) *Row {
	row := NewRow()
	row.Set("folder_name", folderName)
	row.Set("filename", filename)
	row.Set("model_name", modelID)
	row.Set("type", formType)

	areaValue := ""
	if v, ok := doc.Fields[constants.ReceiptAreaField]; ok && v != nil {
		areaValue = *v
		row.Set(constants.ReceiptAreaField, areaValue)
	}

	pageNum := ""
	if m := pageTokenRe.FindStringSubmatch(filename); m != nil {
		pageNum = m[1]
	}
	row.Set("page_number_on_pdf", pageNum)

	// Remaining fields in name order; the area pseudo-field is already placed.
	names := make([]string, 0, len(doc.Fields))
	for name := range doc.Fields {
		if name == constants.ReceiptAreaField {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := doc.Fields[name]; v != nil {
			row.Set(name, *v)
		} else {
			row.Set(name, "")
		}
	}

	if opts.ExtractReceipts && areaValue != "" {
		o.extractReceipt(ctx, row, doc, docIndex, areaValue, folderPath, filename, opts)
	}
	return row
}

// extractReceipt crops the receipt region and, when requested and possible,
// analyzes the crop. Every failure here is local to the document: the row is
// already populated and stays.
func (o *Orchestrator) extractReceipt(
	ctx context.Context,
	row *Row,
	doc docintel.DocumentRecord,
	docIndex int,
	areaValue, folderPath, filename string,
	opts Options,
) {
	box, ok := crop.ParsePolygon(areaValue)
	if !ok {
		o.logger.Warn("batch.receipt_area_unparsable", "file", filename, "doc_index", docIndex, "area", areaValue)
		return
	}

	outDir := filepath.Join(folderPath, constants.ReceiptImagesDir)
	srcPath := filepath.Join(folderPath, filename)
	cropPath, err := o.cropper.Extract(srcPath, box, outDir, docIndex)
	if err != nil {
		o.logger.Warn("batch.receipt_crop_failed", "file", filename, "doc_index", docIndex, "error", err)
		return
	}

	if !opts.AnalyzeReceipts || o.analyzer == nil {
		return
	}

	analysis := o.analyzer.Analyze(ctx, cropPath, fieldValue(doc, "支出の目的"), fieldValue(doc, "金額"))
	mergeAnalysis(row, analysis, opts.AIMode, opts.AIColumns)
}

// fieldValue reads a document field as a plain string, empty when absent.
func fieldValue(doc docintel.DocumentRecord, name string) string {
	if v, ok := doc.Fields[name]; ok && v != nil {
		return *v
	}
	return ""
}

func (o *Orchestrator) recordFile(ctx context.Context, e journal.Entry) {
	if o.journal == nil {
		return
	}
	_ = o.journal.RecordFile(ctx, e)
}
