package docintel

// Wire types for the document-understanding REST API (v2023-07-31 shape).

type operationStatus string

const (
	statusNotStarted operationStatus = "notStarted"
	statusRunning    operationStatus = "running"
	statusSucceeded  operationStatus = "succeeded"
	statusFailed     operationStatus = "failed"
)

type analyzeOperation struct {
	Status operationStatus `json:"status"`
	Error  *apiError       `json:"error,omitempty"`
	Result analyzeResult   `json:"analyzeResult"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type analyzeResult struct {
	ModelID   string        `json:"modelId"`
	Content   string        `json:"content"`
	Pages     []apiPage     `json:"pages"`
	Documents []apiDocument `json:"documents"`
}

type apiPage struct {
	PageNumber int       `json:"pageNumber"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Unit       string    `json:"unit"`
	Lines      []apiLine `json:"lines"`
}

type apiLine struct {
	Content string    `json:"content"`
	Polygon []float64 `json:"polygon"`
}

type apiDocument struct {
	DocType    string              `json:"docType"`
	Fields     map[string]apiField `json:"fields"`
	Confidence float64             `json:"confidence"`
}

type apiField struct {
	Type            string              `json:"type"`
	ValueString     *string             `json:"valueString,omitempty"`
	Content         string              `json:"content"`
	BoundingRegions []apiBoundingRegion `json:"boundingRegions"`
	Confidence      float64             `json:"confidence"`
}

type apiBoundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon"`
}

// ResultKind discriminates the two result shapes a recognition call produces.
type ResultKind int

const (
	// KindStructured carries per-document named fields.
	KindStructured ResultKind = iota
	// KindTextPages is the fallback when the model returned no documents:
	// line-level text per page only.
	KindTextPages
)

// RecognitionResult is a tagged union: exactly one variant is populated.
type RecognitionResult struct {
	Kind ResultKind

	// Structured variant
	Documents []DocumentRecord

	// TextPages variant
	FullText string
	Pages    []PageRecord
}

// DocumentRecord is one logical document instance the model found in a file.
// A nil field value means the field was detected but carried no text.
type DocumentRecord struct {
	DocType string
	Fields  map[string]*string
}

// PageRecord is one page's concatenated line text (fallback shape).
type PageRecord struct {
	PageNumber int
	Text       string
}
