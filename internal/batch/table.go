package batch

// Row accumulates column values in insertion order. Documents populate
// heterogeneous field sets; the ordering pass in BuildTable decides
// presentation, so a Row only remembers what it saw and when.
type Row struct {
	columns []string
	values  map[string]string
}

func NewRow() *Row {
	return &Row{values: make(map[string]string)}
}

// Set records a value, remembering first-insertion order. Setting an existing
// column overwrites the value without moving the column.
func (r *Row) Set(col, val string) {
	if _, ok := r.values[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.values[col] = val
}

// Get returns the value for col and whether the column is present.
func (r *Row) Get(col string) (string, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Columns returns the row's columns in insertion order.
func (r *Row) Columns() []string {
	return r.columns
}

// Table is the rectangular output: the column union across all rows under a
// stable ordering, with absent cells reading as empty strings.
type Table struct {
	Columns []string
	Rows    []*Row
}

// Cell returns the value at (row, col), empty when the row lacks the column.
func (t Table) Cell(row *Row, col string) string {
	v, _ := row.Get(col)
	return v
}

// priorityColumns is the fixed ordering prefix. Only columns actually present
// in some row are emitted; the rest of the union follows in first-seen order.
var priorityColumns = []string{
	"folder_name",
	"filename",
	"model_name",
	"type",
	"receipt_image_area",
	"page_number_on_pdf",
	"page",
	"payee_name",
	"payee_address",
	"payment_date_extracted",
	"payment_purpose",
}

// minimalColumns is the schema of an empty result.
var minimalColumns = []string{"folder_name", "filename", "page"}

// BuildTable computes the column union across rows and applies the stable
// priority ordering. No rows yields the minimal fixed schema.
func BuildTable(rows []*Row) Table {
	if len(rows) == 0 {
		cols := make([]string, len(minimalColumns))
		copy(cols, minimalColumns)
		return Table{Columns: cols}
	}

	var union []string
	seen := make(map[string]struct{})
	for _, r := range rows {
		for _, col := range r.Columns() {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				union = append(union, col)
			}
		}
	}

	var ordered []string
	taken := make(map[string]struct{})
	for _, col := range priorityColumns {
		if _, ok := seen[col]; ok {
			ordered = append(ordered, col)
			taken[col] = struct{}{}
		}
	}
	for _, col := range union {
		if _, ok := taken[col]; !ok {
			ordered = append(ordered, col)
		}
	}

	return Table{Columns: ordered, Rows: rows}
}
