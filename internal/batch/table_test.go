package batch

import (
	"reflect"
	"testing"
)

func TestBuildTableEmptyUsesMinimalSchema(t *testing.T) {
	table := BuildTable(nil)
	want := []string{"folder_name", "filename", "page"}
	if !reflect.DeepEqual(table.Columns, want) {
		t.Fatalf("columns = %v, want %v", table.Columns, want)
	}
	if len(table.Rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(table.Rows))
	}
}

func TestBuildTablePriorityPrefix(t *testing.T) {
	// Insert in deliberately scrambled order; priority columns must still
	// lead, and only those actually present.
	r1 := NewRow()
	r1.Set("金額", "12000")
	r1.Set("filename", "a.pdf")
	r1.Set("payee_name", "株式会社A")
	r1.Set("folder_name", "batch1")

	r2 := NewRow()
	r2.Set("folder_name", "batch1")
	r2.Set("filename", "b.pdf")
	r2.Set("支出の目的", "会合費")
	r2.Set("payment_purpose", "会合")

	table := BuildTable([]*Row{r1, r2})
	want := []string{
		"folder_name", "filename", "payee_name", "payment_purpose", // priority, present only
		"金額", "支出の目的", // remainder in first-seen order
	}
	if !reflect.DeepEqual(table.Columns, want) {
		t.Fatalf("columns = %v, want %v", table.Columns, want)
	}
}

func TestBuildTableUnionAndCells(t *testing.T) {
	r1 := NewRow()
	r1.Set("folder_name", "f")
	r1.Set("filename", "only_in_r1.jpg")
	r1.Set("extra_a", "1")

	r2 := NewRow()
	r2.Set("folder_name", "f")
	r2.Set("filename", "r2.jpg")
	r2.Set("extra_b", "2")

	table := BuildTable([]*Row{r1, r2})

	if got := table.Cell(r1, "extra_b"); got != "" {
		t.Fatalf("absent cell = %q, want empty", got)
	}
	if got := table.Cell(r2, "extra_b"); got != "2" {
		t.Fatalf("cell = %q, want 2", got)
	}
}

func TestRowSetOverwriteKeepsPosition(t *testing.T) {
	r := NewRow()
	r.Set("a", "1")
	r.Set("b", "2")
	r.Set("a", "3")

	if !reflect.DeepEqual(r.Columns(), []string{"a", "b"}) {
		t.Fatalf("columns = %v", r.Columns())
	}
	if v, _ := r.Get("a"); v != "3" {
		t.Fatalf("a = %q, want 3", v)
	}
}
