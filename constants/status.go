package constants

// FileStatus is the canonical status for rows in the run journal.
type FileStatus string

// Stable values (store these exact strings in the journal).
const (
	FileStatusOK      FileStatus = "OK"      // recognized, rows emitted
	FileStatusEmpty   FileStatus = "EMPTY"   // recognized, no documents and no pages
	FileStatusFailed  FileStatus = "FAILED"  // recognition error, file skipped
	FileStatusSkipped FileStatus = "SKIPPED" // extension not in the allowed set
)
