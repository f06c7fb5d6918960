package domain

import (
	"time"

	"github.com/google/uuid"
)

type ImportTaskStatus string

const (
	ImportQueued     ImportTaskStatus = "queued"
	ImportProcessing ImportTaskStatus = "processing"
	ImportCompleted  ImportTaskStatus = "completed"
	ImportFailed     ImportTaskStatus = "failed"
)

type MenuImportTask struct {
	ID            uuid.UUID        `json:"id"`
	Status        ImportTaskStatus `json:"status"`
	SpreadsheetID string           `json:"spreadsheet_id"`
	SheetRange    string           `json:"sheet_range"`
	Imported      int              `json:"imported"`
	Skipped       int              `json:"skipped"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	RetryCount    int              `json:"retry_count"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
