package models

import "time"

type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusSuccess    RunStatus = "success"
	RunStatusError      RunStatus = "error"
)

// SyncRun is the audit record for one invocation of the sync engine.
// It is created in_progress and finalized exactly once; a finalized row is
// never mutated again.
type SyncRun struct {
	ID               int64      `json:"id" db:"id"`
	SyncType         string     `json:"sync_type" db:"sync_type"`
	Status           RunStatus  `json:"status" db:"status"`
	RecordsProcessed int        `json:"records_processed" db:"records_processed"`
	RecordsCreated   int        `json:"records_created" db:"records_created"`
	RecordsUpdated   int        `json:"records_updated" db:"records_updated"`
	ErrorMessage     string     `json:"error_message" db:"error_message"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	CompletedAt      *time.Time `json:"completed_at" db:"completed_at"`
}
