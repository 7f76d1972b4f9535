package models

import "time"

type BatchStatus string

const (
	StatusIdle        BatchStatus = "idle"
	StatusRunning     BatchStatus = "running"
	StatusFinished    BatchStatus = "finished"
	StatusInterrupted BatchStatus = "interrupted"
)

// BatchSummary is the running tally of one bulk send.
type BatchSummary struct {
	RunID       string      `json:"run_id"`
	Status      BatchStatus `json:"status"`
	Total       int         `json:"total"`
	Processed   int         `json:"processed"`
	Succeeded   int         `json:"succeeded"`
	Failed      int         `json:"failed"`
	Interrupted bool        `json:"interrupted"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
}

// ContactProgress is the outcome of one contact within a batch.
type ContactProgress struct {
	RunID    string    `json:"run_id"`
	Index    int       `json:"index"` // 1-based
	Total    int       `json:"total"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Sent     bool      `json:"sent"`
	Attempts int       `json:"attempts"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

type StatusSnapshot struct {
	Batch  BatchSummary      `json:"batch"`
	Recent []ContactProgress `json:"recent"`
}
