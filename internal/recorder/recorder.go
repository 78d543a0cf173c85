// Package recorder persists published refresh passes for later analysis.
package recorder

import (
	"time"

	"StockDashboard/internal/model"
)

// PassRecord is the stored summary of one published pass.
type PassRecord struct {
	Seq         uint64                  `json:"seq"`
	Status      model.PassStatus        `json:"status"`
	Currency    string                  `json:"currency"`
	Symbols     int                     `json:"symbols"`
	Succeeded   int                     `json:"succeeded"`
	Failed      int                     `json:"failed"`
	Error       string                  `json:"error,omitempty"`
	StartedAt   time.Time               `json:"started_at"`
	PublishedAt time.Time               `json:"published_at"`
	Entries     []model.ComparisonEntry `json:"entries"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordPass(state *model.RefreshState) error
	// History returns the most recent passes, newest first.
	History(limit int) ([]PassRecord, error)
	Close() error
}
