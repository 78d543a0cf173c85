package recorder

import "StockDashboard/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPass(_ *model.RefreshState) error { return nil }
func (n *NoopRecorder) History(_ int) ([]PassRecord, error)    { return []PassRecord{}, nil }
func (n *NoopRecorder) Close() error                           { return nil }
