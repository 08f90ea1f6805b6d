package recorder

import "VegeNavi/internal/model"

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunEvent) error                  { return nil }
func (n *NoopRecorder) RecordRates(_, _ string, _ model.Rates) error { return nil }
func (n *NoopRecorder) Close() error                                 { return nil }
