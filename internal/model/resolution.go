package model

import "time"

// ResolutionRecord describes one server-side resolution for offline diagnosis
type ResolutionRecord struct {
	ID           int64
	Query        string
	Source       Source
	Intent       *ParsedIntent
	FailureStage string // empty when the model answer was accepted
	FailureCause string
	Model        string
	Latency      time.Duration
	CreatedAt    time.Time
}

// ResolutionFilter narrows a listing of recorded resolutions
type ResolutionFilter struct {
	Source       *Source
	FailureStage *string
	Limit        int
}

// ResolutionView is the JSON shape of a recorded resolution
type ResolutionView struct {
	ID           int64         `json:"id"`
	Query        string        `json:"query"`
	Source       Source        `json:"source"`
	Intent       *ParsedIntent `json:"intent"`
	FailureStage string        `json:"failureStage,omitempty"`
	FailureCause string        `json:"failureCause,omitempty"`
	Model        string        `json:"model"`
	LatencyMs    int64         `json:"latencyMs"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// View converts a record for API output
func (r ResolutionRecord) View() ResolutionView {
	return ResolutionView{
		ID:           r.ID,
		Query:        r.Query,
		Source:       r.Source,
		Intent:       r.Intent,
		FailureStage: r.FailureStage,
		FailureCause: r.FailureCause,
		Model:        r.Model,
		LatencyMs:    r.Latency.Milliseconds(),
		CreatedAt:    r.CreatedAt,
	}
}
