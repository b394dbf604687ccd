package ai

import "context"

// TriageInput carries a complaint and its deterministic classification for an
// advisory second opinion.
type TriageInput struct {
	Subject           string
	Exam              string
	ComplaintText     string
	IssueType         string
	ExtractedQuestion string
}

// TriageResult is the structured advisory opinion returned by the provider.
// It never replaces the deterministic classification stored on the complaint.
type TriageResult struct {
	IssueType string                 `json:"issue_type"`
	Priority  string                 `json:"priority"`
	Rationale string                 `json:"rationale"`
	Agrees    bool                   `json:"agrees"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
}

// Triager describes a model capable of giving a second opinion on a
// complaint classification.
type Triager interface {
	Triage(ctx context.Context, input TriageInput) (TriageResult, error)
}
