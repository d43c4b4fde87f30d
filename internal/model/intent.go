package model

// Source records where a resolved intent came from
type Source string

const (
	SourceGroq      Source = "groq"
	SourceHeuristic Source = "heuristic"
	SourceEmpty     Source = "empty"
)

// ParsedIntent represents the structured filter extracted from a free-text query
type ParsedIntent struct {
	Terms         []string `json:"terms"`
	LocationTerms []string `json:"locationTerms"`
	TargetMinutes *int     `json:"targetMinutes"` // minutes past midnight, [0, 1440)
	MaxBudgetYen  *int     `json:"maxBudgetYen"`
	WantsNearby   bool     `json:"wantsNearby"`
}

// NewParsedIntent returns an intent with empty, non-nil term slices
func NewParsedIntent() ParsedIntent {
	return ParsedIntent{
		Terms:         []string{},
		LocationTerms: []string{},
	}
}

// Clone returns a deep copy so cached intents are never shared with callers
func (p ParsedIntent) Clone() ParsedIntent {
	out := ParsedIntent{
		Terms:         append([]string{}, p.Terms...),
		LocationTerms: append([]string{}, p.LocationTerms...),
		WantsNearby:   p.WantsNearby,
	}
	if p.TargetMinutes != nil {
		v := *p.TargetMinutes
		out.TargetMinutes = &v
	}
	if p.MaxBudgetYen != nil {
		v := *p.MaxBudgetYen
		out.MaxBudgetYen = &v
	}
	return out
}

// ResolutionEnvelope wraps an intent with its provenance for transport
type ResolutionEnvelope struct {
	Intent *ParsedIntent `json:"intent"`
	Source Source        `json:"source"`
}

// SearchIntentRequest is the body of POST /api/search-intent
type SearchIntentRequest struct {
	Query string `json:"query"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
