package models

// Alignment holds the per-dimension match scores, each on a 0-100 scale.
type Alignment struct {
	TechnicalSkills int `json:"technicalSkills"`
	Experience      int `json:"experience"`
	Education       int `json:"education"`
	SoftSkills      int `json:"softSkills"`
}

// AnalysisResult is the canonical analysis schema. Every field is always
// present after normalization; degraded results carry placeholder content
// rather than omitting keys.
type AnalysisResult struct {
	OverallScore        int       `json:"overallScore"`
	Strengths           []string  `json:"strengths"`
	Weaknesses          []string  `json:"weaknesses"`
	Alignment           Alignment `json:"alignment"`
	Recommendations     []string  `json:"recommendations"`
	Summary             string    `json:"summary"`
	KeyMatches          []string  `json:"keyMatches"`
	MissingRequirements []string  `json:"missingRequirements"`
}

// EnsureLists replaces nil list fields with empty slices so the serialized
// result always carries every key with a list value.
func (r *AnalysisResult) EnsureLists() {
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.Weaknesses == nil {
		r.Weaknesses = []string{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	if r.KeyMatches == nil {
		r.KeyMatches = []string{}
	}
	if r.MissingRequirements == nil {
		r.MissingRequirements = []string{}
	}
}

// AnalysisRequest carries the two documents to compare, as plain text.
// ExtractionDegraded is set when either text came from extractor fallback
// content instead of a real document.
type AnalysisRequest struct {
	JobDescription     string
	CV                 string
	ExtractionDegraded bool
}

// ResultSource tags how an Outcome was produced.
type ResultSource string

const (
	// SourceAI: the AI response parsed cleanly into the canonical schema.
	SourceAI ResultSource = "ai"
	// SourceAIDegraded: the AI responded but its output could not be parsed,
	// so the result was synthesized around the raw response text.
	SourceAIDegraded ResultSource = "ai-degraded"
	// SourceMockFallback: the AI was not called (degraded extraction) or its
	// call failed, and the canned fixture was returned instead.
	SourceMockFallback ResultSource = "mock-fallback"
)

// Outcome is what the orchestrator returns: a valid result plus an explicit
// tag distinguishing real analysis from fallback, so callers do not have to
// parse logs to tell them apart.
type Outcome struct {
	Result AnalysisResult `json:"result"`
	Source ResultSource   `json:"source"`
}

// ExtractedDocument is the product of PDF text extraction. IsFallback marks
// placeholder content produced when extraction failed.
type ExtractedDocument struct {
	Text       string            `json:"text"`
	PageCount  int               `json:"page_count,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IsFallback bool              `json:"is_fallback"`
}
