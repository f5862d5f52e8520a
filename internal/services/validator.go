package services

import "strings"

// Input bounds for the two documents. The minimums reject fragments too
// short to analyze meaningfully; the shared maximum is abuse prevention.
const (
	MinJobDescriptionLength = 50
	MinCVLength             = 100
	MaxDocumentLength       = 50000

	minJobDescriptionWords = 10
	minCVWords             = 20
)

// ValidateAnalysisInput checks both documents before any external call.
// Checks are pure and run in a fixed precedence order; the first failing
// check wins so later messages can assume earlier invariants hold.
func ValidateAnalysisInput(jobDescription, cv string) error {
	jd := strings.TrimSpace(jobDescription)
	cvText := strings.TrimSpace(cv)

	if jd == "" {
		return NewValidationError("job description must not be empty")
	}
	if cvText == "" {
		return NewValidationError("CV must not be empty")
	}

	if len(jd) < MinJobDescriptionLength {
		return NewValidationError("job description too short: need at least %d characters, got %d", MinJobDescriptionLength, len(jd))
	}
	if len(cvText) < MinCVLength {
		return NewValidationError("CV too short: need at least %d characters, got %d", MinCVLength, len(cvText))
	}

	if len(jd) > MaxDocumentLength {
		return NewValidationError("job description too long: maximum is %d characters", MaxDocumentLength)
	}
	if len(cvText) > MaxDocumentLength {
		return NewValidationError("CV too long: maximum is %d characters", MaxDocumentLength)
	}

	if words := len(strings.Fields(jd)); words < minJobDescriptionWords {
		return NewValidationError("job description needs at least %d words, got %d", minJobDescriptionWords, words)
	}
	if words := len(strings.Fields(cvText)); words < minCVWords {
		return NewValidationError("CV needs at least %d words, got %d", minCVWords, words)
	}

	return nil
}
