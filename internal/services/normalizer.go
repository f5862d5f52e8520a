package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"jobfit/cv-analyzer/internal/models"
)

// fenceRe captures the interior of the first markdown code fence, with or
// without a json language tag.
var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Normalizer turns a raw AI response into the canonical AnalysisResult.
// It never fails: responses that cannot be parsed become a degraded result
// that preserves the AI's prose in the summary field.
type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// rawAnalysis is the superset of response shapes the AI has been observed to
// produce. Scores are decoded as floats because models emit both integers
// and fractions for the same field.
type rawAnalysis struct {
	OverallScore        *float64            `json:"overallScore"`
	Strengths           []string            `json:"strengths"`
	Weaknesses          []string            `json:"weaknesses"`
	Alignment           *rawAlignment       `json:"alignment"`
	AlignmentScores     *alignmentFractions `json:"alignmentScores"`
	Recommendations     []string            `json:"recommendations"`
	Summary             string              `json:"summary"`
	KeyMatches          []string            `json:"keyMatches"`
	MissingRequirements []string            `json:"missingRequirements"`
}

type rawAlignment struct {
	TechnicalSkills float64 `json:"technicalSkills"`
	Experience      float64 `json:"experience"`
	Education       float64 `json:"education"`
	SoftSkills      float64 `json:"softSkills"`
}

// alignmentFractions is the alternate alignment shape: differently named
// sub-scores on a 0-1 scale.
type alignmentFractions struct {
	Skills           *float64 `json:"skills"`
	Experience       *float64 `json:"experience"`
	Qualifications   *float64 `json:"qualifications"`
	Responsibilities *float64 `json:"responsibilities"`
}

// shapeAdapter is one named reconciliation rule. New response shapes get new
// adapters instead of inline branching.
type shapeAdapter struct {
	name  string
	apply func(raw *rawAnalysis, out *models.AnalysisResult) bool
}

var shapeAdapters = []shapeAdapter{
	{
		name: "alignment-fractions",
		apply: func(raw *rawAnalysis, out *models.AnalysisResult) bool {
			// alignmentScores takes effect only when the canonical alignment
			// object is absent.
			if raw.Alignment != nil || raw.AlignmentScores == nil {
				return false
			}
			out.Alignment = models.Alignment{
				TechnicalSkills: fractionToPercent(raw.AlignmentScores.Skills),
				Experience:      fractionToPercent(raw.AlignmentScores.Experience),
				Education:       fractionToPercent(raw.AlignmentScores.Qualifications),
				SoftSkills:      fractionToPercent(raw.AlignmentScores.Responsibilities),
			}
			return true
		},
	},
	{
		name: "fractional-overall-score",
		apply: func(raw *rawAnalysis, out *models.AnalysisResult) bool {
			if raw.OverallScore == nil || *raw.OverallScore > 1 {
				return false
			}
			out.OverallScore = int(math.Round(*raw.OverallScore * 100))
			return true
		},
	},
}

func fractionToPercent(v *float64) int {
	if v == nil {
		return 0
	}
	return int(math.Round(*v * 100))
}

// Normalize extracts structured data from the raw AI response and
// reconciles it into the canonical schema. The same input always yields the
// same output.
func (n *Normalizer) Normalize(rawResponse string) models.Outcome {
	candidate := rawResponse
	if m := fenceRe.FindStringSubmatch(rawResponse); m != nil {
		candidate = m[1]
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &raw); err != nil {
		n.logger.Info("AI response is not structured, synthesizing degraded result",
			zap.Int("response_length", len(rawResponse)),
			zap.Error(err),
		)
		return models.Outcome{
			Result: degradedResult(rawResponse),
			Source: models.SourceAIDegraded,
		}
	}

	result := models.AnalysisResult{
		Strengths:           raw.Strengths,
		Weaknesses:          raw.Weaknesses,
		Recommendations:     raw.Recommendations,
		Summary:             raw.Summary,
		KeyMatches:          raw.KeyMatches,
		MissingRequirements: raw.MissingRequirements,
	}

	if raw.OverallScore != nil {
		result.OverallScore = int(math.Round(*raw.OverallScore))
	}
	if raw.Alignment != nil {
		result.Alignment = models.Alignment{
			TechnicalSkills: int(math.Round(raw.Alignment.TechnicalSkills)),
			Experience:      int(math.Round(raw.Alignment.Experience)),
			Education:       int(math.Round(raw.Alignment.Education)),
			SoftSkills:      int(math.Round(raw.Alignment.SoftSkills)),
		}
	}

	var applied []string
	for _, adapter := range shapeAdapters {
		if adapter.apply(&raw, &result) {
			applied = append(applied, adapter.name)
		}
	}
	if len(applied) > 0 {
		n.logger.Debug("applied response shape adapters", zap.Strings("adapters", applied))
	}

	// A successful parse is trusted for content: missing list fields are
	// reported but not synthesized, so a mostly-good answer is not discarded
	// over one absent field.
	if missing := missingListFields(&raw); len(missing) > 0 {
		n.logger.Info("AI response is missing list fields", zap.Strings("fields", missing))
	}
	result.EnsureLists()

	return models.Outcome{Result: result, Source: models.SourceAI}
}

func missingListFields(raw *rawAnalysis) []string {
	var missing []string
	for name, list := range map[string][]string{
		"strengths":           raw.Strengths,
		"weaknesses":          raw.Weaknesses,
		"recommendations":     raw.Recommendations,
		"keyMatches":          raw.KeyMatches,
		"missingRequirements": raw.MissingRequirements,
	} {
		if list == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// degradedResult wraps an unparseable AI response into a valid result. The
// raw prose is preserved verbatim in the summary for human review.
func degradedResult(rawResponse string) models.AnalysisResult {
	return models.AnalysisResult{
		OverallScore: 75,
		Strengths:    []string{"AI analysis completed - see summary for details"},
		Weaknesses:   []string{"AI response format needs improvement"},
		Alignment: models.Alignment{
			TechnicalSkills: 70,
			Experience:      75,
			Education:       70,
			SoftSkills:      80,
		},
		Recommendations:     []string{"Review AI analysis in summary section"},
		Summary:             rawResponse,
		KeyMatches:          []string{"AI analysis completed"},
		MissingRequirements: []string{"AI response formatting"},
	}
}
