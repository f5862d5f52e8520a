package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobfit/cv-analyzer/internal/models"
)

const wellFormedResponse = `{
	"overallScore": 85,
	"strengths": ["Strong technical background"],
	"weaknesses": ["Limited experience"],
	"alignment": {"technicalSkills": 80, "experience": 90, "education": 75, "softSkills": 85},
	"recommendations": ["Consider additional training"],
	"summary": "Good match overall",
	"keyMatches": ["React experience"],
	"missingRequirements": ["TypeScript knowledge"]
}`

func TestNormalizeWellFormedResponse(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	outcome := n.Normalize(wellFormedResponse)
	assert.Equal(t, models.SourceAI, outcome.Source)
	assert.Equal(t, 85, outcome.Result.OverallScore)
	assert.Equal(t, []string{"Strong technical background"}, outcome.Result.Strengths)
	assert.Equal(t, models.Alignment{TechnicalSkills: 80, Experience: 90, Education: 75, SoftSkills: 85}, outcome.Result.Alignment)
	assert.Equal(t, "Good match overall", outcome.Result.Summary)
}

func TestNormalizeJSONFence(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	outcome := n.Normalize("Here is the analysis:\n```json\n" + wellFormedResponse + "\n```\nLet me know if you need more.")
	assert.Equal(t, models.SourceAI, outcome.Source)
	assert.Equal(t, 85, outcome.Result.OverallScore)
}

func TestNormalizeGenericFence(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	outcome := n.Normalize("```\n" + wellFormedResponse + "\n```")
	assert.Equal(t, models.SourceAI, outcome.Source)
	assert.Equal(t, 85, outcome.Result.OverallScore)
}

func TestNormalizeAlignmentFractions(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	raw := "```json\n{\"overallScore\":0.9,\"alignmentScores\":{\"skills\":0.8,\"experience\":0.7,\"qualifications\":0.6,\"responsibilities\":0.5}}\n```"
	outcome := n.Normalize(raw)

	assert.Equal(t, models.SourceAI, outcome.Source)
	assert.Equal(t, 90, outcome.Result.OverallScore)
	assert.Equal(t, models.Alignment{
		TechnicalSkills: 80,
		Experience:      70,
		Education:       60,
		SoftSkills:      50,
	}, outcome.Result.Alignment)
}

func TestNormalizeAlignmentFractionsMissingSubScores(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	outcome := n.Normalize(`{"overallScore": 80, "alignmentScores": {"skills": 0.95}}`)
	assert.Equal(t, models.Alignment{TechnicalSkills: 95}, outcome.Result.Alignment)
	assert.Equal(t, 80, outcome.Result.OverallScore)
}

func TestNormalizeCanonicalAlignmentWinsOverFractions(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	outcome := n.Normalize(`{
		"alignment": {"technicalSkills": 66, "experience": 67, "education": 68, "softSkills": 69},
		"alignmentScores": {"skills": 0.1}
	}`)
	assert.Equal(t, models.Alignment{TechnicalSkills: 66, Experience: 67, Education: 68, SoftSkills: 69}, outcome.Result.Alignment)
}

func TestNormalizeFractionalOverallScore(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	tests := []struct {
		raw  string
		want int
	}{
		{`{"overallScore": 0.9}`, 90},
		{`{"overallScore": 1}`, 100},
		{`{"overallScore": 0}`, 0},
		{`{"overallScore": 2}`, 2},
		{`{"overallScore": 85}`, 85},
		{`{"overallScore": 85.6}`, 86},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			outcome := n.Normalize(tt.raw)
			require.Equal(t, models.SourceAI, outcome.Source)
			assert.Equal(t, tt.want, outcome.Result.OverallScore)
		})
	}
}

func TestNormalizeMissingListsAreNotSynthesized(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	outcome := n.Normalize(`{"overallScore": 60, "summary": "short answer"}`)
	require.Equal(t, models.SourceAI, outcome.Source)
	assert.Equal(t, 60, outcome.Result.OverallScore)
	assert.Equal(t, "short answer", outcome.Result.Summary)

	// Keys stay present as empty lists, but no placeholder content appears.
	assert.Empty(t, outcome.Result.Strengths)
	assert.NotNil(t, outcome.Result.Strengths)
	assert.Empty(t, outcome.Result.MissingRequirements)
	assert.NotNil(t, outcome.Result.MissingRequirements)
}

func TestNormalizeProseDegrades(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	raw := "The candidate looks like a reasonable fit for the role, though I could not produce structured output."
	outcome := n.Normalize(raw)

	assert.Equal(t, models.SourceAIDegraded, outcome.Source)
	assert.Equal(t, raw, outcome.Result.Summary)
	assert.Equal(t, 75, outcome.Result.OverallScore)
	assert.NotEmpty(t, outcome.Result.Strengths)
	assert.NotEmpty(t, outcome.Result.Weaknesses)
	assert.NotEmpty(t, outcome.Result.Recommendations)
	assert.NotEmpty(t, outcome.Result.KeyMatches)
	assert.NotEmpty(t, outcome.Result.MissingRequirements)
	for _, v := range []int{
		outcome.Result.Alignment.TechnicalSkills,
		outcome.Result.Alignment.Experience,
		outcome.Result.Alignment.Education,
		outcome.Result.Alignment.SoftSkills,
	} {
		assert.GreaterOrEqual(t, v, 70)
		assert.LessOrEqual(t, v, 80)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	for _, raw := range []string{
		wellFormedResponse,
		"plain prose with no structure at all",
		"```json\n{\"overallScore\":0.5}\n```",
	} {
		first := n.Normalize(raw)
		second := n.Normalize(raw)
		assert.Equal(t, first, second)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	for _, raw := range []string{wellFormedResponse, "unstructured prose fallback"} {
		outcome := n.Normalize(raw)

		payload, err := json.Marshal(outcome.Result)
		require.NoError(t, err)

		var decoded models.AnalysisResult
		require.NoError(t, json.Unmarshal(payload, &decoded))
		assert.Equal(t, outcome.Result, decoded)
	}
}
