package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobfit/cv-analyzer/internal/models"
)

type fakeGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestAnalyzer(gen TextGenerator) Analyzer {
	return NewAnalyzer(gen, NewNormalizer(zap.NewNop()), zap.NewNop())
}

func TestAnalyzeDocumentsSuccess(t *testing.T) {
	gen := &fakeGenerator{response: wellFormedResponse}
	a := newTestAnalyzer(gen)

	jd := validJobDescription(t)
	cv := validCV(t)

	outcome, err := a.AnalyzeDocuments(context.Background(), models.AnalysisRequest{
		JobDescription: jd,
		CV:             cv,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SourceAI, outcome.Source)
	assert.Equal(t, 85, outcome.Result.OverallScore)
	assert.Equal(t, models.Alignment{TechnicalSkills: 80, Experience: 90, Education: 75, SoftSkills: 85}, outcome.Result.Alignment)
	assert.Equal(t, "Good match overall", outcome.Result.Summary)

	// The single fixed prompt template embeds both documents.
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.lastPrompt, jd)
	assert.Contains(t, gen.lastPrompt, cv)
}

func TestAnalyzeDocumentsValidationErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{response: wellFormedResponse}
	a := newTestAnalyzer(gen)

	_, err := a.AnalyzeDocuments(context.Background(), models.AnalysisRequest{
		JobDescription: "too short",
		CV:             validCV(t),
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Zero(t, gen.calls, "validation failures must not reach the AI")
}

func TestAnalyzeDocumentsAbsorbsAIFailure(t *testing.T) {
	kinds := []ErrorKind{
		KindNetwork, KindAuth, KindBadRequest, KindNotFound,
		KindRateLimit, KindServiceUnavailable, KindMalformedResponse, KindTimeout,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			gen := &fakeGenerator{err: newAnalysisError(kind, 0, nil, "upstream trouble")}
			a := newTestAnalyzer(gen)

			outcome, err := a.AnalyzeDocuments(context.Background(), models.AnalysisRequest{
				JobDescription: validJobDescription(t),
				CV:             validCV(t),
			})
			require.NoError(t, err, "AI failures must not surface once validation passed")

			assert.Equal(t, models.SourceMockFallback, outcome.Source)
			assert.Equal(t, MockAnalysisResult(), outcome.Result)
			assert.Equal(t, 1, gen.calls)
		})
	}
}

func TestAnalyzeDocumentsFallbackMarkerShortCircuits(t *testing.T) {
	gen := &fakeGenerator{response: wellFormedResponse}
	a := newTestAnalyzer(gen)

	outcome, err := a.AnalyzeDocuments(context.Background(), models.AnalysisRequest{
		JobDescription: validJobDescription(t),
		CV:             fallbackText,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SourceMockFallback, outcome.Source)
	assert.Equal(t, MockAnalysisResult(), outcome.Result)
	assert.Zero(t, gen.calls, "fallback input must not consume AI quota")
}

func TestAnalyzeDocumentsDegradedFlagShortCircuits(t *testing.T) {
	gen := &fakeGenerator{response: wellFormedResponse}
	a := newTestAnalyzer(gen)

	outcome, err := a.AnalyzeDocuments(context.Background(), models.AnalysisRequest{
		JobDescription:     validJobDescription(t),
		CV:                 validCV(t),
		ExtractionDegraded: true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SourceMockFallback, outcome.Source)
	assert.Zero(t, gen.calls)
}

func TestAnalyzeDocumentsDegradedParse(t *testing.T) {
	gen := &fakeGenerator{response: "I could not produce JSON, but the candidate looks fine."}
	a := newTestAnalyzer(gen)

	outcome, err := a.AnalyzeDocuments(context.Background(), models.AnalysisRequest{
		JobDescription: validJobDescription(t),
		CV:             validCV(t),
	})
	require.NoError(t, err)

	assert.Equal(t, models.SourceAIDegraded, outcome.Source)
	assert.Equal(t, gen.response, outcome.Result.Summary)
	assert.Equal(t, 75, outcome.Result.OverallScore)
}

func TestMockAnalysisResultIsDeterministicAndComplete(t *testing.T) {
	first := MockAnalysisResult()
	second := MockAnalysisResult()
	assert.Equal(t, first, second)

	assert.NotZero(t, first.OverallScore)
	assert.NotEmpty(t, first.Strengths)
	assert.NotEmpty(t, first.Weaknesses)
	assert.NotEmpty(t, first.Recommendations)
	assert.NotEmpty(t, first.KeyMatches)
	assert.NotEmpty(t, first.MissingRequirements)
	assert.NotEmpty(t, first.Summary)
}
