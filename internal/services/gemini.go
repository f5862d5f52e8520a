package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// TextGenerator is the AI invocation boundary: one prompt in, one raw text
// response out. Implementations perform no retries; AI calls are costly and
// rate-limited, so failing fast and letting the analyzer decide beats
// automatic retry storms. Errors are always *AnalysisError.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiService struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	logger    *zap.Logger
}

// GeminiOptions configures the Gemini-backed TextGenerator. Endpoint
// overrides the API base URL when set; Model defaults to a flash model.
type GeminiOptions struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

func NewGeminiService(ctx context.Context, opts GeminiOptions, logger *zap.Logger) (TextGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(opts.Endpoint) != "" {
		cfg.HTTPOptions.BaseURL = opts.Endpoint
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	return &geminiService{
		client:    client,
		modelName: model,
		timeout:   opts.Timeout,
		logger:    logger,
	}, nil
}

// Generate implements TextGenerator: a single generateContent call with the
// generation parameters used for comparative document analysis.
func (g *geminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", newAnalysisError(KindBadRequest, 0, nil, "prompt must not be empty")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopP:            genai.Ptr[float32](0.95),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: 2048,
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		classified := classifyGenerateError(err)
		g.logger.Error("gemini generate content failed",
			zap.String("model", g.modelName),
			zap.String("kind", string(classified.Kind)),
			zap.Int("http_status", classified.HTTPStatus),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", classified
	}

	if resp == nil {
		return "", newAnalysisError(KindMalformedResponse, 0, nil, "AI returned an empty response")
	}

	text := resp.Text()
	if text == "" {
		return "", newAnalysisError(KindMalformedResponse, 0, nil, "AI response carried no text payload")
	}

	g.logger.Debug("gemini generate content succeeded",
		zap.String("model", g.modelName),
		zap.Int("prompt_length", len(prompt)),
		zap.Int("response_length", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return text, nil
}
