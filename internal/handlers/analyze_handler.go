package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobfit/cv-analyzer/internal/models"
	"jobfit/cv-analyzer/internal/services"
)

type AnalyzeHandler struct {
	analyzer  services.Analyzer
	extractor services.PDFExtractor
	logger    *zap.Logger
}

func NewAnalyzeHandler(
	analyzer services.Analyzer,
	extractor services.PDFExtractor,
	logger *zap.Logger,
) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeHandler{
		analyzer:  analyzer,
		extractor: extractor,
		logger:    logger,
	}
}

// HandleAnalyze handles POST /analyze: both documents already extracted to
// plain text by the caller.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	requestID := h.tagRequest(c)

	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	return h.analyze(c, requestID, models.AnalysisRequest{
		JobDescription: req.JobDescription,
		CV:             req.CV,
	})
}

// HandleUploadAndAnalyze handles POST /upload-and-analyze: both documents as
// base64-encoded PDFs. Extraction runs in non-strict mode, so a document
// that cannot be parsed degrades into placeholder content and the analysis
// falls back to the canned result instead of failing the request.
func (h *AnalyzeHandler) HandleUploadAndAnalyze(c *fiber.Ctx) error {
	requestID := h.tagRequest(c)

	var req models.UploadAndAnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if req.JobDescriptionFile == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_description_file is required",
		})
	}
	if req.CVFile == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cv_file is required",
		})
	}

	ctx := c.UserContext()

	jdDoc, err := h.extractor.Extract(ctx, req.JobDescriptionFile, false)
	if err != nil {
		return h.fail(c, requestID, "job description extraction", err)
	}

	cvDoc, err := h.extractor.Extract(ctx, req.CVFile, false)
	if err != nil {
		return h.fail(c, requestID, "cv extraction", err)
	}

	if jdDoc.IsFallback || cvDoc.IsFallback {
		h.logger.Warn("document extraction degraded",
			zap.String("request_id", requestID),
			zap.Bool("job_description_fallback", jdDoc.IsFallback),
			zap.Bool("cv_fallback", cvDoc.IsFallback),
		)
	}

	return h.analyze(c, requestID, models.AnalysisRequest{
		JobDescription:     jdDoc.Text,
		CV:                 cvDoc.Text,
		ExtractionDegraded: jdDoc.IsFallback || cvDoc.IsFallback,
	})
}

func (h *AnalyzeHandler) analyze(c *fiber.Ctx, requestID string, req models.AnalysisRequest) error {
	outcome, err := h.analyzer.AnalyzeDocuments(c.UserContext(), req)
	if err != nil {
		if services.IsValidationError(err) {
			h.logger.Info("analysis request rejected",
				zap.String("request_id", requestID),
				zap.String("reason", err.Error()),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return h.fail(c, requestID, "analysis", err)
	}

	h.logger.Info("analysis completed",
		zap.String("request_id", requestID),
		zap.String("source", string(outcome.Source)),
		zap.Int("overall_score", outcome.Result.OverallScore),
	)

	return c.JSON(models.AnalyzeResponse{
		Success: true,
		Source:  outcome.Source,
		Data:    outcome.Result,
	})
}

func (h *AnalyzeHandler) tagRequest(c *fiber.Ctx) string {
	requestID := uuid.NewString()
	c.Set("X-Request-ID", requestID)
	return requestID
}

func (h *AnalyzeHandler) fail(c *fiber.Ctx, requestID, step string, err error) error {
	h.logger.Error("request failed",
		zap.String("request_id", requestID),
		zap.String("step", step),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": step + " failed",
	})
}
