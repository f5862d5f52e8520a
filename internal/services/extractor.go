package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"jobfit/cv-analyzer/internal/models"
)

// FallbackMarker prefixes every synthetic document produced when extraction
// fails. The analyzer short-circuits to its canned result when it sees it.
const FallbackMarker = "Placeholder document content:"

// fallbackText is the full synthetic document returned in non-strict mode.
const fallbackText = FallbackMarker + " text extraction did not produce any readable content. " +
	"This placeholder stands in for the uploaded document so that analysis can proceed in degraded mode."

const pdfMagic = "%PDF"

var (
	dataURLPrefixRe  = regexp.MustCompile(`^data:[^;,]+;base64,`)
	base64AlphabetRe = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)
)

// errParseTimeout distinguishes a timed-out parse from a parser error; the
// extractor does not retry timeouts.
var errParseTimeout = errors.New("PDF parsing timed out")

// ContainsFallbackMarker reports whether text is (or embeds) extractor
// fallback content. Kept as a secondary signal for callers that only carry
// plain text; the primary signal is ExtractedDocument.IsFallback.
func ContainsFallbackMarker(text string) bool {
	return strings.Contains(text, FallbackMarker)
}

// PDFExtractor decodes base64-encoded PDFs and extracts their plain text.
//
// In the default (non-strict) mode any failure after input decoding yields a
// clearly labeled placeholder document instead of an error: a degraded
// analysis over placeholder input is preferable to no analysis at all.
// Strict mode surfaces the underlying error instead.
type PDFExtractor interface {
	Extract(ctx context.Context, encoded string, strict bool) (*models.ExtractedDocument, error)
	ExtractMetadata(ctx context.Context, encoded string) (*models.ExtractedDocument, error)
}

// ExtractorOptions bounds extraction work. Zero fields fall back to defaults.
type ExtractorOptions struct {
	MaxDecodedSize    int64
	ParseTimeout      time.Duration
	MaxAttempts       int
	RetryInitialDelay time.Duration
}

const (
	defaultMaxDecodedSize    = 50 << 20
	defaultParseTimeout      = 30 * time.Second
	defaultMaxAttempts       = 2
	defaultRetryInitialDelay = 500 * time.Millisecond
)

type pdfExtractor struct {
	opts   ExtractorOptions
	logger *zap.Logger

	// engine memoizes parser initialization: concurrent first callers
	// converge on a single initialization outcome, cached for the process
	// lifetime.
	engine func() (pdfEngine, error)
}

func NewPDFExtractor(opts ExtractorOptions, logger *zap.Logger) PDFExtractor {
	if opts.MaxDecodedSize <= 0 {
		opts.MaxDecodedSize = defaultMaxDecodedSize
	}
	if opts.ParseTimeout <= 0 {
		opts.ParseTimeout = defaultParseTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryInitialDelay <= 0 {
		opts.RetryInitialDelay = defaultRetryInitialDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &pdfExtractor{
		opts:   opts,
		logger: logger,
		engine: sync.OnceValues(newPDFEngine),
	}
}

// Extract implements PDFExtractor.
func (e *pdfExtractor) Extract(ctx context.Context, encoded string, strict bool) (*models.ExtractedDocument, error) {
	data, err := e.decodePayload(encoded)
	if err != nil {
		if strict {
			return nil, err
		}
		e.logger.Warn("document validation failed, returning fallback content", zap.Error(err))
		return fallbackDocument(), nil
	}

	doc, err := e.parseWithRetry(ctx, data)
	if err != nil {
		if strict {
			return nil, err
		}
		e.logger.Warn("PDF extraction failed, returning fallback content",
			zap.Int("payload_bytes", len(data)),
			zap.Error(err),
		)
		return fallbackDocument(), nil
	}

	return doc, nil
}

// ExtractMetadata returns page count and document info without requiring
// extractable text, so image-only PDFs can still be inspected.
func (e *pdfExtractor) ExtractMetadata(ctx context.Context, encoded string) (*models.ExtractedDocument, error) {
	data, err := e.decodePayload(encoded)
	if err != nil {
		return nil, err
	}

	engine, err := e.engine()
	if err != nil {
		return nil, fmt.Errorf("initialize PDF engine: %w", err)
	}

	pageCount, metadata, err := engine.Info(data)
	if err != nil {
		return nil, fmt.Errorf("read PDF metadata: %w", err)
	}

	return &models.ExtractedDocument{
		PageCount: pageCount,
		Metadata:  metadata,
	}, nil
}

// decodePayload validates and decodes the base64 document. All failures here
// are ValidationErrors: they describe corrupt or wrong-type input, not
// parser trouble.
func (e *pdfExtractor) decodePayload(encoded string) ([]byte, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, NewValidationError("document payload must not be empty")
	}

	payload := dataURLPrefixRe.ReplaceAllString(encoded, "")
	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, payload)

	if !base64AlphabetRe.MatchString(payload) {
		return nil, NewValidationError("document payload is not valid base64")
	}

	if estimated := int64(len(payload)) * 3 / 4; estimated > e.opts.MaxDecodedSize {
		return nil, NewValidationError("document too large: decoded size would exceed %d bytes", e.opts.MaxDecodedSize)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, NewValidationError("document payload is not valid base64: %v", err)
	}

	if len(data) < len(pdfMagic) || string(data[:len(pdfMagic)]) != pdfMagic {
		return nil, NewValidationError("not a valid PDF document: missing %%PDF header")
	}

	return data, nil
}

func (e *pdfExtractor) parseWithRetry(ctx context.Context, data []byte) (*models.ExtractedDocument, error) {
	engine, err := e.engine()
	if err != nil {
		return nil, fmt.Errorf("initialize PDF engine: %w", err)
	}

	var lastErr error
	delay := e.opts.RetryInitialDelay

	for attempt := 1; attempt <= e.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			e.logger.Info("retrying PDF parse",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		doc, err := e.parseOnce(ctx, engine, data)
		if err == nil {
			if strings.TrimSpace(doc.Text) == "" {
				// Image-only or encrypted document; retrying will not help.
				return nil, errors.New("PDF contains no extractable text")
			}
			doc.Text = strings.TrimSpace(doc.Text)
			return doc, nil
		}

		if errors.Is(err, errParseTimeout) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		lastErr = err
	}

	return nil, fmt.Errorf("PDF parse failed after %d attempts: %w", e.opts.MaxAttempts, lastErr)
}

// parseOnce runs a single parse under the configured timeout. The parse
// goroutine is not cancelled once started; on expiry its result is dropped.
func (e *pdfExtractor) parseOnce(ctx context.Context, engine pdfEngine, data []byte) (*models.ExtractedDocument, error) {
	type parseResult struct {
		doc *models.ExtractedDocument
		err error
	}

	results := make(chan parseResult, 1)
	go func() {
		doc, err := engine.Parse(data)
		results <- parseResult{doc: doc, err: err}
	}()

	timer := time.NewTimer(e.opts.ParseTimeout)
	defer timer.Stop()

	select {
	case res := <-results:
		return res.doc, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, errParseTimeout
	}
}

func fallbackDocument() *models.ExtractedDocument {
	return &models.ExtractedDocument{
		Text:       fallbackText,
		IsFallback: true,
	}
}

// pdfEngine is the parsing capability behind the extractor. It exists so
// tests can substitute a deterministic implementation and so initialization
// failure stays on the fallback path.
type pdfEngine interface {
	Parse(data []byte) (*models.ExtractedDocument, error)
	Info(data []byte) (pageCount int, metadata map[string]string, err error)
}

func newPDFEngine() (pdfEngine, error) {
	return &ledongthucEngine{}, nil
}

type ledongthucEngine struct{}

func (*ledongthucEngine) Parse(data []byte) (doc *models.ExtractedDocument, err error) {
	// The underlying parser panics on some malformed cross-reference tables;
	// convert that into a regular parse error.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("PDF parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPages := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest.
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return &models.ExtractedDocument{
		Text:      textBuilder.String(),
		PageCount: totalPages,
	}, nil
}

func (*ledongthucEngine) Info(data []byte) (pageCount int, metadata map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	metadata = make(map[string]string)
	info := reader.Trailer().Key("Info")
	if info.Kind() == pdf.Dict {
		for _, key := range []string{"Producer", "Creator", "Title", "Author"} {
			if v := info.Key(key); v.Kind() == pdf.String {
				metadata[strings.ToLower(key)] = v.RawString()
			}
		}
	}

	return reader.NumPage(), metadata, nil
}
