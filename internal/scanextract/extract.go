// Package scanextract turns raw OCR text from a medicine label or receipt
// into a structured scan result using a language model.
package scanextract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/pkg/anthropic"
)

// Options configures the extractor.
type Options struct {
	Model     string
	MaxTokens int64
}

// Extractor extracts structured fields from OCR text.
type Extractor struct {
	client anthropic.Client
	opts   Options
}

// NewExtractor creates a new Extractor backed by the given client.
func NewExtractor(client anthropic.Client, opts Options) *Extractor {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1024
	}
	return &Extractor{client: client, opts: opts}
}

// Extract sends the OCR text to the model and parses the structured result.
// An empty or whitespace-only input short-circuits to a low-confidence
// result without an API call.
func (e *Extractor) Extract(ctx context.Context, ocrText string) (*model.ScanResult, error) {
	if strings.TrimSpace(ocrText) == "" {
		return &model.ScanResult{Confidence: model.ScanConfidenceLow}, nil
	}

	temp := 0.0
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.opts.Model,
		MaxTokens:   e.opts.MaxTokens,
		System:      extractionSystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildExtractionPrompt(ocrText)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "scanextract: extract")
	}
	resp.Usage.Log(e.opts.Model, "scan_extraction")

	result, err := parseResult(resp.Text())
	if err != nil {
		return nil, err
	}

	zap.L().Debug("scanextract: extracted",
		zap.String("batch", result.BatchNumber),
		zap.String("medicine", result.MedicineName),
		zap.String("confidence", string(result.Confidence)),
	)

	return result, nil
}

// parseResult decodes the model's JSON reply. The model is instructed to
// emit bare JSON, but fenced code blocks slip through often enough that we
// strip them before decoding.
func parseResult(text string) (*model.ScanResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var result model.ScanResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, eris.Wrap(err, "scanextract: parse model response")
	}

	switch result.Confidence {
	case model.ScanConfidenceHigh, model.ScanConfidenceMedium, model.ScanConfidenceLow:
	default:
		result.Confidence = model.ScanConfidenceLow
	}

	return &result, nil
}
