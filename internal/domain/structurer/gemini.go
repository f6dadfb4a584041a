package structurer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mtavares/receiptwise/internal/domain/parser"
)

// DefaultModelSequence is the rotation order tried when the config does
// not override it. Cheaper models come first.
var DefaultModelSequence = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-2.0-flash-exp",
}

// GeminiExtractor structures receipt text with Google Gemini, rotating
// through a model sequence until one produces usable output.
type GeminiExtractor struct {
	gen    generator
	models []string
	clock  func() time.Time
	logger *slog.Logger
}

// geminiGenerator is the production generator backed by the genai client.
type geminiGenerator struct {
	client *genai.Client
}

func (g *geminiGenerator) generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return out.String(), nil
}

// NewGemini creates a Gemini-backed extractor. models may be nil to use
// the default rotation sequence.
func NewGemini(ctx context.Context, apiKey string, models []string, logger *slog.Logger) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if len(models) == 0 {
		models = DefaultModelSequence
	}
	return &GeminiExtractor{
		gen:    &geminiGenerator{client: client},
		models: models,
		clock:  time.Now,
		logger: logger,
	}, nil
}

// Structure sends the prompt through the model rotation and converts
// the first usable response into a Receipt. It returns the last error
// when every model fails; the caller decides how to degrade.
func (e *GeminiExtractor) Structure(ctx context.Context, rawText string) (parser.Receipt, error) {
	prompt := buildPrompt(rawText)

	var lastErr error
	for _, model := range e.models {
		e.logger.Debug("attempting model", "model", model)

		text, err := e.gen.generate(ctx, model, prompt)
		if err != nil {
			lastErr = fmt.Errorf("model %s: %w", model, err)
			e.logger.Warn("model failed, trying next", "model", model, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastErr = fmt.Errorf("model %s: empty response", model)
			continue
		}

		receipt, err := decodeResponse(text, e.clock())
		if err != nil {
			lastErr = fmt.Errorf("model %s: %w", model, err)
			e.logger.Warn("unusable model response, trying next", "model", model, "error", err)
			continue
		}

		e.logger.Info("model succeeded", "model", model, "items", len(receipt.Items))
		return receipt, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no models configured")
	}
	e.logger.Error("all models failed in rotation", "models", e.models)
	return parser.Receipt{}, fmt.Errorf("model rotation exhausted: %w", lastErr)
}
