// Package structurer turns raw receipt text into a structured Receipt
// using a generative model. It is an optional enrichment stage: callers
// fall back to the local parser when the structurer is unavailable or
// fails, so errors here never surface to end users.
package structurer

import (
	"context"

	"github.com/mtavares/receiptwise/internal/domain/parser"
)

// Extractor structures raw OCR text into a Receipt. Implementations may
// call external services and should honor the context deadline.
type Extractor interface {
	Structure(ctx context.Context, rawText string) (parser.Receipt, error)
}

// generator produces model output for a prompt. It exists so tests can
// substitute a fake for the real client.
type generator interface {
	generate(ctx context.Context, model, prompt string) (string, error)
}
