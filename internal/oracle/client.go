// Package oracle wraps the external generative-AI service behind a small
// client interface. The oracle is an untrusted, non-deterministic black box:
// callers must treat every response as unvalidated input and defend their
// own schemas.
package oracle

import "context"

// Client is the contract both oracle consumers (blueprint analysis and
// navigation query answering) depend on. Implementations return the raw
// completion text; parsing and validation live with the caller.
type Client interface {
	// CompleteJSON sends a prompt with a system instruction and requests a
	// JSON response body.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CompleteWithImage sends a prompt alongside inline image bytes and
	// enforces the given response schema on the JSON output.
	CompleteWithImage(ctx context.Context, systemPrompt, userPrompt string, image []byte, mimeType string, schema map[string]interface{}) (string, error)
}
