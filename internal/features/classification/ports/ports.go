package ports

import "context"

// TextGenerator defines the interface for the external text-generation
// service backing the model-assisted classifier.
// This is a Secondary Port (Driven Port); its output is untrusted and the
// caller must tolerate malformed replies.
type TextGenerator interface {
	// Generate returns the raw model reply for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}
