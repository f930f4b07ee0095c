package core

import "context"

// Agent is the text-generation capability consumed by the story phases.
// Implementations own transport concerns: rate limiting, retry, timeouts.
type Agent interface {
	// Complete sends a system and user prompt and returns the raw completion.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// CompleteJSON is Complete with the response constrained to a single
	// JSON object matching the shape described in the prompt.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Storage persists run artifacts (architecture JSON, narrative text).
type Storage interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, pattern string) ([]string, error)
}
