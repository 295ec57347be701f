package repository

import "context"

// AIRepository hosted text-generation capability
type AIRepository interface {
	// GenerateText sends a prompt and returns the raw model text
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Close releases the underlying client
	Close() error
}
