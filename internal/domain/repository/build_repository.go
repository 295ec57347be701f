package repository

import (
	"context"
	"errors"

	"github.com/smartspec/build-advisor/internal/domain/entity"
)

// ErrBuildNotFound no saved build with the requested id
var ErrBuildNotFound = errors.New("build not found")

// BuildRepository saved recommendation history
type BuildRepository interface {
	// Save stores a recommendation for a user and returns the stored record
	Save(ctx context.Context, userID string, build entity.BuildRecommendation) (entity.SavedBuild, error)

	// GetByID returns ErrBuildNotFound when id is unknown
	GetByID(ctx context.Context, id string) (*entity.SavedBuild, error)

	// ListByUser newest first, at most limit records (limit <= 0 means no limit)
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.SavedBuild, error)
}
