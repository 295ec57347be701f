package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartspec/build-advisor/internal/domain/constants"
	"github.com/smartspec/build-advisor/internal/domain/entity"
	"github.com/smartspec/build-advisor/internal/domain/repository"
	"github.com/smartspec/build-advisor/internal/metrics"
)

// RecommendationUseCase PC build recommendation business logic
type RecommendationUseCase interface {
	// GetRecommendation prompt -> generate -> parse. Parse failures return ErrBadResponse,
	// provider failures are returned as they are.
	GetRecommendation(ctx context.Context, req entity.BuildRequest) (*entity.BuildRecommendation, error)

	// RecommendForUser same as GetRecommendation and stores the result in the user's history
	RecommendForUser(ctx context.Context, userID string, req entity.BuildRequest) (*entity.SavedBuild, error)

	History(ctx context.Context, userID string) ([]entity.SavedBuild, error)
	GetBuild(ctx context.Context, id string) (*entity.SavedBuild, error)
}

type recommendationUseCase struct {
	aiRepo       repository.AIRepository
	buildRepo    repository.BuildRepository
	historyLimit int
	log          *zap.Logger
}

// NewRecommendationUseCase buildRepo may be nil when history is disabled.
func NewRecommendationUseCase(
	aiRepo repository.AIRepository,
	buildRepo repository.BuildRepository,
	historyLimit int,
	log *zap.Logger,
) RecommendationUseCase {
	if historyLimit <= 0 {
		historyLimit = constants.DefaultHistoryLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &recommendationUseCase{
		aiRepo:       aiRepo,
		buildRepo:    buildRepo,
		historyLimit: historyLimit,
		log:          log.Named("recommendation"),
	}
}

func (u *recommendationUseCase) GetRecommendation(ctx context.Context, req entity.BuildRequest) (*entity.BuildRecommendation, error) {
	prompt := BuildPrompt(req)

	started := time.Now()
	raw, err := u.aiRepo.GenerateText(ctx, prompt)
	metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(metrics.OutcomeProviderError).Inc()
		return nil, fmt.Errorf("generate recommendation: %w", err)
	}

	rec, err := ParseRecommendation(raw, req)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(metrics.OutcomeBadResponse).Inc()
		u.log.Warn("model returned unparsable recommendation",
			zap.Error(err),
			zap.String("raw", truncate(raw, 2000)),
		)
		return nil, ErrBadResponse
	}

	metrics.RecommendationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return rec, nil
}

func (u *recommendationUseCase) RecommendForUser(ctx context.Context, userID string, req entity.BuildRequest) (*entity.SavedBuild, error) {
	rec, err := u.GetRecommendation(ctx, req)
	if err != nil {
		return nil, err
	}

	userID = strings.TrimSpace(userID)
	if userID == "" || u.buildRepo == nil {
		return &entity.SavedBuild{UserID: userID, Build: *rec, CreatedAt: time.Now().UTC()}, nil
	}

	saved, err := u.buildRepo.Save(ctx, userID, *rec)
	if err != nil {
		// History is secondary; the caller still gets the recommendation.
		u.log.Error("failed to save build", zap.String("user_id", userID), zap.Error(err))
		return &entity.SavedBuild{UserID: userID, Build: *rec, CreatedAt: time.Now().UTC()}, nil
	}
	metrics.BuildsSavedTotal.Inc()
	return &saved, nil
}

func (u *recommendationUseCase) History(ctx context.Context, userID string) ([]entity.SavedBuild, error) {
	if u.buildRepo == nil {
		return []entity.SavedBuild{}, nil
	}
	builds, err := u.buildRepo.ListByUser(ctx, strings.TrimSpace(userID), u.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return builds, nil
}

func (u *recommendationUseCase) GetBuild(ctx context.Context, id string) (*entity.SavedBuild, error) {
	if u.buildRepo == nil {
		return nil, repository.ErrBuildNotFound
	}
	return u.buildRepo.GetByID(ctx, strings.TrimSpace(id))
}

// ResponsePayload maps a recommendation result to what the transport sends:
// the recommendation, or the bad-response sentinel. Other errors stay errors.
func ResponsePayload(rec *entity.BuildRecommendation, err error) (interface{}, error) {
	if err != nil {
		if errors.Is(err, ErrBadResponse) {
			return entity.BadResponse, nil
		}
		return nil, err
	}
	return rec, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
