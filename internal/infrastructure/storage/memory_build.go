package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartspec/build-advisor/internal/domain/constants"
	"github.com/smartspec/build-advisor/internal/domain/entity"
	"github.com/smartspec/build-advisor/internal/domain/repository"
)

type memoryBuildRepository struct {
	mu      sync.RWMutex
	byUser  map[string][]entity.SavedBuild
	byID    map[string]entity.SavedBuild
	maxSize int
	now     func() time.Time
}

// NewMemoryBuildRepository in-memory build history, at most maxPerUser builds per user
func NewMemoryBuildRepository(maxPerUser int) repository.BuildRepository {
	if maxPerUser <= 0 {
		maxPerUser = constants.DefaultMaxBuildsPerUser
	}
	return &memoryBuildRepository{
		byUser:  make(map[string][]entity.SavedBuild),
		byID:    make(map[string]entity.SavedBuild),
		maxSize: maxPerUser,
		now:     time.Now,
	}
}

func (m *memoryBuildRepository) Save(ctx context.Context, userID string, build entity.BuildRecommendation) (entity.SavedBuild, error) {
	saved := entity.SavedBuild{
		ID:        uuid.NewString(),
		UserID:    userID,
		Build:     build,
		CreatedAt: m.now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	builds := append(m.byUser[userID], saved)
	// Oldest builds are dropped once the per-user cap is reached
	if len(builds) > m.maxSize {
		for _, old := range builds[:len(builds)-m.maxSize] {
			delete(m.byID, old.ID)
		}
		builds = builds[len(builds)-m.maxSize:]
	}
	m.byUser[userID] = builds
	m.byID[saved.ID] = saved
	return saved, nil
}

func (m *memoryBuildRepository) GetByID(ctx context.Context, id string) (*entity.SavedBuild, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrBuildNotFound
	}
	return &b, nil
}

func (m *memoryBuildRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.SavedBuild, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	builds := m.byUser[userID]
	n := len(builds)
	if limit > 0 && n > limit {
		n = limit
	}
	// Newest first, copied so callers can iterate without holding the lock
	out := make([]entity.SavedBuild, 0, n)
	for i := len(builds) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, builds[i])
	}
	return out, nil
}
