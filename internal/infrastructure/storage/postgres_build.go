package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/smartspec/build-advisor/internal/domain/entity"
	"github.com/smartspec/build-advisor/internal/domain/repository"
)

type postgresBuildRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresBuildRepository build history in the builds table (see migrations)
func NewPostgresBuildRepository(db *sql.DB) repository.BuildRepository {
	return &postgresBuildRepository{db: db, now: time.Now}
}

func (p *postgresBuildRepository) Save(ctx context.Context, userID string, build entity.BuildRecommendation) (entity.SavedBuild, error) {
	payload, err := json.Marshal(build)
	if err != nil {
		return entity.SavedBuild{}, fmt.Errorf("encode build: %w", err)
	}
	saved := entity.SavedBuild{
		ID:        uuid.NewString(),
		UserID:    userID,
		Build:     build,
		CreatedAt: p.now().UTC(),
	}
	_, err = p.db.ExecContext(ctx, `
	INSERT INTO builds (build_id, user_id, build_json, created_at)
	VALUES ($1, $2, $3, $4)
	`, saved.ID, saved.UserID, payload, saved.CreatedAt)
	if err != nil {
		return entity.SavedBuild{}, fmt.Errorf("insert build: %w", err)
	}
	return saved, nil
}

func (p *postgresBuildRepository) GetByID(ctx context.Context, id string) (*entity.SavedBuild, error) {
	// build_id is a UUID column; anything else cannot match
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrBuildNotFound
	}
	row := p.db.QueryRowContext(ctx, `
	SELECT build_id, user_id, build_json, created_at
	FROM builds
	WHERE build_id = $1`, id)

	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrBuildNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (p *postgresBuildRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.SavedBuild, error) {
	// LIMIT NULL means no limit in Postgres
	var lim interface{}
	if limit > 0 {
		lim = limit
	}
	rows, err := p.db.QueryContext(ctx, `
	SELECT build_id, user_id, build_json, created_at
	FROM builds
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2`, userID, lim)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	res := []entity.SavedBuild{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return res, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBuild(row rowScanner) (*entity.SavedBuild, error) {
	var (
		b       entity.SavedBuild
		payload []byte
	)
	if err := row.Scan(&b.ID, &b.UserID, &payload, &b.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &b.Build); err != nil {
		return nil, fmt.Errorf("decode build %s: %w", b.ID, err)
	}
	return &b, nil
}
