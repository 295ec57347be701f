package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/smartspec/build-advisor/internal/domain/constants"
)

// openDB is replaced in tests
var openDB = sql.Open

// OpenPostgres connects and pings, retrying while the server comes up. When the
// target database does not exist yet it is created once through the maintenance DB.
func OpenPostgres(ctx context.Context, dsn string, attempts int, delay time.Duration, log *zap.Logger) (*sql.DB, error) {
	if attempts <= 0 {
		attempts = constants.PostgresConnectAttempts
	}
	if delay <= 0 {
		delay = constants.PostgresConnectDelay
	}
	if log == nil {
		log = zap.NewNop()
	}

	var lastErr error
	created := false
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := openDB("postgres", dsn)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				db.SetMaxOpenConns(10)
				db.SetMaxIdleConns(5)
				db.SetConnMaxLifetime(30 * time.Minute)
				return db, nil
			}
			_ = db.Close()
		}
		lastErr = err

		if !created && isDatabaseMissingError(err) {
			if createErr := ensurePostgresDatabase(ctx, dsn); createErr == nil {
				created = true
				log.Info("postgres database created")
				continue
			} else {
				lastErr = createErr
			}
		}

		log.Warn("postgres connect failed",
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.Error(lastErr),
		)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	if lastErr == nil {
		lastErr = errors.New("postgres connection failed")
	}
	return nil, fmt.Errorf("postgres: %w", lastErr)
}

// isDatabaseMissingError SQLSTATE 3D000 invalid_catalog_name
func isDatabaseMissingError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "3D000"
	}
	return false
}

func ensurePostgresDatabase(ctx context.Context, dsn string) error {
	adminDSN, dbName, ok := maintenanceDSN(dsn)
	if !ok {
		return errors.New("database name not found in dsn")
	}
	db, err := openDB("postgres", adminDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName))
	return err
}

// maintenanceDSN points dsn at the "postgres" database and returns the original name.
func maintenanceDSN(dsn string) (string, string, bool) {
	trimmed := strings.TrimSpace(dsn)
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") {
		u, err := url.Parse(trimmed)
		if err != nil || u.Host == "" {
			return "", "", false
		}
		name := strings.TrimPrefix(u.Path, "/")
		if name == "" || name == "postgres" {
			return "", "", false
		}
		u.Path = "/postgres"
		return u.String(), name, true
	}

	fields := strings.Fields(trimmed)
	name := ""
	for i, f := range fields {
		if v, ok := strings.CutPrefix(f, "dbname="); ok {
			name = strings.Trim(v, "'")
			fields[i] = "dbname=postgres"
		}
	}
	if name == "" || name == "postgres" {
		return "", "", false
	}
	return strings.Join(fields, " "), name, true
}
