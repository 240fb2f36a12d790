package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// PostgresSnapshotStore implements the store.RemoteSnapshotStore interface
// using a PostgreSQL database as the storage backend. Each save generates
// a fresh random version token; the previous token must ride along in the
// UPDATE predicate, which makes concurrent saves from two devices resolve
// to exactly one winner.
type PostgresSnapshotStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSnapshotStore creates a new PostgreSQL implementation of the
// RemoteSnapshotStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSnapshotStore(db store.DBTX, logger *slog.Logger) *PostgresSnapshotStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSnapshotStore{
		db:     db,
		logger: logger.With(slog.String("component", "snapshot_store")),
	}
}

// Ensure PostgresSnapshotStore implements store.RemoteSnapshotStore interface
var _ store.RemoteSnapshotStore = (*PostgresSnapshotStore)(nil)

// Fetch implements store.RemoteSnapshotStore.Fetch
// Returns store.ErrSnapshotNotFound when no snapshot exists for the key.
func (s *PostgresSnapshotStore) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT payload, version
		FROM sync_snapshots
		WHERE user_key = $1
	`

	var payload []byte
	var version string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload, &version)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, "", store.ErrSnapshotNotFound
		}
		log.Error("failed to fetch sync snapshot",
			"user_key", key,
			"error", err)
		return nil, "", fmt.Errorf("failed to fetch sync snapshot: %w", mapped)
	}

	return payload, version, nil
}

// Save implements store.RemoteSnapshotStore.Save
// An empty expectedVersion means a first write: the INSERT fails with
// ErrRemoteConflict if another device created the row first. Otherwise
// the UPDATE only lands when the stored version still matches, and zero
// rows affected means a concurrent save won.
func (s *PostgresSnapshotStore) Save(ctx context.Context, key string, payload []byte, expectedVersion string) (string, error) {
	log := logger.FromContext(ctx)

	newVersion := uuid.NewString()
	now := time.Now().UTC()

	if expectedVersion == "" {
		query := `
			INSERT INTO sync_snapshots (user_key, payload, version, updated_at)
			VALUES ($1, $2, $3, $4)
		`
		_, err := s.db.ExecContext(ctx, query, key, payload, newVersion, now)
		if err != nil {
			if IsUniqueViolation(err, "") {
				return "", store.ErrRemoteConflict
			}
			log.Error("failed to create sync snapshot",
				"user_key", key,
				"error", err)
			return "", fmt.Errorf("failed to create sync snapshot: %w", MapError(err))
		}
		return newVersion, nil
	}

	query := `
		UPDATE sync_snapshots
		SET payload = $1, version = $2, updated_at = $3
		WHERE user_key = $4 AND version = $5
	`
	result, err := s.db.ExecContext(ctx, query, payload, newVersion, now, key, expectedVersion)
	if err != nil {
		log.Error("failed to update sync snapshot",
			"user_key", key,
			"error", err)
		return "", fmt.Errorf("failed to update sync snapshot: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return "", store.ErrRemoteConflict
	}

	return newVersion, nil
}
