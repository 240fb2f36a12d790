package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// PostgresWordStateStore implements the store.WordStateStore interface
// using a PostgreSQL database as the storage backend. Rows are keyed by
// (user_id, lemma) and written with an upsert, since derived state is
// always a full replacement computed from the event log.
type PostgresWordStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordStateStore creates a new PostgreSQL implementation of the
// WordStateStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWordStateStore(db store.DBTX, logger *slog.Logger) *PostgresWordStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWordStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_state_store")),
	}
}

// Ensure PostgresWordStateStore implements store.WordStateStore interface
var _ store.WordStateStore = (*PostgresWordStateStore)(nil)

const upsertWordStateQuery = `
	INSERT INTO word_memory_states
		(user_id, lemma, status, stability, difficulty, retrievability,
		 last_reviewed_at, next_review_at, review_count, lapse_count, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (user_id, lemma) DO UPDATE SET
		status = EXCLUDED.status,
		stability = EXCLUDED.stability,
		difficulty = EXCLUDED.difficulty,
		retrievability = EXCLUDED.retrievability,
		last_reviewed_at = EXCLUDED.last_reviewed_at,
		next_review_at = EXCLUDED.next_review_at,
		review_count = EXCLUDED.review_count,
		lapse_count = EXCLUDED.lapse_count,
		updated_at = EXCLUDED.updated_at
`

const selectWordStateColumns = `
	user_id, lemma, status, stability, difficulty, retrievability,
	last_reviewed_at, next_review_at, review_count, lapse_count, updated_at
`

// Get implements store.WordStateStore.Get
// Returns store.ErrWordStateNotFound if no state exists for the key.
func (s *PostgresWordStateStore) Get(ctx context.Context, userID, lemma string) (*domain.WordMemoryState, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT ` + selectWordStateColumns + `
		FROM word_memory_states
		WHERE user_id = $1 AND lemma = $2
	`

	state, err := scanWordState(s.db.QueryRowContext(ctx, query, userID, domain.NormalizeLemma(lemma)))
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, store.ErrWordStateNotFound
		}
		log.Error("failed to get word state",
			"user_id", userID,
			"lemma", lemma,
			"error", err)
		return nil, fmt.Errorf("failed to get word state: %w", mapped)
	}

	return state, nil
}

// Upsert implements store.WordStateStore.Upsert
func (s *PostgresWordStateStore) Upsert(ctx context.Context, state *domain.WordMemoryState) error {
	log := logger.FromContext(ctx)

	if err := state.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, upsertWordStateQuery,
		state.UserID,
		state.Lemma,
		string(state.Status),
		state.Stability,
		state.Difficulty,
		state.Retrievability,
		nullableTime(state.LastReviewedAt),
		nullableTime(state.NextReviewAt),
		state.ReviewCount,
		state.LapseCount,
		state.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to upsert word state",
			"user_id", state.UserID,
			"lemma", state.Lemma,
			"error", err)
		return fmt.Errorf("failed to upsert word state: %w", MapError(err))
	}

	return nil
}

// UpsertMultiple implements store.WordStateStore.UpsertMultiple
// When the store holds a plain connection the batch runs inside a
// transaction; inside an existing transaction it joins it.
func (s *PostgresWordStateStore) UpsertMultiple(ctx context.Context, states []*domain.WordMemoryState) error {
	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txStore := &PostgresWordStateStore{db: tx, logger: s.logger}
			return txStore.UpsertMultiple(ctx, states)
		})
	}

	for _, state := range states {
		if err := s.Upsert(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// ListByUser implements store.WordStateStore.ListByUser
func (s *PostgresWordStateStore) ListByUser(ctx context.Context, userID string) ([]domain.WordMemoryState, error) {
	query := `
		SELECT ` + selectWordStateColumns + `
		FROM word_memory_states
		WHERE user_id = $1
		ORDER BY lemma ASC
	`
	return s.queryWordStates(ctx, query, userID)
}

// ListDue implements store.WordStateStore.ListDue
// Ignored words never surface in the due queue.
func (s *PostgresWordStateStore) ListDue(ctx context.Context, userID string, now time.Time) ([]domain.WordMemoryState, error) {
	query := `
		SELECT ` + selectWordStateColumns + `
		FROM word_memory_states
		WHERE user_id = $1
		  AND status <> $2
		  AND next_review_at IS NOT NULL
		  AND next_review_at <= $3
		ORDER BY next_review_at ASC, lemma ASC
	`
	return s.queryWordStates(ctx, query, userID, string(domain.WordStatusIgnored), now.UTC())
}

func (s *PostgresWordStateStore) queryWordStates(ctx context.Context, query string, args ...interface{}) ([]domain.WordMemoryState, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query word states", "error", err)
		return nil, fmt.Errorf("failed to query word states: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var states []domain.WordMemoryState
	for rows.Next() {
		state, err := scanWordState(rows)
		if err != nil {
			log.Error("failed to scan word state row", "error", err)
			return nil, fmt.Errorf("failed to scan word state row: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating word state rows", "error", err)
		return nil, fmt.Errorf("error iterating word state rows: %w", err)
	}

	return states, nil
}

func scanWordState(row rowScanner) (*domain.WordMemoryState, error) {
	var state domain.WordMemoryState
	var status string
	var lastReviewedAt sql.NullTime
	var nextReviewAt sql.NullTime

	err := row.Scan(
		&state.UserID,
		&state.Lemma,
		&status,
		&state.Stability,
		&state.Difficulty,
		&state.Retrievability,
		&lastReviewedAt,
		&nextReviewAt,
		&state.ReviewCount,
		&state.LapseCount,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	state.Status = domain.WordStatus(status)
	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time.UTC()
		state.LastReviewedAt = &t
	}
	if nextReviewAt.Valid {
		t := nextReviewAt.Time.UTC()
		state.NextReviewAt = &t
	}
	state.UpdatedAt = state.UpdatedAt.UTC()
	return &state, nil
}

// nullableTime maps a nil time pointer to NULL.
func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
