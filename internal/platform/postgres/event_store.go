package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// PostgresEventStore implements the store.EventStore interface
// using a PostgreSQL database as the storage backend. The table is
// append-only; ON CONFLICT DO NOTHING on the primary key keeps
// replicated appends idempotent.
type PostgresEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the
// EventStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresEventStore(db store.DBTX, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

const insertEventQuery = `
	INSERT INTO review_events
		(id, user_id, lemma, grade, reviewed_at, duration_ms,
		 scheduled_days, review_state, device_id, legacy_source_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO NOTHING
`

const selectEventColumns = `
	id, user_id, lemma, grade, reviewed_at, duration_ms,
	scheduled_days, review_state, device_id, COALESCE(legacy_source_id, '')
`

// Append implements store.EventStore.Append
// It saves one review event; an event whose ID is already stored is
// silently skipped so the log stays a grow-only set.
func (s *PostgresEventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContext(ctx)

	if err := event.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, insertEventQuery,
		event.ID,
		event.UserID,
		event.Lemma,
		int(event.Grade),
		event.ReviewedAt.UTC(),
		event.DurationMs,
		event.ScheduledDays,
		string(event.ReviewState),
		event.DeviceID,
		nullableString(event.LegacySourceID),
	)
	if err != nil {
		log.Error("failed to append review event",
			"event_id", event.ID,
			"user_id", event.UserID,
			"error", err)
		return fmt.Errorf("failed to append review event: %w", MapError(err))
	}

	return nil
}

// AppendMultiple implements store.EventStore.AppendMultiple
// It saves a batch of events, skipping duplicates. When the store holds
// a plain connection the batch runs inside a transaction so a partial
// merge never lands; inside an existing transaction it joins it.
func (s *PostgresEventStore) AppendMultiple(ctx context.Context, events []*domain.ReviewEvent) error {
	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txStore := &PostgresEventStore{db: tx, logger: s.logger}
			return txStore.AppendMultiple(ctx, events)
		})
	}

	for _, event := range events {
		if err := s.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements store.EventStore.GetByID
// Returns store.ErrEventNotFound if the event does not exist.
func (s *PostgresEventStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewEvent, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT ` + selectEventColumns + `
		FROM review_events
		WHERE id = $1
	`

	event, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, store.ErrEventNotFound
		}
		log.Error("failed to get review event",
			"event_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get review event: %w", mapped)
	}

	return event, nil
}

// ListByUser implements store.EventStore.ListByUser
// Events come back in (reviewed_at, id) ascending order, the canonical
// replay order for state projection.
func (s *PostgresEventStore) ListByUser(ctx context.Context, userID string) ([]domain.ReviewEvent, error) {
	query := `
		SELECT ` + selectEventColumns + `
		FROM review_events
		WHERE user_id = $1
		ORDER BY reviewed_at ASC, id ASC
	`
	return s.queryEvents(ctx, query, userID)
}

// ListByUserLemma implements store.EventStore.ListByUserLemma
func (s *PostgresEventStore) ListByUserLemma(ctx context.Context, userID, lemma string) ([]domain.ReviewEvent, error) {
	query := `
		SELECT ` + selectEventColumns + `
		FROM review_events
		WHERE user_id = $1 AND lemma = $2
		ORDER BY reviewed_at ASC, id ASC
	`
	return s.queryEvents(ctx, query, userID, domain.NormalizeLemma(lemma))
}

// ListRecent implements store.EventStore.ListRecent
// Returns the newest events first, capped at limit.
func (s *PostgresEventStore) ListRecent(ctx context.Context, userID string, limit int) ([]domain.ReviewEvent, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT ` + selectEventColumns + `
		FROM review_events
		WHERE user_id = $1
		ORDER BY reviewed_at DESC, id DESC
		LIMIT $2
	`
	return s.queryEvents(ctx, query, userID, limit)
}

// ExistsImplicitOn implements store.EventStore.ExistsImplicitOn
// The day window is the UTC calendar day containing the given time.
func (s *PostgresEventStore) ExistsImplicitOn(ctx context.Context, userID, lemma string, day time.Time) (bool, error) {
	log := logger.FromContext(ctx)

	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM review_events
			WHERE user_id = $1 AND lemma = $2
			  AND review_state = $3
			  AND reviewed_at >= $4 AND reviewed_at < $5
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query,
		userID,
		domain.NormalizeLemma(lemma),
		string(domain.ReviewStateImplicitExposure),
		dayStart,
		dayEnd,
	).Scan(&exists)
	if err != nil {
		log.Error("failed to check implicit exposure",
			"user_id", userID,
			"lemma", lemma,
			"error", err)
		return false, fmt.Errorf("failed to check implicit exposure: %w", MapError(err))
	}

	return exists, nil
}

// queryEvents runs a SELECT returning event rows and scans them.
func (s *PostgresEventStore) queryEvents(ctx context.Context, query string, args ...interface{}) ([]domain.ReviewEvent, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review events", "error", err)
		return nil, fmt.Errorf("failed to query review events: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var events []domain.ReviewEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			log.Error("failed to scan review event row", "error", err)
			return nil, fmt.Errorf("failed to scan review event row: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating review event rows", "error", err)
		return nil, fmt.Errorf("error iterating review event rows: %w", err)
	}

	return events, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.ReviewEvent, error) {
	var event domain.ReviewEvent
	var grade int
	var state string

	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Lemma,
		&grade,
		&event.ReviewedAt,
		&event.DurationMs,
		&event.ScheduledDays,
		&state,
		&event.DeviceID,
		&event.LegacySourceID,
	)
	if err != nil {
		return nil, err
	}

	event.Grade = domain.Grade(grade)
	event.ReviewState = domain.ReviewState(state)
	event.ReviewedAt = event.ReviewedAt.UTC()
	return &event, nil
}

// nullableString maps an empty string to NULL for optional text columns.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
