package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// PostgresProfileStore implements the store.ProfileStore interface
// using a PostgreSQL database as the storage backend. Interest weights
// and the ignored-word set are stored as JSONB columns.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the
// ProfileStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProfileStore(db store.DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

// Ensure PostgresProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// Get implements store.ProfileStore.Get
// Returns store.ErrProfileNotFound if the profile does not exist.
func (s *PostgresProfileStore) Get(ctx context.Context, userID string) (*domain.LearnerProfile, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT user_id, rank, interest_weights, ignored_words, easy_velocity,
		       cycle_count, subscription_tier, subscription_expires_at,
		       personalized_weights, retention_target, updated_at
		FROM learner_profiles
		WHERE user_id = $1
	`

	var profile domain.LearnerProfile
	var tier string
	var interestWeights []byte
	var ignoredWords []byte
	var expiresAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Rank,
		&interestWeights,
		&ignoredWords,
		&profile.EasyVelocity,
		&profile.CycleCount,
		&tier,
		&expiresAt,
		&profile.PersonalizedWeights,
		&profile.RetentionTarget,
		&profile.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, store.ErrProfileNotFound
		}
		log.Error("failed to get learner profile",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to get learner profile: %w", mapped)
	}

	profile.SubscriptionTier = domain.SubscriptionTier(tier)
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		profile.SubscriptionExpiresAt = &t
	}
	profile.UpdatedAt = profile.UpdatedAt.UTC()

	if err := json.Unmarshal(interestWeights, &profile.InterestWeights); err != nil {
		return nil, fmt.Errorf("failed to decode interest weights: %w", err)
	}

	var ignored []string
	if err := json.Unmarshal(ignoredWords, &ignored); err != nil {
		return nil, fmt.Errorf("failed to decode ignored words: %w", err)
	}
	profile.IgnoredWords = make(map[string]struct{}, len(ignored))
	for _, lemma := range ignored {
		profile.IgnoredWords[lemma] = struct{}{}
	}

	return &profile, nil
}

// Save implements store.ProfileStore.Save
// It creates or fully replaces the profile row.
func (s *PostgresProfileStore) Save(ctx context.Context, profile *domain.LearnerProfile) error {
	log := logger.FromContext(ctx)

	if err := profile.Validate(); err != nil {
		return err
	}

	interestWeights, err := json.Marshal(profile.InterestWeights)
	if err != nil {
		return fmt.Errorf("failed to encode interest weights: %w", err)
	}

	ignored := make([]string, 0, len(profile.IgnoredWords))
	for lemma := range profile.IgnoredWords {
		ignored = append(ignored, lemma)
	}
	sort.Strings(ignored)
	ignoredWords, err := json.Marshal(ignored)
	if err != nil {
		return fmt.Errorf("failed to encode ignored words: %w", err)
	}

	query := `
		INSERT INTO learner_profiles
			(user_id, rank, interest_weights, ignored_words, easy_velocity,
			 cycle_count, subscription_tier, subscription_expires_at,
			 personalized_weights, retention_target, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			rank = EXCLUDED.rank,
			interest_weights = EXCLUDED.interest_weights,
			ignored_words = EXCLUDED.ignored_words,
			easy_velocity = EXCLUDED.easy_velocity,
			cycle_count = EXCLUDED.cycle_count,
			subscription_tier = EXCLUDED.subscription_tier,
			subscription_expires_at = EXCLUDED.subscription_expires_at,
			personalized_weights = EXCLUDED.personalized_weights,
			retention_target = EXCLUDED.retention_target,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		profile.UserID,
		profile.Rank,
		interestWeights,
		ignoredWords,
		profile.EasyVelocity,
		profile.CycleCount,
		string(profile.SubscriptionTier),
		nullableTime(profile.SubscriptionExpiresAt),
		profile.PersonalizedWeights,
		profile.RetentionTarget,
		profile.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to save learner profile",
			"user_id", profile.UserID,
			"error", err)
		return fmt.Errorf("failed to save learner profile: %w", MapError(err))
	}

	return nil
}

// ListUserIDs implements store.ProfileStore.ListUserIDs
func (s *PostgresProfileStore) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `SELECT user_id FROM learner_profiles ORDER BY user_id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user IDs: %w", err)
	}

	return ids, nil
}
