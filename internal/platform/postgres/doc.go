// Package postgres provides PostgreSQL implementations of the store
// interfaces, backed by database/sql with the pgx driver.
//
// The review-event table is append-only (ON CONFLICT DO NOTHING keeps
// replicated appends idempotent), word states and profiles are upserted,
// and the server-side snapshot table enforces optimistic concurrency
// with a version-token guard in the UPDATE predicate.
package postgres
