// Package task runs background work on a bounded worker pool. The only
// production task is the per-user reconciliation pass; tasks are cheap
// to re-trigger and idempotent, so the queue is in-memory only — a crash
// loses nothing the next scheduled sweep will not redo.
package task
