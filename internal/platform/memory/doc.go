// Package memory provides in-memory implementations of the store
// interfaces. They mirror the PostgreSQL implementations' semantics
// exactly — idempotent event appends, atomic batch writes, optimistic
// snapshot versioning — and back the hermetic test suites and fully
// offline operation.
package memory
