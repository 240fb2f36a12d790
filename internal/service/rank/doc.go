// Package rank implements the rank governor: a periodic controller that
// nudges a learner's proficiency rank up or down from the exponentially
// weighted outcome rates of their recent reviews. Adjustments are small
// fixed steps, clamped to the rank domain, and rate-limited by a
// per-user cooldown so a single enthusiastic session cannot run the rank
// away.
package rank
