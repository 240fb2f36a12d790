// Package calibration estimates a learner's proficiency rank from a short
// placement quiz of recognized/unrecognized vocabulary items.
//
// The model treats recognition as a logistic function of the gap between
// an item's frequency rank and the learner's ability. A regularized grid
// search (coarse, then fine) finds the rank that best explains the
// responses; control items — fake words that should never be "known" —
// measure overclaiming and penalize the estimate.
//
// Results are ephemeral: they seed the learner profile's rank once at
// onboarding and are never persisted as authoritative.
package calibration
