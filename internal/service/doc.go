// Package service contains the application services behind the API: the
// review path (explicit reviews, implicit exposures, ignore actions) and
// the onboarding calibration. Services own concurrency: all persistence
// for one user serializes through a per-user lock, while the math they
// call stays pure and lock-free.
package service
