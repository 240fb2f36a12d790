package fsrs

import (
	"math"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// forgettingFactor is the curve constant in R(t,S) = (1 + t/(9S))^-1:
// after S days elapse, retrievability has decayed to 0.9.
const forgettingFactor = 9.0

// Retrievability computes the modeled recall probability after elapsedDays
// against a memory of the given stability, clamped to [0, 1]. Elapsed time
// and stability are floored at epsilon so a same-instant review cannot
// divide by zero.
func Retrievability(elapsedDays, stability float64, params *Params) float64 {
	if elapsedDays < params.Epsilon {
		elapsedDays = 0
	}
	s := math.Max(stability, params.Epsilon)
	r := 1.0 / (1.0 + elapsedDays/(forgettingFactor*s))
	return math.Min(math.Max(r, 0), 1)
}

// NextInterval inverts the forgetting curve for the target retention:
// the number of days until retrievability decays to targetRetention,
// floored at params.MinInterval.
func NextInterval(stability, targetRetention float64, params *Params) float64 {
	ivl := forgettingFactor * stability * (1.0/targetRetention - 1.0)
	return math.Max(ivl, params.MinInterval)
}

// NextState applies one review to a memory and returns the updated
// (stability, difficulty, retrievability) triple. A stability of zero
// means the word has never been reviewed and the initial-state formulas
// apply. Outputs are always clamped to their documented bounds.
func NextState(
	stability, difficulty float64,
	grade domain.Grade,
	elapsedDays float64,
	params *Params,
) (newStability, newDifficulty, retrievability float64) {
	w := &params.Weights

	if stability <= params.Epsilon {
		// First review: seed stability and difficulty from the grade.
		return clampStability(initStability(grade, w)),
			clampDifficulty(initDifficulty(grade, w)),
			1.0
	}

	r := Retrievability(elapsedDays, stability, params)

	var s float64
	if grade == domain.GradeAgain {
		s = nextForgetStability(difficulty, stability, r, w)
	} else {
		s = nextRecallStability(difficulty, stability, r, grade, w)
	}

	return clampStability(s), clampDifficulty(nextDifficulty(difficulty, grade, w)), r
}

// initStability returns the initial stability for a first review,
// S0(G) = w[G-1].
func initStability(grade domain.Grade, w *Weights) float64 {
	return w[int(grade)-1]
}

// initDifficulty returns the initial difficulty for a first review,
// D0(G) = w4 - e^(w5*(G-1)) + 1.
func initDifficulty(grade domain.Grade, w *Weights) float64 {
	return w[4] - math.Exp(w[5]*float64(grade-1)) + 1
}

// nextDifficulty nudges difficulty toward easier/harder per the grade,
// damps the step as difficulty approaches its bounds, then mean-reverts
// toward the initial-easy anchor with weight w7.
func nextDifficulty(difficulty float64, grade domain.Grade, w *Weights) float64 {
	deltaD := -w[6] * float64(int(grade)-3)
	dPrime := difficulty + deltaD*(10-difficulty)/9
	anchor := initDifficulty(domain.GradeEasy, w)
	return w[7]*anchor + (1-w[7])*dPrime
}

// nextRecallStability grows stability multiplicatively after a successful
// recall (grade >= 2):
//
//	S' = S * (1 + e^w8 * (11-D) * S^-w9 * (e^((1-R)*w10) - 1) * hardPenalty * easyBonus)
//
// Lower difficulty, lower current stability, and lower retrievability at
// review time all produce larger gains.
func nextRecallStability(d, s, r float64, grade domain.Grade, w *Weights) float64 {
	hardPenalty := 1.0
	if grade == domain.GradeHard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if grade == domain.GradeEasy {
		easyBonus = w[16]
	}
	return s * (1 + math.Exp(w[8])*
		(11-d)*
		math.Pow(s, -w[9])*
		(math.Exp((1-r)*w[10])-1)*
		hardPenalty*easyBonus)
}

// nextForgetStability recomputes stability after a lapse (grade 1):
//
//	S' = min(w11 * D^-w12 * ((S+1)^w13 - 1) * e^((1-R)*w14), S)
//
// Post-lapse stability never exceeds the pre-lapse value.
func nextForgetStability(d, s, r float64, w *Weights) float64 {
	rebuilt := w[11] *
		math.Pow(d, -w[12]) *
		(math.Pow(s+1, w[13]) - 1) *
		math.Exp((1-r)*w[14])
	return math.Min(rebuilt, s)
}

// implicitStabilityGain computes the reduced stability increment for a
// passive reading exposure: the fraction params.ImplicitStrength of the
// gain a "good" review would have produced right now. Same-day exposures
// use the short-term formula (w17/w18) so repeated sightings within one
// session stay nearly neutral.
func implicitStabilityGain(d, s, r, elapsedDays float64, params *Params) float64 {
	w := &params.Weights
	var full float64
	if elapsedDays < 1 {
		full = s * math.Max(math.Exp(w[17]*w[18]), 1.0)
	} else {
		full = nextRecallStability(d, s, r, domain.GradeGood, w)
	}
	return s + params.ImplicitStrength*(full-s)
}

// clampStability floors stability at a small positive value.
func clampStability(s float64) float64 {
	return math.Max(s, 0.001)
}

// clampDifficulty bounds post-review difficulty to [1, 10].
func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
