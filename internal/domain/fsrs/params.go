package fsrs

import "math"

// WeightCount is the length of the FSRS parameter vector.
const WeightCount = 19

// Weights is the FSRS parameter vector. Indices follow the published
// convention: w0..w3 are initial stabilities per grade, w4..w7 drive
// difficulty, w8..w10 recall stability growth, w11..w14 post-lapse
// stability, w15/w16 the hard penalty and easy bonus, w17/w18 same-day
// (short-term) stability.
type Weights [WeightCount]float64

// DefaultWeights returns the stock parameter vector, used until a learner
// qualifies for a personalized one.
func DefaultWeights() Weights {
	return Weights{
		0.4872, 1.4003, 3.7145, 13.8206,
		5.1618, 1.2298, 0.8975, 0.0310,
		1.6474, 0.1367, 1.0461,
		2.1072, 0.0793, 0.3246, 1.5870,
		0.2272, 2.8755,
		0.1297, 0.1040,
	}
}

// Params bundles the tunables of the transition engine.
type Params struct {
	// Weights is the active FSRS parameter vector.
	Weights Weights

	// MinInterval floors the scheduling interval, in days.
	MinInterval float64

	// Epsilon floors elapsed days and stability in divisions so a
	// same-instant review cannot divide by zero.
	Epsilon float64

	// ImplicitStrength scales how much of a normal "good" stability
	// increment a passive reading exposure contributes.
	ImplicitStrength float64

	// KnownStabilityDays is the stability threshold (in days) at which a
	// successfully reviewed word is promoted to the known status.
	KnownStabilityDays float64
}

// NewDefaultParams creates a Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		Weights:            DefaultWeights(),
		MinInterval:        0.1,
		Epsilon:            1e-6,
		ImplicitStrength:   0.3,
		KnownStabilityDays: 21,
	}
}

// WithWeights returns a copy of the params carrying the given vector.
func (p *Params) WithWeights(w Weights) *Params {
	cp := *p
	cp.Weights = w
	return &cp
}

// AggregateStats summarizes a learner's whole review history. The
// personalization variant consumes only these aggregates — never
// individual events — so a replay over the same event set always resolves
// the same vector.
type AggregateStats struct {
	ExplicitReviews int
	SuccessRate     float64 // grade >= 2
	HardRate        float64 // grade == 2
	LapseRate       float64 // grade == 1
	EasyRate        float64 // grade == 4
}

// Personalization tuning. Adjusted weights stay within a tolerance band of
// the base vector so a skewed personal history cannot push the model into
// degenerate territory.
const (
	personalizationPivot     = 50.0 // sample size at which confidence reaches 0.5
	personalizationBand      = 0.2  // max relative deviation from base weights
	baselineSuccessRate      = 0.85
	baselineHardRate         = 0.15
	baselineLapseRate        = 0.15
	baselineEasyRate         = 0.20
	personalizationGain      = 0.6
	minPersonalizationSample = 30
)

// PersonalizedWeights derives a learner-specific parameter vector from
// aggregated review statistics. It is a pure function of (stats, base):
// the same aggregates always yield the same vector.
//
// Each adjusted weight is confidence-weighted by sample size and clamped
// to within personalizationBand of its base value. Below
// minPersonalizationSample the base vector is returned unchanged.
func PersonalizedWeights(stats AggregateStats, base Weights) Weights {
	if stats.ExplicitReviews < minPersonalizationSample {
		return base
	}

	n := float64(stats.ExplicitReviews)
	confidence := n / (n + personalizationPivot)

	adjust := func(idx int, delta float64) {
		factor := 1 + confidence*personalizationGain*delta
		base[idx] = clampBand(base[idx]*factor, DefaultWeights()[idx])
	}

	// Strong retention grows stability faster; frequent lapses rebuild it
	// more cautiously; heavy hard/easy usage shifts the grade modifiers.
	adjust(8, stats.SuccessRate-baselineSuccessRate)
	adjust(11, -(stats.LapseRate - baselineLapseRate))
	adjust(15, -(stats.HardRate - baselineHardRate))
	adjust(16, stats.EasyRate-baselineEasyRate)

	return base
}

// clampBand bounds w to within personalizationBand of ref.
func clampBand(w, ref float64) float64 {
	lo := ref * (1 - personalizationBand)
	hi := ref * (1 + personalizationBand)
	return math.Min(math.Max(w, lo), hi)
}
