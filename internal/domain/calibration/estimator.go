package calibration

import (
	"errors"
	"math"
	"sort"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// Common errors
var (
	ErrNoResponses = errors.New("calibration requires at least one non-control response")
)

// Response is a single quiz answer: the presented item's frequency rank,
// whether the learner claimed to recognize it, and whether the item was a
// control distractor (a fake word).
type Response struct {
	ItemRank   int
	Recognized bool
	Control    bool
}

// Options are the tunables of the estimator. The numeric defaults are
// inherited app constants; they are named configuration, not derived.
type Options struct {
	// Scale is the logistic slope in rank units: how wide the band is
	// between "certainly known" and "certainly unknown".
	Scale float64

	// PriorWeight is the regularization strength pulling the estimate
	// toward the prior during the grid search.
	PriorWeight float64

	// PenaltyExponent shapes the overclaim penalty curve.
	PenaltyExponent float64

	// MaxPenalty is the largest rank reduction overclaiming can cause.
	MaxPenalty float64

	// CoarseStep and FineStep are the grid-search resolutions, in ranks.
	CoarseStep int
	FineStep   int

	// PriorRank, when positive, is a supplied prior estimate (e.g. from a
	// previous calibration). Zero means "derive from the presented items".
	PriorRank int
}

// DefaultOptions returns the stock estimator configuration.
func DefaultOptions() Options {
	return Options{
		Scale:           1200,
		PriorWeight:     0.02,
		PenaltyExponent: 1.5,
		MaxPenalty:      1500,
		CoarseStep:      500,
		FineStep:        50,
	}
}

// Confidence blend weights and interval sizing.
const (
	fitConfidenceWeight      = 0.5
	coverageConfidenceWeight = 0.3
	honestyConfidenceWeight  = 0.2
	coveragePivot            = 10.0 // responses at which coverage confidence reaches 0.5
	minIntervalHalfWidth     = 250.0
	maxIntervalHalfWidth     = 2000.0
)

// Estimate converts quiz responses into an estimated proficiency rank
// with a confidence interval and overclaim rate. Control items never
// enter the logistic fit; they only drive the overclaim penalty.
func Estimate(responses []Response, opts Options) (*domain.CalibrationResult, error) {
	realItems, controls := partition(responses)
	if len(realItems) == 0 {
		return nil, ErrNoResponses
	}

	overclaim := overclaimRate(controls)
	prior := opts.PriorRank
	if prior <= 0 {
		prior = medianRank(realItems)
	}

	// Coarse pass over the whole rank domain, then a fine pass around the
	// coarse optimum.
	coarse := gridSearch(realItems, prior, opts, domain.MinRank, domain.MaxRank, opts.CoarseStep)
	fine := gridSearch(realItems, prior, opts,
		coarse-opts.CoarseStep, coarse+opts.CoarseStep, opts.FineStep)

	// Falsely claimed distractors pull the estimate down.
	penalty := opts.MaxPenalty * math.Pow(overclaim, opts.PenaltyExponent)
	observed := fine - int(math.Round(penalty))

	confidence := blendConfidence(realItems, observed, overclaim, opts)

	// With a supplied prior, low confidence leans on it; high confidence
	// trusts the observation.
	estimate := observed
	if opts.PriorRank > 0 {
		estimate = int(math.Round(
			confidence*float64(observed) + (1-confidence)*float64(opts.PriorRank),
		))
	}
	estimate = domain.ClampRank(estimate)

	halfWidth := minIntervalHalfWidth +
		(1-confidence)*(maxIntervalHalfWidth-minIntervalHalfWidth)

	return &domain.CalibrationResult{
		EstimatedRank: estimate,
		LowerBound:    domain.ClampRank(estimate - int(math.Round(halfWidth))),
		UpperBound:    domain.ClampRank(estimate + int(math.Round(halfWidth))),
		SampleSize:    len(realItems),
		ControlCount:  len(controls),
		OverclaimRate: overclaim,
		Confidence:    confidence,
	}, nil
}

// recognitionProbability is the logistic model: the chance a learner of
// ability e recognizes an item of rank r.
func recognitionProbability(itemRank, estimate int, scale float64) float64 {
	return 1.0 / (1.0 + math.Exp((float64(itemRank)-float64(estimate))/scale))
}

// loss scores a candidate ability against the observed responses:
// squared residuals plus a quadratic pull toward the prior.
func loss(realItems []Response, candidate, prior int, opts Options) float64 {
	var sum float64
	for _, resp := range realItems {
		observed := 0.0
		if resp.Recognized {
			observed = 1.0
		}
		p := recognitionProbability(resp.ItemRank, candidate, opts.Scale)
		sum += (observed - p) * (observed - p)
	}

	deviation := (float64(candidate) - float64(prior)) / opts.Scale
	return sum + opts.PriorWeight*deviation*deviation
}

// gridSearch returns the candidate rank in [lo, hi] (stepped) with the
// lowest loss. Ties resolve to the lower candidate so the search is
// deterministic.
func gridSearch(realItems []Response, prior int, opts Options, lo, hi, step int) int {
	lo = domain.ClampRank(lo)
	hi = domain.ClampRank(hi)
	if step < 1 {
		step = 1
	}

	best := lo
	bestLoss := math.Inf(1)
	for candidate := lo; candidate <= hi; candidate += step {
		if l := loss(realItems, candidate, prior, opts); l < bestLoss {
			bestLoss = l
			best = candidate
		}
	}
	return best
}

// blendConfidence combines residual fit quality, sample coverage, and
// response honesty into a single [0, 1] confidence.
func blendConfidence(realItems []Response, estimate int, overclaim float64, opts Options) float64 {
	meanResidual := loss(realItems, estimate, estimate, opts) / float64(len(realItems))
	fit := 1 - math.Min(meanResidual*4, 1) // mean sq residual 0.25 or worse → no fit confidence

	n := float64(len(realItems))
	coverage := n / (n + coveragePivot)

	confidence := fitConfidenceWeight*fit +
		coverageConfidenceWeight*coverage +
		honestyConfidenceWeight*(1-overclaim)
	return math.Min(math.Max(confidence, 0), 1)
}

// partition splits responses into real items and control distractors.
func partition(responses []Response) (realItems, controls []Response) {
	for _, resp := range responses {
		if resp.Control {
			controls = append(controls, resp)
		} else {
			realItems = append(realItems, resp)
		}
	}
	return realItems, controls
}

// overclaimRate is the fraction of control distractors falsely claimed as
// known. No controls means no overclaim signal.
func overclaimRate(controls []Response) float64 {
	if len(controls) == 0 {
		return 0
	}
	claimed := 0
	for _, resp := range controls {
		if resp.Recognized {
			claimed++
		}
	}
	return float64(claimed) / float64(len(controls))
}

// medianRank returns the median item rank of the real-item responses, used as
// the default prior.
func medianRank(realItems []Response) int {
	ranks := make([]int, len(realItems))
	for i, resp := range realItems {
		ranks[i] = resp.ItemRank
	}
	sort.Ints(ranks)

	mid := len(ranks) / 2
	if len(ranks)%2 == 0 {
		return (ranks[mid-1] + ranks[mid]) / 2
	}
	return ranks[mid]
}
