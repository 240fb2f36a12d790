package calibration

import (
	"testing"

	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
)

// quiz builds responses where every item at or below knownUpTo is
// recognized and everything above is not.
func quiz(knownUpTo int) []Response {
	var responses []Response
	for rank := 1000; rank <= 15000; rank += 1000 {
		responses = append(responses, Response{
			ItemRank:   rank,
			Recognized: rank <= knownUpTo,
		})
	}
	return responses
}

func TestEstimateTracksAbility(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()

	result, err := Estimate(quiz(5000), opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.EstimatedRank < 3500 || result.EstimatedRank > 6500 {
		t.Errorf("Expected estimate near 5000, got %d", result.EstimatedRank)
	}
	if result.SampleSize != 15 {
		t.Errorf("Expected 15 real items, got %d", result.SampleSize)
	}
	if result.OverclaimRate != 0 {
		t.Errorf("Expected zero overclaim with no controls, got %f", result.OverclaimRate)
	}
}

func TestEstimateOrdersLearners(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()

	weak, err := Estimate(quiz(2000), opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	strong, err := Estimate(quiz(11000), opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if weak.EstimatedRank >= strong.EstimatedRank {
		t.Errorf("Expected weak (%d) below strong (%d)", weak.EstimatedRank, strong.EstimatedRank)
	}
}

func TestEstimateOverclaimPenalty(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()

	honest := append(quiz(5000),
		Response{ItemRank: 40000, Recognized: false, Control: true},
		Response{ItemRank: 45000, Recognized: false, Control: true},
	)
	overclaiming := append(quiz(5000),
		Response{ItemRank: 40000, Recognized: true, Control: true},
		Response{ItemRank: 45000, Recognized: true, Control: true},
	)

	honestResult, err := Estimate(honest, opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	overclaimResult, err := Estimate(overclaiming, opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if overclaimResult.OverclaimRate != 1.0 {
		t.Errorf("Expected overclaim rate 1.0, got %f", overclaimResult.OverclaimRate)
	}
	if honestResult.OverclaimRate != 0.0 {
		t.Errorf("Expected overclaim rate 0.0, got %f", honestResult.OverclaimRate)
	}

	// Full overclaim applies the maximum penalty: the identical real
	// responses land exactly MaxPenalty ranks lower.
	gap := honestResult.EstimatedRank - overclaimResult.EstimatedRank
	if gap != int(opts.MaxPenalty) {
		t.Errorf("Expected the full %d-rank penalty, got gap %d", int(opts.MaxPenalty), gap)
	}

	if overclaimResult.Confidence >= honestResult.Confidence {
		t.Errorf("Overclaiming should reduce confidence: %f >= %f",
			overclaimResult.Confidence, honestResult.Confidence)
	}
}

func TestEstimatePriorBlending(t *testing.T) {
	t.Parallel()

	// A sparse quiz observed well above the prior: the blended estimate
	// must land strictly between the prior and the raw observation.
	responses := []Response{
		{ItemRank: 8000, Recognized: true},
		{ItemRank: 10000, Recognized: true},
		{ItemRank: 12000, Recognized: false},
	}

	withoutPrior, err := Estimate(responses, DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	opts := DefaultOptions()
	opts.PriorRank = 2000
	withPrior, err := Estimate(responses, opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if withPrior.EstimatedRank >= withoutPrior.EstimatedRank {
		t.Errorf("Prior at 2000 should pull the estimate down: %d >= %d",
			withPrior.EstimatedRank, withoutPrior.EstimatedRank)
	}
	if withPrior.EstimatedRank <= opts.PriorRank {
		t.Errorf("Observation should pull the estimate above the prior: %d <= %d",
			withPrior.EstimatedRank, opts.PriorRank)
	}
}

func TestEstimateConfidenceShrinksInterval(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()

	sparse, err := Estimate(quiz(5000)[:3], opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	dense, err := Estimate(quiz(5000), opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if dense.Confidence <= sparse.Confidence {
		t.Errorf("More coverage should raise confidence: %f <= %f",
			dense.Confidence, sparse.Confidence)
	}

	sparseWidth := sparse.UpperBound - sparse.LowerBound
	denseWidth := dense.UpperBound - dense.LowerBound
	if denseWidth >= sparseWidth {
		t.Errorf("Higher confidence should shrink the interval: %d >= %d", denseWidth, sparseWidth)
	}
}

func TestEstimateRejectsControlOnlyQuiz(t *testing.T) {
	t.Parallel()

	_, err := Estimate([]Response{{ItemRank: 100, Control: true}}, DefaultOptions())
	if err != ErrNoResponses {
		t.Errorf("Expected %v, got %v", ErrNoResponses, err)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	t.Parallel()

	responses := quiz(7000)
	first, err := Estimate(responses, DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := Estimate(responses, DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if *first != *second {
		t.Error("Estimation must be deterministic for identical input")
	}
}

func TestEstimateBoundsStayInRankDomain(t *testing.T) {
	t.Parallel()

	responses := []Response{
		{ItemRank: 100, Recognized: false},
		{ItemRank: 200, Recognized: false},
		{ItemRank: 49000, Recognized: true, Control: true},
		{ItemRank: 49500, Recognized: true, Control: true},
	}

	result, err := Estimate(responses, DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.LowerBound < domain.MinRank || result.UpperBound > domain.MaxRank {
		t.Errorf("Interval out of rank domain: [%d, %d]", result.LowerBound, result.UpperBound)
	}
	if result.EstimatedRank < domain.MinRank || result.EstimatedRank > domain.MaxRank {
		t.Errorf("Estimate out of rank domain: %d", result.EstimatedRank)
	}
}
