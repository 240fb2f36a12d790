package domain

// CalibrationResult is the outcome of a placement quiz: an estimated
// proficiency rank with a confidence interval. It is ephemeral — computed
// on demand, never persisted as authoritative — and seeds
// LearnerProfile.Rank once at onboarding.
type CalibrationResult struct {
	EstimatedRank int     `json:"estimated_rank"`
	LowerBound    int     `json:"lower_bound"`
	UpperBound    int     `json:"upper_bound"`
	SampleSize    int     `json:"sample_size"`   // Real (non-control) items answered
	ControlCount  int     `json:"control_count"` // Distractor items presented
	OverclaimRate float64 `json:"overclaim_rate"`
	Confidence    float64 `json:"confidence"` // [0, 1]
}
