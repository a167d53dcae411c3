package detector

// Confidence adjustments applied after pattern matching. A passing
// validator nudges confidence up; a failing one drops it far enough that
// moderate and lenient thresholds exclude the match.
const (
	validatedBoost         = 0.1
	failedValidatorPenalty = 0.3
)

// scoreCandidate returns the final confidence for a candidate, clamped to
// [0,1]. Total and deterministic: same candidate, same score.
func scoreCandidate(c Candidate) float64 {
	confidence := c.BaseConfidence
	if c.Checked {
		if c.Valid {
			confidence += validatedBoost
		} else {
			confidence -= failedValidatorPenalty
		}
	}
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
