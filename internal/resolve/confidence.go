package resolve

// Confidence bounds for the calibrated fast-path score. The base is awarded
// to every parse that survives the pipeline; signal bonuses never push the
// score past the cap, so the output range is [0.85, 0.95].
const (
	confidenceBase = 0.85
	confidenceCap  = 0.95

	bonusTime = 0.07
	bonusDay  = 0.05
	bonusType = 0.03
)

// Signals are the boolean inputs to the confidence score.
type Signals struct {
	// HasTime: an explicit or derivable clock time was resolved.
	HasTime bool

	// HasDay: a date rule other than the default-today fallback matched.
	HasDay bool

	// HasType: a trigger phrase decided the action kind, as opposed to the
	// default-reminder fallback.
	HasType bool
}

// Score computes the calibrated confidence for the signal set.
func (s Signals) Score() float64 {
	score := confidenceBase
	if s.HasTime {
		score += bonusTime
	}
	if s.HasDay {
		score += bonusDay
	}
	if s.HasType {
		score += bonusType
	}
	return min(score, confidenceCap)
}
