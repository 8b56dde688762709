package domain

// Outcome classifies how a resolution attempt ended.
type Outcome string

const (
	// OutcomeResolved means a single entity was chosen.
	OutcomeResolved Outcome = "resolved"
	// OutcomeNoMatch means no candidate survived filtering and scoring.
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeCancelled means the caller declined or abandoned the prompt.
	OutcomeCancelled Outcome = "cancelled"
)

// Result is the terminal state of a resolution attempt. Entity is set only
// when Outcome is OutcomeResolved.
type Result struct {
	Outcome    Outcome
	Entity     *Entity
	Provenance Provenance
	// SRDOnly records that the candidate pool was restricted to the SRD
	// subset, so callers can tell the user a miss may be a licensing gap
	// rather than a missing entry.
	SRDOnly bool
}
