package models

import (
	"time"

	"github.com/turtacn/airops/pkg/constants"
)

// Score is the output of a scoring function for a single subject. Scores are pure
// derivations: recomputing from the same FeatureVector yields the same value.
// Value ranges: delay_probability in [0,1], maintenance_risk in [0,100].
type Score struct {
	TenantID   string              `json:"tenant_id"`
	SubjectID  string              `json:"subject_id"`
	Kind       constants.ScoreKind `json:"kind"`
	Value      float64             `json:"value"`
	ComputedAt time.Time           `json:"computed_at"`
}
