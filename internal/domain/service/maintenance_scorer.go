package service

import (
	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/constants"
)

// MaintenanceScorer computes the rule-based maintenance risk score in [0,100].
// The scheme is intentionally additive-threshold rather than learned, and the
// exact increments are load-bearing for downstream severity bands: changing them
// is a behavior change, not a fix.
type MaintenanceScorer struct{}

// NewMaintenanceScorer creates the maintenance risk scorer.
func NewMaintenanceScorer() *MaintenanceScorer {
	return &MaintenanceScorer{}
}

// Threshold inputs and their fixed point increments.
const (
	maintFlightHoursThreshold = 40000.0
	maintFlightHoursPoints    = 20.0

	maintCyclesThreshold = 30000.0
	maintCyclesPoints    = 20.0

	maintAgeYearsThreshold = 20.0
	maintAgeYearsPoints    = 15.0

	maintDaysSinceThreshold = 180.0
	maintDaysSincePoints    = 25.0
)

// Score sums the increments for every exceeded threshold, then clamps the sum to
// [0,100]. Absent inputs read as zero and contribute nothing.
func (s *MaintenanceScorer) Score(fv *models.FeatureVector) float64 {
	total := 0.0
	if fv.Num(constants.FeatureFlightHours) > maintFlightHoursThreshold {
		total += maintFlightHoursPoints
	}
	if fv.Num(constants.FeatureCycles) > maintCyclesThreshold {
		total += maintCyclesPoints
	}
	if fv.Num(constants.FeatureAgeYears) > maintAgeYearsThreshold {
		total += maintAgeYearsPoints
	}
	if fv.Num(constants.FeatureDaysSinceMaint) > maintDaysSinceThreshold {
		total += maintDaysSincePoints
	}

	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}
