package service

import (
	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/constants"
)

// DelayScorer computes a delay probability in [0,1] from a flight feature vector.
// Implementations must be pure and monotonic in the known risk directions: holding
// all else equal, a higher forecast wind speed or a higher historical route delay
// rate must never decrease the probability. The engine treats the scorer as
// pluggable; swapping in a calibrated model is a constructor change.
type DelayScorer interface {
	Score(fv *models.FeatureVector) float64
}

// BaselineDelayScorer is an additive rule-based scorer. Each contribution is
// non-negative and bounded, so the sum is monotonic per input by construction;
// the final value is clamped to [0,1].
type BaselineDelayScorer struct{}

// NewBaselineDelayScorer creates the default delay scorer.
func NewBaselineDelayScorer() *BaselineDelayScorer {
	return &BaselineDelayScorer{}
}

// Contribution weights. Calibration is out of scope; these encode the known risk
// directions only.
const (
	delayBaseRate = 0.10

	delayWeatherThunderstorm = 0.30
	delayWeatherSnow         = 0.25
	delayWeatherFog          = 0.20
	delayWeatherRain         = 0.10

	// Wind contributes linearly up to the saturation speed.
	delayWindWeight        = 0.25
	delayWindSaturationMPS = 25.0

	delayPeakHour = 0.05
	delayWeekend  = 0.03

	delaySeasonWinter = 0.05
	delaySeasonSummer = 0.03

	delayRouteHistoryWeight = 0.35
)

// Score computes the delay probability for the vector. Absent optional features
// contribute zero.
func (s *BaselineDelayScorer) Score(fv *models.FeatureVector) float64 {
	p := delayBaseRate

	switch fv.Cat(constants.FeatureWeatherCondition, constants.WeatherUnknown) {
	case "thunderstorm":
		p += delayWeatherThunderstorm
	case "snow":
		p += delayWeatherSnow
	case "fog":
		p += delayWeatherFog
	case "rain":
		p += delayWeatherRain
	}

	wind := fv.Num(constants.FeatureWindSpeed)
	if wind > 0 {
		ratio := wind / delayWindSaturationMPS
		if ratio > 1 {
			ratio = 1
		}
		p += delayWindWeight * ratio
	}

	hour := int(fv.Num(constants.FeatureHourOfDay))
	if (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 20) {
		p += delayPeakHour
	}

	dow := int(fv.Num(constants.FeatureDayOfWeek))
	if dow == 0 || dow == 5 || dow == 6 { // Sunday, Friday, Saturday
		p += delayWeekend
	}

	switch fv.Cat(constants.FeatureSeason, "") {
	case "winter":
		p += delaySeasonWinter
	case "summer":
		p += delaySeasonSummer
	}

	p += delayRouteHistoryWeight * clamp01(fv.Num(constants.FeatureRouteDelayRate))

	return clamp01(p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
