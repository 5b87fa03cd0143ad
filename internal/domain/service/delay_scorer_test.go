package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/pkg/constants"
)

func delayVector(mutate func(fv *models.FeatureVector)) *models.FeatureVector {
	fv := models.NewFeatureVector("tenant-pia", "PK-301-20260115", constants.ScoreKindDelayProbability, time.Now().UTC())
	fv.SetNum(constants.FeatureHourOfDay, 13)
	fv.SetNum(constants.FeatureDayOfWeek, 2)
	fv.SetCat(constants.FeatureSeason, "spring")
	fv.SetCat(constants.FeatureWeatherCondition, "clear")
	if mutate != nil {
		mutate(fv)
	}
	return fv
}

func TestBaselineDelayScorer_Bounded(t *testing.T) {
	scorer := service.NewBaselineDelayScorer()

	worst := delayVector(func(fv *models.FeatureVector) {
		fv.SetCat(constants.FeatureWeatherCondition, "thunderstorm")
		fv.SetNum(constants.FeatureWindSpeed, 60)
		fv.SetNum(constants.FeatureHourOfDay, 8)
		fv.SetNum(constants.FeatureDayOfWeek, 6)
		fv.SetCat(constants.FeatureSeason, "winter")
		fv.SetNum(constants.FeatureRouteDelayRate, 1.0)
	})
	p := scorer.Score(worst)
	assert.LessOrEqual(t, p, 1.0)
	assert.GreaterOrEqual(t, p, 0.0)

	calm := delayVector(nil)
	assert.Greater(t, scorer.Score(calm), 0.0)
	assert.Less(t, scorer.Score(calm), 0.5)
}

func TestBaselineDelayScorer_MonotonicInWind(t *testing.T) {
	scorer := service.NewBaselineDelayScorer()

	prev := -1.0
	for _, wind := range []float64{0, 5, 10, 15, 20, 25, 40} {
		p := scorer.Score(delayVector(func(fv *models.FeatureVector) {
			fv.SetNum(constants.FeatureWindSpeed, wind)
		}))
		assert.GreaterOrEqual(t, p, prev, "wind %.0f must not decrease probability", wind)
		prev = p
	}
}

func TestBaselineDelayScorer_MonotonicInRouteHistory(t *testing.T) {
	scorer := service.NewBaselineDelayScorer()

	prev := -1.0
	for _, rate := range []float64{0, 0.1, 0.25, 0.5, 0.75, 1.0} {
		p := scorer.Score(delayVector(func(fv *models.FeatureVector) {
			fv.SetNum(constants.FeatureRouteDelayRate, rate)
		}))
		assert.GreaterOrEqual(t, p, prev, "route rate %.2f must not decrease probability", rate)
		prev = p
	}
}

func TestBaselineDelayScorer_WeatherOrdering(t *testing.T) {
	scorer := service.NewBaselineDelayScorer()

	score := func(weather string) float64 {
		return scorer.Score(delayVector(func(fv *models.FeatureVector) {
			fv.SetCat(constants.FeatureWeatherCondition, weather)
		}))
	}

	clear := score("clear")
	rain := score("rain")
	fog := score("fog")
	snow := score("snow")
	storm := score("thunderstorm")

	assert.Less(t, clear, rain)
	assert.Less(t, rain, fog)
	assert.Less(t, fog, snow)
	assert.Less(t, snow, storm)
}

func TestBaselineDelayScorer_UnknownWeatherIsNeutral(t *testing.T) {
	scorer := service.NewBaselineDelayScorer()

	clear := scorer.Score(delayVector(nil))
	unknown := scorer.Score(delayVector(func(fv *models.FeatureVector) {
		fv.SetCat(constants.FeatureWeatherCondition, constants.WeatherUnknown)
	}))
	assert.Equal(t, clear, unknown)
}

func TestBaselineDelayScorer_Deterministic(t *testing.T) {
	scorer := service.NewBaselineDelayScorer()
	fv := delayVector(func(fv *models.FeatureVector) {
		fv.SetNum(constants.FeatureWindSpeed, 12)
		fv.SetNum(constants.FeatureRouteDelayRate, 0.3)
	})

	first := scorer.Score(fv)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, scorer.Score(fv))
	}
}
