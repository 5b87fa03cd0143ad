package service

import (
	"time"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
)

// FeatureExtractor converts raw operational records into normalized feature
// vectors. Extraction is deterministic: the same record, route statistics and
// as-of time always produce the same vector. Optional gaps are filled with
// documented neutral defaults; only a missing tenant or entity identity is an
// error.
type FeatureExtractor struct{}

// NewFeatureExtractor creates a FeatureExtractor.
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{}
}

// RouteStats carries per-route rolling delay statistics computed once per batch
// from the tenant's window records.
type RouteStats struct {
	delayRate map[string]float64
}

// ComputeRouteStats derives the historical delay rate per route from the given
// records. Flights at or after asOf are excluded so the statistic never looks into
// the future of the evaluation point.
func ComputeRouteStats(flights []*models.FlightRecord, asOf time.Time) *RouteStats {
	total := make(map[string]int)
	delayed := make(map[string]int)
	for _, f := range flights {
		if f == nil || !f.ScheduledAt.Before(asOf) {
			continue
		}
		route := f.Route()
		if route == "" {
			continue
		}
		total[route]++
		if f.IsDelayed() {
			delayed[route]++
		}
	}

	rates := make(map[string]float64, len(total))
	for route, n := range total {
		rates[route] = float64(delayed[route]) / float64(n)
	}
	return &RouteStats{delayRate: rates}
}

// DelayRate returns the historical delay rate for the route, or 0 when the route
// has no history.
func (s *RouteStats) DelayRate(route string) float64 {
	if s == nil {
		return 0
	}
	return s.delayRate[route]
}

// ExtractFlight builds the delay-probability feature vector for one flight.
//
// Defaults for optional gaps: weather condition -> "unknown", wind speed -> 0,
// aircraft type -> "unknown", route -> "unknown" with delay rate 0.
func (e *FeatureExtractor) ExtractFlight(tctx *models.TenantContext, flight *models.FlightRecord, stats *RouteStats, asOf time.Time) (*models.FeatureVector, *errors.AppError) {
	if tctx == nil || tctx.TenantID == "" {
		return nil, errors.ErrInsufficientData("flight", "tenant_id")
	}
	if flight == nil || flight.RecordID == "" {
		return nil, errors.ErrInsufficientData("flight", "record_id")
	}

	fv := models.NewFeatureVector(tctx.TenantID, flight.RecordID, constants.ScoreKindDelayProbability, asOf)

	fv.SetNum(constants.FeatureHourOfDay, float64(flight.ScheduledAt.Hour()))
	fv.SetNum(constants.FeatureDayOfWeek, float64(flight.ScheduledAt.Weekday()))
	fv.SetCat(constants.FeatureSeason, seasonOf(flight.ScheduledAt))

	route := flight.Route()
	if route == "" {
		route = constants.RouteUnknown
	}
	fv.SetCat(constants.FeatureRoute, route)
	fv.SetNum(constants.FeatureRouteDelayRate, stats.DelayRate(route))

	if flight.AircraftType != "" {
		fv.SetCat(constants.FeatureAircraftType, flight.AircraftType)
	} else {
		fv.SetCat(constants.FeatureAircraftType, constants.RouteUnknown)
	}

	if flight.WeatherCondition != "" {
		fv.SetCat(constants.FeatureWeatherCondition, normalizeWeather(flight.WeatherCondition))
	} else {
		fv.SetCat(constants.FeatureWeatherCondition, constants.WeatherUnknown)
	}
	if flight.WindSpeedMPS > 0 {
		fv.SetNum(constants.FeatureWindSpeed, flight.WindSpeedMPS)
	}

	return fv, nil
}

// ExtractAircraft builds the maintenance-risk feature vector for one airframe
// snapshot. A missing maintenance date contributes the neutral default of zero
// days; missing utilisation figures contribute zero.
func (e *FeatureExtractor) ExtractAircraft(tctx *models.TenantContext, aircraft *models.AircraftRecord, asOf time.Time) (*models.FeatureVector, *errors.AppError) {
	if tctx == nil || tctx.TenantID == "" {
		return nil, errors.ErrInsufficientData("aircraft", "tenant_id")
	}
	if aircraft == nil || aircraft.Registration == "" {
		return nil, errors.ErrInsufficientData("aircraft", "registration")
	}

	fv := models.NewFeatureVector(tctx.TenantID, aircraft.Registration, constants.ScoreKindMaintenanceRisk, asOf)

	if aircraft.TotalFlightHours > 0 {
		fv.SetNum(constants.FeatureFlightHours, aircraft.TotalFlightHours)
	}
	if aircraft.TotalCycles > 0 {
		fv.SetNum(constants.FeatureCycles, aircraft.TotalCycles)
	}
	if aircraft.AgeYears > 0 {
		fv.SetNum(constants.FeatureAgeYears, aircraft.AgeYears)
	}
	if aircraft.LastMaintenanceAt != nil {
		days := asOf.Sub(*aircraft.LastMaintenanceAt).Hours() / 24
		if days > 0 {
			fv.SetNum(constants.FeatureDaysSinceMaint, days)
		}
	}
	if aircraft.AircraftType != "" {
		fv.SetCat(constants.FeatureAircraftType, aircraft.AircraftType)
	}

	return fv, nil
}

// seasonOf maps a timestamp to a meteorological season category.
func seasonOf(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

// normalizeWeather collapses free-form feed conditions into the enumerated
// categories the scorer understands. Unrecognized values pass through unchanged;
// the scorer treats them as neutral.
func normalizeWeather(condition string) string {
	switch condition {
	case "Clear", "Clear sky", "Mainly clear", "Sunny":
		return "clear"
	case "Thunderstorm", "Thunderstorm with hail":
		return "thunderstorm"
	case "Fog", "Foggy", "Mist", "Haze":
		return "fog"
	case "Rain", "Slight rain", "Moderate rain", "Heavy rain", "Drizzle":
		return "rain"
	case "Snow", "Slight snow", "Moderate snow", "Heavy snow":
		return "snow"
	default:
		return condition
	}
}
