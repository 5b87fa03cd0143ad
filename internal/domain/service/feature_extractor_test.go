package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
)

func testTenantContext() *models.TenantContext {
	return models.NewTenant("tenant-pia", "PIA", "Pakistan International").Context()
}

func testFlight(id string, at time.Time) *models.FlightRecord {
	return &models.FlightRecord{
		RecordID:     id,
		TenantID:     "tenant-pia",
		FlightNumber: "PK-301",
		Departure:    "KHI",
		Arrival:      "ISB",
		AircraftType: "A320",
		ScheduledAt:  at,
		Status:       models.FlightStatusScheduled,
	}
}

func TestExtractFlight_FullRecord(t *testing.T) {
	extractor := service.NewFeatureExtractor()
	asOf := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	flight := testFlight("fl-1", time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC))
	flight.WeatherCondition = "Heavy rain"
	flight.WindSpeedMPS = 12.5

	fv, err := extractor.ExtractFlight(testTenantContext(), flight, nil, asOf)
	require.Nil(t, err)

	assert.Equal(t, "tenant-pia", fv.TenantID)
	assert.Equal(t, "fl-1", fv.EntityID)
	assert.Equal(t, constants.ScoreKindDelayProbability, fv.Kind)
	assert.Equal(t, 8.0, fv.Num(constants.FeatureHourOfDay))
	assert.Equal(t, "winter", fv.Cat(constants.FeatureSeason, ""))
	assert.Equal(t, "KHI-ISB", fv.Cat(constants.FeatureRoute, ""))
	assert.Equal(t, "rain", fv.Cat(constants.FeatureWeatherCondition, ""))
	assert.Equal(t, 12.5, fv.Num(constants.FeatureWindSpeed))
}

func TestExtractFlight_OptionalGapsGetNeutralDefaults(t *testing.T) {
	extractor := service.NewFeatureExtractor()
	asOf := time.Now().UTC()

	flight := testFlight("fl-2", asOf.Add(-time.Hour))
	flight.WeatherCondition = ""
	flight.AircraftType = ""
	flight.Departure = ""

	fv, err := extractor.ExtractFlight(testTenantContext(), flight, nil, asOf)
	require.Nil(t, err)

	assert.Equal(t, constants.WeatherUnknown, fv.Cat(constants.FeatureWeatherCondition, ""))
	assert.Equal(t, constants.RouteUnknown, fv.Cat(constants.FeatureRoute, ""))
	assert.Equal(t, 0.0, fv.Num(constants.FeatureWindSpeed))
	assert.Equal(t, 0.0, fv.Num(constants.FeatureRouteDelayRate))
}

func TestExtractFlight_MissingIdentityFails(t *testing.T) {
	extractor := service.NewFeatureExtractor()
	asOf := time.Now().UTC()

	_, err := extractor.ExtractFlight(nil, testFlight("fl-3", asOf), nil, asOf)
	require.NotNil(t, err)
	assert.True(t, errors.IsInsufficientData(err))

	flight := testFlight("", asOf)
	_, err = extractor.ExtractFlight(testTenantContext(), flight, nil, asOf)
	require.NotNil(t, err)
	assert.True(t, errors.IsInsufficientData(err))
}

func TestExtractFlight_Deterministic(t *testing.T) {
	extractor := service.NewFeatureExtractor()
	asOf := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	flight := testFlight("fl-4", asOf.Add(-2*time.Hour))
	flight.WeatherCondition = "Fog"
	flight.WindSpeedMPS = 7

	first, err := extractor.ExtractFlight(testTenantContext(), flight, nil, asOf)
	require.Nil(t, err)
	second, err := extractor.ExtractFlight(testTenantContext(), flight, nil, asOf)
	require.Nil(t, err)

	assert.Equal(t, first.Numeric, second.Numeric)
	assert.Equal(t, first.Categorical, second.Categorical)
}

func TestComputeRouteStats_ExcludesFutureFlights(t *testing.T) {
	asOf := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	past1 := testFlight("fl-a", asOf.Add(-48*time.Hour))
	past1.Status = models.FlightStatusDelayed
	past2 := testFlight("fl-b", asOf.Add(-24*time.Hour))
	future := testFlight("fl-c", asOf.Add(24*time.Hour))
	future.Status = models.FlightStatusDelayed

	stats := service.ComputeRouteStats([]*models.FlightRecord{past1, past2, future}, asOf)

	// One delayed of two past flights; the future delay must not count.
	assert.Equal(t, 0.5, stats.DelayRate("KHI-ISB"))
	assert.Equal(t, 0.0, stats.DelayRate("LHE-DXB"))
}

func TestComputeRouteStats_DelayMinutesCountAsDelay(t *testing.T) {
	asOf := time.Now().UTC()

	late := testFlight("fl-d", asOf.Add(-time.Hour))
	late.Status = models.FlightStatusArrived
	late.DelayMinutes = 35

	stats := service.ComputeRouteStats([]*models.FlightRecord{late}, asOf)
	assert.Equal(t, 1.0, stats.DelayRate("KHI-ISB"))
}

func TestExtractAircraft_ComputesDaysSinceMaintenance(t *testing.T) {
	extractor := service.NewFeatureExtractor()
	asOf := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	maint := asOf.Add(-200 * 24 * time.Hour)

	aircraft := &models.AircraftRecord{
		RecordID:          "ac-1",
		TenantID:          "tenant-pia",
		Registration:      "AP-BHV",
		AircraftType:      "B777",
		AgeYears:          22,
		TotalFlightHours:  45000,
		TotalCycles:       32000,
		LastMaintenanceAt: &maint,
		RecordedAt:        asOf,
	}

	fv, err := extractor.ExtractAircraft(testTenantContext(), aircraft, asOf)
	require.Nil(t, err)

	assert.Equal(t, 45000.0, fv.Num(constants.FeatureFlightHours))
	assert.Equal(t, 32000.0, fv.Num(constants.FeatureCycles))
	assert.Equal(t, 22.0, fv.Num(constants.FeatureAgeYears))
	assert.InDelta(t, 200.0, fv.Num(constants.FeatureDaysSinceMaint), 0.01)
}

func TestExtractAircraft_NoMaintenanceHistoryIsNeutral(t *testing.T) {
	extractor := service.NewFeatureExtractor()
	asOf := time.Now().UTC()

	aircraft := &models.AircraftRecord{
		RecordID:     "ac-2",
		TenantID:     "tenant-pia",
		Registration: "AP-BMG",
		RecordedAt:   asOf,
	}

	fv, err := extractor.ExtractAircraft(testTenantContext(), aircraft, asOf)
	require.Nil(t, err)
	assert.Equal(t, 0.0, fv.Num(constants.FeatureDaysSinceMaint))
}

func TestExtractAircraft_MissingRegistrationFails(t *testing.T) {
	extractor := service.NewFeatureExtractor()

	_, err := extractor.ExtractAircraft(testTenantContext(), &models.AircraftRecord{}, time.Now().UTC())
	require.NotNil(t, err)
	assert.True(t, errors.IsInsufficientData(err))
}
