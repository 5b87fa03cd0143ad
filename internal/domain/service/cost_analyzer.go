package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/repository"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/errors"
)

// CostAnalyzer aggregates a tenant's window metrics into cost-saving
// opportunities. One pass per call; the result is fully recomputed from the
// window's records, so repeated invocations over the same data are idempotent.
type CostAnalyzer struct{}

// NewCostAnalyzer creates a CostAnalyzer.
func NewCostAnalyzer() *CostAnalyzer {
	return &CostAnalyzer{}
}

// monthHours normalizes window aggregates to a monthly estimate.
const monthHours = 30 * 24.0

// Analyze computes per-area efficiency ratios over the window and emits an
// Opportunity for each breached target. Fail-closed: a nil tenant context is
// rejected rather than analyzed tenant-free.
func (a *CostAnalyzer) Analyze(tctx *models.TenantContext, w repository.Window, flights []*models.FlightRecord) ([]*models.Opportunity, *errors.AppError) {
	if tctx == nil || tctx.TenantID == "" {
		return nil, errors.ErrInsufficientData("cost analysis", "tenant_id")
	}

	var (
		totalFuel    float64
		totalHours   float64
		totalFlights int
		deadheads    int
		totalPax     int
		totalSeats   int
		totalRevenue float64
	)
	for _, f := range flights {
		if f == nil || f.TenantID != tctx.TenantID {
			continue
		}
		totalFlights++
		totalFuel += f.FuelLiters
		totalHours += f.FlightHours
		if f.DeadheadCrew > 0 {
			deadheads++
		}
		totalPax += f.Passengers
		totalSeats += f.Seats
		totalRevenue += f.Revenue
	}
	if totalFlights == 0 {
		return nil, nil
	}

	scale := monthlyScale(w)
	now := time.Now().UTC()
	var out []*models.Opportunity

	if tctx.Features.FuelEfficiency && totalHours > 0 {
		observed := totalFuel / totalHours
		target := tctx.Thresholds.FuelLitersPerHourTarget
		if observed > target {
			saving := (observed - target) * totalHours * scale * tctx.Thresholds.FuelPricePerLiter
			out = append(out, a.opportunity(tctx.TenantID, constants.AreaFuel, observed, target, saving,
				fmt.Sprintf("Fuel burn %.2f L/h exceeds target %.2f L/h; review cruise profiles and tankering policy", observed, target),
				w, now))
		}
	}

	if tctx.Features.CostOptimization {
		observed := float64(deadheads) / float64(totalFlights)
		target := tctx.Thresholds.DeadheadRatioTarget
		if observed > target {
			saving := (observed - target) * float64(totalFlights) * scale * tctx.Thresholds.DeadheadCostPerFlight
			out = append(out, a.opportunity(tctx.TenantID, constants.AreaCrew, observed, target, saving,
				fmt.Sprintf("Deadhead ratio %.1f%% exceeds target %.1f%%; revisit crew pairing", observed*100, target*100),
				w, now))
		}
	}

	if tctx.Features.RevenueOptimization && totalSeats > 0 && totalPax > 0 {
		observed := float64(totalPax) / float64(totalSeats)
		target := tctx.Thresholds.LoadFactorTarget
		if observed < target {
			yield := totalRevenue / float64(totalPax)
			saving := (target - observed) * float64(totalSeats) * scale * yield
			out = append(out, a.opportunity(tctx.TenantID, constants.AreaRevenue, observed, target, saving,
				fmt.Sprintf("Load factor %.1f%% below target %.1f%%; review pricing and capacity", observed*100, target*100),
				w, now))
		}
	}

	return out, nil
}

func (a *CostAnalyzer) opportunity(tenantID string, area constants.OpportunityArea, current, target, saving float64, action string, w repository.Window, now time.Time) *models.Opportunity {
	return &models.Opportunity{
		ID:                     uuid.NewString(),
		TenantID:               tenantID,
		Area:                   area,
		CurrentValue:           current,
		TargetValue:            target,
		EstimatedMonthlySaving: saving,
		RecommendedAction:      action,
		WindowStart:            w.Start,
		WindowEnd:              w.End,
		CreatedAt:              now,
	}
}

// monthlyScale converts window totals into a per-month estimate.
func monthlyScale(w repository.Window) float64 {
	hours := w.End.Sub(w.Start).Hours()
	if hours <= 0 {
		return 1
	}
	return monthHours / hours
}
