package models

import "time"

// FlightRecord is an immutable operational record of a single flight leg. Status
// transitions append new records rather than mutate history.
type FlightRecord struct {
	RecordID     string    `json:"record_id" gorm:"column:record_id;primaryKey"`
	TenantID     string    `json:"tenant_id" gorm:"column:tenant_id;index:idx_flight_tenant_time"`
	FlightNumber string    `json:"flight_number" gorm:"column:flight_number"`
	Departure    string    `json:"departure" gorm:"column:departure"`
	Arrival      string    `json:"arrival" gorm:"column:arrival"`
	AircraftType string    `json:"aircraft_type" gorm:"column:aircraft_type"`
	ScheduledAt  time.Time `json:"scheduled_at" gorm:"column:scheduled_at;index:idx_flight_tenant_time"`
	Status       string    `json:"status" gorm:"column:status"`

	// DelayMinutes is zero for on-time flights.
	DelayMinutes int `json:"delay_minutes" gorm:"column:delay_minutes"`

	// FuelLiters and FlightHours feed the fuel efficiency ratio.
	FuelLiters  float64 `json:"fuel_liters" gorm:"column:fuel_liters"`
	FlightHours float64 `json:"flight_hours" gorm:"column:flight_hours"`

	Passengers int     `json:"passengers" gorm:"column:passengers"`
	Seats      int     `json:"seats" gorm:"column:seats"`
	Revenue    float64 `json:"revenue" gorm:"column:revenue"`

	// DeadheadCrew counts crew positioned on this flight without working it.
	DeadheadCrew int `json:"deadhead_crew" gorm:"column:deadhead_crew"`

	// WeatherCondition and WindSpeedMPS come from the weather feed and are optional.
	WeatherCondition string  `json:"weather_condition" gorm:"column:weather_condition"`
	WindSpeedMPS     float64 `json:"wind_speed_mps" gorm:"column:wind_speed_mps"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (FlightRecord) TableName() string { return "flight_records" }

// Route returns the categorical route key, e.g. "OPSK-OMDB".
func (f *FlightRecord) Route() string {
	if f.Departure == "" || f.Arrival == "" {
		return ""
	}
	return f.Departure + "-" + f.Arrival
}

// IsDelayed reports whether the record represents a delayed flight.
func (f *FlightRecord) IsDelayed() bool {
	return f.Status == FlightStatusDelayed || f.DelayMinutes > 15
}

// Flight status values supplied by the operational feeds.
const (
	FlightStatusScheduled = "Scheduled"
	FlightStatusDeparted  = "Departed"
	FlightStatusArrived   = "Arrived"
	FlightStatusDelayed   = "Delayed"
	FlightStatusCancelled = "Cancelled"
)

// AircraftRecord is the per-airframe utilisation snapshot used for maintenance
// risk scoring. A new snapshot is appended when utilisation figures change.
type AircraftRecord struct {
	RecordID     string `json:"record_id" gorm:"column:record_id;primaryKey"`
	TenantID     string `json:"tenant_id" gorm:"column:tenant_id;index:idx_aircraft_tenant_time"`
	Registration string `json:"registration" gorm:"column:registration"`
	AircraftType string `json:"aircraft_type" gorm:"column:aircraft_type"`

	AgeYears         float64 `json:"age_years" gorm:"column:age_years"`
	TotalFlightHours float64 `json:"total_flight_hours" gorm:"column:total_flight_hours"`
	TotalCycles      float64 `json:"total_cycles" gorm:"column:total_cycles"`

	// LastMaintenanceAt is nil when no maintenance has been recorded yet.
	LastMaintenanceAt *time.Time `json:"last_maintenance_at,omitempty" gorm:"column:last_maintenance_at"`

	RecordedAt time.Time `json:"recorded_at" gorm:"column:recorded_at;index:idx_aircraft_tenant_time"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (AircraftRecord) TableName() string { return "aircraft_records" }
