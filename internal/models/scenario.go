package models

type DisasterType string

const (
	DisasterTypeFlood      DisasterType = "flood"
	DisasterTypeFire       DisasterType = "fire"
	DisasterTypeEarthquake DisasterType = "earthquake"
	DisasterTypeHurricane  DisasterType = "hurricane"
)

func (t DisasterType) IsValid() bool {
	switch t {
	case DisasterTypeFlood, DisasterTypeFire, DisasterTypeEarthquake, DisasterTypeHurricane:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

const (
	MaxPopulationAffected = 10_000_000
	MaxAreaSizeKm2        = 100_000.0
)

// Scenario describes one disaster event as submitted by the operator.
// It is consumed once by the estimation engine and never mutated.
type Scenario struct {
	DisasterType       DisasterType `json:"disaster_type"`
	Severity           Severity     `json:"severity"`
	PopulationAffected int64        `json:"population_affected"`
	AreaSizeKm2        float64      `json:"area_size_km2"`
	Magnitude          *float64     `json:"magnitude,omitempty"` // Richter scale, earthquakes only
}

// ResourcePlan is the engine's computed output for a scenario. Replaced
// wholesale by the next estimate, never partially updated.
type ResourcePlan struct {
	DisasterType     DisasterType `json:"disaster_type"`
	Food             int          `json:"food"`  // meals per day
	Water            int          `json:"water"` // liters per day
	Rescuers         int          `json:"rescuers"`
	MedicalStaff     int          `json:"medical_staff"`
	Shelters         int          `json:"shelters"`
	Capacity         int          `json:"capacity"` // people per shelter
	Vehicles         int          `json:"vehicles"`
	RescueTeams      []string     `json:"rescue_teams"`
	MedicalEquipment []string     `json:"medical_equipment"`
	VehicleTypes     []string     `json:"vehicle_types"`
	Magnitude        *float64     `json:"magnitude,omitempty"`
	MagnitudeBand    string       `json:"magnitude_band,omitempty"`
}
