// Package estimate converts disaster scenarios into resource plans. The
// computation is a closed-form lookup-and-scale: a fixed base vector per
// 1,000 affected people, a severity scalar, a per-(type, resource)
// multiplier table, and population/area scaling. Estimates are pure and
// deterministic; identical scenarios always produce identical plans.
package estimate

import (
	"errors"
	"fmt"
	"math"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

// ErrInvalidScenario marks input outside the documented domain. Rejected at
// the boundary before any computation; no partial plan is ever produced.
var ErrInvalidScenario = errors.New("invalid scenario")

type Engine struct{}

// NewEngine validates the lookup tables and returns an engine. Table
// validation here (rather than at estimate time) means a malformed table is
// a startup failure, not a per-request one.
func NewEngine() (*Engine, error) {
	if err := validateTables(); err != nil {
		return nil, fmt.Errorf("estimation tables: %w", err)
	}
	return &Engine{}, nil
}

// Estimate computes the resource plan for a scenario.
func (e *Engine) Estimate(s models.Scenario) (*models.ResourcePlan, error) {
	if err := validateScenario(s); err != nil {
		return nil, err
	}

	sev := severityScalar[s.Severity]
	mults := typeMultipliers[s.DisasterType]
	popScale := float64(s.PopulationAffected) / 1000
	areaScale := s.AreaSizeKm2 / 100

	quantity := func(r resource) int {
		q := baseResources[r] * sev * mults[r] * popScale
		if r == resShelters {
			// Wider geographic spread means more, smaller shelters.
			q *= areaScale
		}
		return int(math.Round(q))
	}

	plan := &models.ResourcePlan{
		DisasterType: s.DisasterType,
		Food:         quantity(resFood),
		Water:        quantity(resWater),
		Rescuers:     quantity(resRescuers),
		MedicalStaff: quantity(resMedicalStaff),
		Shelters:     quantity(resShelters),
		// Capacity is per shelter: type-adjusted only, independent of
		// severity, population and area.
		Capacity:         int(math.Round(baseResources[resCapacity] * mults[resCapacity])),
		Vehicles:         quantity(resVehicles),
		RescueTeams:      catalogPrefix(s.DisasterType, catalogRescueTeams, s.Severity),
		MedicalEquipment: catalogPrefix(s.DisasterType, catalogMedicalEquipment, s.Severity),
		VehicleTypes:     catalogPrefix(s.DisasterType, catalogVehicleTypes, s.Severity),
	}

	if s.DisasterType == models.DisasterTypeEarthquake && s.Magnitude != nil {
		// Magnitude is advisory: it labels the plan but does not feed the
		// numeric computation.
		m := *s.Magnitude
		plan.Magnitude = &m
		plan.MagnitudeBand = MagnitudeBand(m)
	}

	return plan, nil
}

func catalogPrefix(dt models.DisasterType, kind catalogKind, sev models.Severity) []string {
	entries := catalogs[dt][kind]
	depth := catalogDepth[sev]
	out := make([]string, depth)
	copy(out, entries[:depth])
	return out
}

// MagnitudeBand maps a Richter magnitude to its descriptive band.
func MagnitudeBand(magnitude float64) string {
	switch {
	case magnitude < 5:
		return "minor"
	case magnitude < 6:
		return "moderate"
	case magnitude < 7:
		return "severe"
	default:
		return "critical"
	}
}

func validateScenario(s models.Scenario) error {
	if !s.DisasterType.IsValid() {
		return fmt.Errorf("%w: unknown disaster type %q", ErrInvalidScenario, s.DisasterType)
	}
	if !s.Severity.IsValid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidScenario, s.Severity)
	}
	if s.PopulationAffected < 1 || s.PopulationAffected > models.MaxPopulationAffected {
		return fmt.Errorf("%w: population_affected must be between 1 and %d, got %d",
			ErrInvalidScenario, models.MaxPopulationAffected, s.PopulationAffected)
	}
	if s.AreaSizeKm2 <= 0 || s.AreaSizeKm2 > models.MaxAreaSizeKm2 {
		return fmt.Errorf("%w: area_size_km2 must be in (0, %v], got %v",
			ErrInvalidScenario, models.MaxAreaSizeKm2, s.AreaSizeKm2)
	}
	if s.Magnitude != nil && (*s.Magnitude < 1 || *s.Magnitude > 10) {
		return fmt.Errorf("%w: magnitude must be in [1, 10], got %v",
			ErrInvalidScenario, *s.Magnitude)
	}
	return nil
}
