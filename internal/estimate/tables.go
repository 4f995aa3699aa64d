package estimate

import (
	"fmt"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

type resource string

const (
	resFood         resource = "food"
	resWater        resource = "water"
	resRescuers     resource = "rescuers"
	resMedicalStaff resource = "medical_staff"
	resShelters     resource = "shelters"
	resCapacity     resource = "capacity"
	resVehicles     resource = "vehicles"
)

// baseResources is the fixed base vector per 1,000 affected people.
var baseResources = map[resource]float64{
	resFood:         3000, // meals/day
	resWater:        5000, // liters/day
	resRescuers:     20,
	resMedicalStaff: 15,
	resShelters:     3,
	resCapacity:     400, // people per shelter, not population-scaled
	resVehicles:     10,
}

// severityScalar applies to every quantity except capacity.
var severityScalar = map[models.Severity]float64{
	models.SeverityLow:      0.7,
	models.SeverityMedium:   1.0,
	models.SeverityHigh:     1.5,
	models.SeverityCritical: 2.5,
}

// catalogDepth is the prefix length selected from each catalog per severity.
// Higher severity always exposes a strict superset of the lower tiers.
var catalogDepth = map[models.Severity]int{
	models.SeverityLow:      1,
	models.SeverityMedium:   2,
	models.SeverityHigh:     3,
	models.SeverityCritical: 4,
}

const maxCatalogDepth = 4

// typeMultipliers tunes each resource independently per disaster type.
// Earthquakes shift the plan toward search/rescue and trauma care while
// shrinking per-shelter capacity (structural damage reduces usable space).
var typeMultipliers = map[models.DisasterType]map[resource]float64{
	models.DisasterTypeFlood: {
		resFood:         1.2,
		resWater:        1.5,
		resRescuers:     1.5,
		resMedicalStaff: 1.0,
		resShelters:     1.3,
		resCapacity:     1.0,
		resVehicles:     1.4,
	},
	models.DisasterTypeFire: {
		resFood:         1.0,
		resWater:        2.0,
		resRescuers:     1.3,
		resMedicalStaff: 1.5,
		resShelters:     1.1,
		resCapacity:     1.0,
		resVehicles:     1.2,
	},
	models.DisasterTypeEarthquake: {
		resFood:         1.3,
		resWater:        1.4,
		resRescuers:     2.0,
		resMedicalStaff: 1.8,
		resShelters:     1.5,
		resCapacity:     0.8,
		resVehicles:     1.5,
	},
	models.DisasterTypeHurricane: {
		resFood:         1.5,
		resWater:        1.3,
		resRescuers:     1.4,
		resMedicalStaff: 1.2,
		resShelters:     1.6,
		resCapacity:     0.9,
		resVehicles:     1.3,
	},
}

type catalogKind string

const (
	catalogRescueTeams      catalogKind = "rescue_teams"
	catalogMedicalEquipment catalogKind = "medical_equipment"
	catalogVehicleTypes     catalogKind = "vehicle_types"
)

// catalogs holds the ordered specialization lists per disaster type. Severity
// selects a prefix, so ordering is from baseline response to heaviest assets.
var catalogs = map[models.DisasterType]map[catalogKind][]string{
	models.DisasterTypeFlood: {
		catalogRescueTeams:      {"Swift water rescue", "Boat rescue units", "Helicopter rescue", "Dive teams"},
		catalogMedicalEquipment: {"First aid kits", "Water purification tablets", "Mobile clinics", "Field hospitals"},
		catalogVehicleTypes:     {"High-clearance trucks", "Rescue boats", "Amphibious vehicles", "Helicopters"},
	},
	models.DisasterTypeFire: {
		catalogRescueTeams:      {"Firefighting crews", "Smoke rescue teams", "Hazmat units", "Aerial suppression teams"},
		catalogMedicalEquipment: {"Burn kits", "Oxygen supplies", "Respiratory support units", "Mobile burn units"},
		catalogVehicleTypes:     {"Fire engines", "Water tankers", "Ambulances", "Air tankers"},
	},
	models.DisasterTypeEarthquake: {
		catalogRescueTeams:      {"Urban search and rescue", "Structural assessment teams", "Heavy rescue squads", "K9 search units"},
		catalogMedicalEquipment: {"Trauma kits", "Surgical supplies", "Field hospitals", "Blood bank units"},
		catalogVehicleTypes:     {"Ambulances", "Heavy cranes", "Excavators", "Mobile command centers"},
	},
	models.DisasterTypeHurricane: {
		catalogRescueTeams:      {"Swift water rescue", "High-wind response teams", "Helicopter rescue", "Coastal rescue units"},
		catalogMedicalEquipment: {"First aid kits", "Generator-powered medical units", "Mobile clinics", "Dialysis support units"},
		catalogVehicleTypes:     {"High-clearance trucks", "Utility repair trucks", "Helicopters", "Fuel tankers"},
	},
}

var allResources = []resource{
	resFood, resWater, resRescuers, resMedicalStaff, resShelters, resCapacity, resVehicles,
}

var allCatalogKinds = []catalogKind{
	catalogRescueTeams, catalogMedicalEquipment, catalogVehicleTypes,
}

var allDisasterTypes = []models.DisasterType{
	models.DisasterTypeFlood,
	models.DisasterTypeFire,
	models.DisasterTypeEarthquake,
	models.DisasterTypeHurricane,
}

// validateTables checks the lookup tables once at engine construction.
// Every disaster type needs a positive multiplier for every resource, and
// every catalog needs exactly one entry per severity tier. Fixed-length
// catalogs make the severity prefixes strict supersets by construction.
func validateTables() error {
	for _, dt := range allDisasterTypes {
		mults, ok := typeMultipliers[dt]
		if !ok {
			return fmt.Errorf("missing multiplier row for disaster type %q", dt)
		}
		for _, r := range allResources {
			m, ok := mults[r]
			if !ok {
				return fmt.Errorf("missing multiplier for (%s, %s)", dt, r)
			}
			if m <= 0 {
				return fmt.Errorf("multiplier for (%s, %s) must be positive, got %v", dt, r, m)
			}
		}

		cats, ok := catalogs[dt]
		if !ok {
			return fmt.Errorf("missing catalogs for disaster type %q", dt)
		}
		for _, kind := range allCatalogKinds {
			entries, ok := cats[kind]
			if !ok {
				return fmt.Errorf("missing catalog (%s, %s)", dt, kind)
			}
			if len(entries) != maxCatalogDepth {
				return fmt.Errorf("catalog (%s, %s) must have exactly %d entries, got %d",
					dt, kind, maxCatalogDepth, len(entries))
			}
			for i, e := range entries {
				if e == "" {
					return fmt.Errorf("catalog (%s, %s) entry %d is empty", dt, kind, i)
				}
			}
		}
	}
	return nil
}
