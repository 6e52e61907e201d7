package reference

import (
	"gorm.io/datatypes"
)

// ClcChangeRecord holds the CORINE land cover change matrix of a commune,
// keyed "fromCode-toCode", in hectares over the survey interval
type ClcChangeRecord struct {
	Insee   string                                 `gorm:"primaryKey;size:5"`
	Changes datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
}

// TableName overrides the gorm table name
func (ClcChangeRecord) TableName() string { return "clc_changes" }

// ClcAreaRecord holds the CORINE land cover areas of a commune keyed by CLC code
type ClcAreaRecord struct {
	Insee string                                 `gorm:"primaryKey;size:5"`
	Areas datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
}

// TableName overrides the gorm table name
func (ClcAreaRecord) TableName() string { return "clc_areas" }

// ForestAreaChangeRecord is an annual area change into a forest subtype
type ForestAreaChangeRecord struct {
	Insee    string `gorm:"primaryKey;size:5"`
	From     string `gorm:"primaryKey;column:from_type"`
	Subtype  string `gorm:"primaryKey"`
	Hectares float64
}

// TableName overrides the gorm table name
func (ForestAreaChangeRecord) TableName() string { return "forest_area_changes" }

// GroundFluxRecord is a soil flux coefficient per climate-pedology zone
type GroundFluxRecord struct {
	ZPC          string  `gorm:"primaryKey;column:zpc"`
	FromFluxID   string  `gorm:"primaryKey"`
	ToFluxID     string  `gorm:"primaryKey"`
	AnnualFlux   float64 `gorm:"not null"`
	YearsForFlux float64
}

// TableName overrides the gorm table name
func (GroundFluxRecord) TableName() string { return "ground_fluxes" }

// CarbonDensityRecord is a soil carbon density per climate-pedology zone
type CarbonDensityRecord struct {
	ZPC        string  `gorm:"primaryKey;column:zpc"`
	GroundType string  `gorm:"primaryKey"`
	Density    float64 `gorm:"not null"`
}

// TableName overrides the gorm table name
func (CarbonDensityRecord) TableName() string { return "carbon_densities" }

// BiomassFluxRecord is a non-forest biomass flux per EPCI
type BiomassFluxRecord struct {
	Epci       string  `gorm:"primaryKey;size:9"`
	From       string  `gorm:"primaryKey;column:from_type"`
	To         string  `gorm:"primaryKey;column:to_type"`
	AnnualFlux float64 `gorm:"not null"`
}

// TableName overrides the gorm table name
func (BiomassFluxRecord) TableName() string { return "biomass_fluxes" }

// BiomassDensityRecord is a non-forest biomass density per EPCI
type BiomassDensityRecord struct {
	Epci       string  `gorm:"primaryKey;size:9"`
	GroundType string  `gorm:"primaryKey"`
	Density    float64 `gorm:"not null"`
}

// TableName overrides the gorm table name
func (BiomassDensityRecord) TableName() string { return "biomass_densities" }

// ForestInventoryRecord is the IGN inventory row of a commune (or NationalKey)
// and forest composition
type ForestInventoryRecord struct {
	Insee            string `gorm:"primaryKey;size:16"`
	Composition      string `gorm:"primaryKey"`
	Area             float64
	Growth           float64
	Mortality        float64
	TimberExtraction float64
	FluxMeterCubed   float64 `gorm:"column:flux_m3"`
	ConversionFactor float64
	AnnualFlux       float64
	LiveDensity      float64
	DeadDensity      float64
}

// TableName overrides the gorm table name
func (ForestInventoryRecord) TableName() string { return "forest_inventory" }

// ToInventory converts the record to the domain type
func (r ForestInventoryRecord) ToInventory() ForestInventory {
	return ForestInventory{
		Area:             r.Area,
		Growth:           r.Growth,
		Mortality:        r.Mortality,
		TimberExtraction: r.TimberExtraction,
		FluxMeterCubed:   r.FluxMeterCubed,
		ConversionFactor: r.ConversionFactor,
		AnnualFlux:       r.AnnualFlux,
		LiveDensity:      r.LiveDensity,
		DeadDensity:      r.DeadDensity,
	}
}

// WoodHarvestRecord is the annual harvest of a commune (or NationalKey) and composition
type WoodHarvestRecord struct {
	Key         string `gorm:"primaryKey;column:territory_key;size:16"`
	Composition string `gorm:"primaryKey"`
	RecolteBo   float64
	RecolteBi   float64
}

// TableName overrides the gorm table name
func (WoodHarvestRecord) TableName() string { return "wood_harvests" }

// HedgerowRecord is the hedgerow length of a commune
type HedgerowRecord struct {
	Insee    string `gorm:"primaryKey;size:5"`
	LengthKm float64
}

// TableName overrides the gorm table name
func (HedgerowRecord) TableName() string { return "hedgerows" }

// AllModels lists the reference tables for migrations
func AllModels() []interface{} {
	return []interface{}{
		&ClcChangeRecord{},
		&ClcAreaRecord{},
		&ForestAreaChangeRecord{},
		&GroundFluxRecord{},
		&CarbonDensityRecord{},
		&BiomassFluxRecord{},
		&BiomassDensityRecord{},
		&ForestInventoryRecord{},
		&WoodHarvestRecord{},
		&HedgerowRecord{},
	}
}
