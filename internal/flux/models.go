package flux

import (
	"time"

	"github.com/google/uuid"
)

// Reservoir is the carbon pool a flux applies to
type Reservoir string

const (
	ReservoirSol          Reservoir = "sol"
	ReservoirLitiere      Reservoir = "litière"
	ReservoirBiomasse     Reservoir = "biomasse"
	ReservoirSolEtLitiere Reservoir = "sol et litière"
)

// Gas is the greenhouse gas a flux value is expressed in
type Gas string

const (
	GasC   Gas = "C"
	GasN2O Gas = "N2O"
)

// WoodMethod selects how national wood products sequestration is apportioned
type WoodMethod string

const (
	WoodMethodHarvest     WoodMethod = "harvest"
	WoodMethodConsumption WoodMethod = "consumption"
	// WoodMethodConsommation is accepted as an alias of WoodMethodConsumption
	WoodMethodConsommation WoodMethod = "consommation"
)

// DefaultProportionSolsImpermeables is the share of a combined artificial soil
// change assumed to be impermeable
const DefaultProportionSolsImpermeables = 0.8

// Options tunes a flux calculation. Every field is optional.
type Options struct {
	WoodCalculation            WoodMethod         `json:"woodCalculation,omitempty"`
	ProportionSolsImpermeables *float64           `json:"proportionSolsImpermeables,omitempty"`
	AreaChanges                map[string]float64 `json:"areaChanges,omitempty"`
	Areas                      map[string]float64 `json:"areas,omitempty"`
}

// Proportion returns the impermeable proportion, defaulting to 0.8
func (o Options) Proportion() float64 {
	if o.ProportionSolsImpermeables == nil {
		return DefaultProportionSolsImpermeables
	}
	return *o.ProportionSolsImpermeables
}

// WoodMethod returns the normalized wood products method
func (o Options) WoodMethod() WoodMethod {
	switch o.WoodCalculation {
	case WoodMethodConsumption, WoodMethodConsommation:
		return WoodMethodConsumption
	}
	return WoodMethodHarvest
}

// OriginDeforestation marks the biomass delta entries of forest clearing,
// which share their transition, reservoir and gas with the non-forest
// biomass flux
const OriginDeforestation = "deforestation"

// HasModifications reports whether the options override any area
func (o Options) HasModifications() bool {
	return len(o.AreaChanges) > 0 || len(o.Areas) > 0
}

// Entry is one flux of one commune (or, after override merging, of the
// territory) for a ground type transition, reservoir and gas.
// Positive values are sequestration, negative values emissions.
type Entry struct {
	Commune      string    `json:"commune,omitempty"`
	From         string    `json:"from,omitempty"`
	To           string    `json:"to"`
	Reservoir    Reservoir `json:"reservoir"`
	Gas          Gas       `json:"gas"`
	AnnualFlux   float64   `json:"annualFlux"`
	YearsForFlux float64   `json:"yearsForFlux,omitempty"`
	Area         float64   `json:"area"`
	OriginalArea float64   `json:"originalArea"`
	AreaModified bool      `json:"areaModified,omitempty"`
	Flux         float64   `json:"flux"`
	Value        float64   `json:"value"`
	CO2e         *float64  `json:"co2e,omitempty"`
	Origin       string    `json:"origin,omitempty"`

	// forest biomass growth
	Growth               float64 `json:"growth,omitempty"`
	Mortality            float64 `json:"mortality,omitempty"`
	TimberExtraction     float64 `json:"timberExtraction,omitempty"`
	FluxMeterCubed       float64 `json:"fluxMeterCubed,omitempty"`
	ConversionFactor     float64 `json:"conversionFactor,omitempty"`
	AnnualFluxEquivalent float64 `json:"annualFluxEquivalent,omitempty"`

	// wood products
	Category            string  `json:"category,omitempty"`
	LocalHarvest        float64 `json:"localHarvest,omitempty"`
	FranceHarvest       float64 `json:"franceHarvest,omitempty"`
	LocalPopulation     int     `json:"localPopulation,omitempty"`
	FrancePopulation    int     `json:"francePopulation,omitempty"`
	LocalPortion        float64 `json:"localPortion,omitempty"`
	FranceSequestration float64 `json:"franceSequestration,omitempty"`
}

// HasCO2e reports whether the entry carries a usable CO2e value
func (e Entry) HasCO2e() bool {
	return e.CO2e != nil && !isNaN(*e.CO2e)
}

// CO2eValue returns the CO2e value, 0 when not computed
func (e Entry) CO2eValue() float64 {
	if e.CO2e == nil {
		return 0
	}
	return *e.CO2e
}

// IsGrowth reports whether the entry is a forest biomass growth figure
func (e Entry) IsGrowth() bool {
	return e.From == "" && e.Reservoir == ReservoirBiomasse && e.Category == ""
}

// SummaryRow aggregates the entries of one ground type (and its subtypes)
type SummaryRow struct {
	TotalCarbonSequestration float64 `json:"totalCarbonSequestration"`
	TotalSequestration       float64 `json:"totalSequestration"`
	AreaModified             bool    `json:"areaModified,omitempty"`
	HasModifications         bool    `json:"hasModifications,omitempty"`
}

// BiomassRow is the territory growth summary of a forest subtype
type BiomassRow struct {
	To                   string  `json:"to"`
	Area                 float64 `json:"area"`
	OriginalArea         float64 `json:"originalArea,omitempty"`
	AreaModified         bool    `json:"areaModified,omitempty"`
	CO2e                 float64 `json:"co2e"`
	Growth               float64 `json:"growth"`
	Mortality            float64 `json:"mortality"`
	TimberExtraction     float64 `json:"timberExtraction"`
	FluxMeterCubed       float64 `json:"fluxMeterCubed"`
	ConversionFactor     float64 `json:"conversionFactor"`
	AnnualFlux           float64 `json:"annualFlux"`
	AnnualFluxEquivalent float64 `json:"annualFluxEquivalent"`
}

// AreaRow is the annual area change of a ground type pair over the territory
type AreaRow struct {
	Area         float64 `json:"area"`
	OriginalArea float64 `json:"originalArea"`
	AreaModified bool    `json:"areaModified,omitempty"`
}

// CalculationStep traces one stage of the pipeline
type CalculationStep struct {
	StepNumber  int                    `json:"step_number"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Outputs     map[string]interface{} `json:"outputs"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Result is the outcome of a flux calculation
type Result struct {
	CalculationID  uuid.UUID                      `json:"calculationId"`
	Territory      string                         `json:"territory"`
	AllFlux        []Entry                        `json:"allFlux"`
	Summary        map[string]*SummaryRow         `json:"summary"`
	BiomassSummary []BiomassRow                   `json:"biomassSummary"`
	Areas          map[string]map[string]*AreaRow `json:"areas"`
	Total          float64                        `json:"total"`
	Steps          []CalculationStep              `json:"steps,omitempty"`
}
