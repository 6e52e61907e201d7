// Package reference holds the reference data consumed by the carbon engines:
// land cover changes, flux coefficients, carbon densities, forest inventory
// and wood harvest statistics.
package reference

import (
	"errors"
)

// ErrMissingReferenceRow is returned when a reference row required by the
// methodology is absent. It signals a data-integrity problem, not a zero.
var ErrMissingReferenceRow = errors.New("missing reference row")

// NationalKey keys the France-wide rows of the harvest and forest tables
const NationalKey = "NATIONAL"

// Wood compositions used by the harvest statistics
const (
	CompositionFeuillus  = "feuillus"
	CompositionConiferes = "coniferes"
)

// WoodCompositions lists the harvest compositions summed by the wood products calculations
var WoodCompositions = []string{CompositionFeuillus, CompositionConiferes}

// Wood product categories
const (
	CategoryBo = "bo" // bois d'oeuvre, sawlogs
	CategoryBi = "bi" // bois d'industrie
)

// WoodCategories lists the wood product categories in output order
var WoodCategories = []string{CategoryBo, CategoryBi}

// GroundFlux is a soil flux coefficient
type GroundFlux struct {
	AnnualFlux   float64 `json:"annualFlux"`
	YearsForFlux float64 `json:"yearsForFlux,omitempty"`
}

// ForestInventory is the forest inventory row of a commune and composition
type ForestInventory struct {
	Area             float64 `json:"area"`
	Growth           float64 `json:"growth"`
	Mortality        float64 `json:"mortality"`
	TimberExtraction float64 `json:"timberExtraction"`
	FluxMeterCubed   float64 `json:"fluxMeterCubed"`
	ConversionFactor float64 `json:"conversionFactor"`
	AnnualFlux       float64 `json:"annualFlux"`
	LiveDensity      float64 `json:"liveDensity"`
	DeadDensity      float64 `json:"deadDensity"`
}

// ForestDensity is the live and dead biomass carbon density of a forest, tC/ha
type ForestDensity struct {
	Live float64 `json:"live"`
	Dead float64 `json:"dead"`
}

// Total returns live + dead density
func (d ForestDensity) Total() float64 {
	return d.Live + d.Dead
}

// WoodHarvest is an annual harvest volume per wood category
type WoodHarvest struct {
	Bo float64 `json:"bo"`
	Bi float64 `json:"bi"`
}

// Get returns the harvest of a category
func (h WoodHarvest) Get(category string) float64 {
	if category == CategoryBi {
		return h.Bi
	}
	return h.Bo
}

// NationalWoodProducts holds the France-wide wood products figures, in tCO2e
type NationalWoodProducts struct {
	FluxBo  float64 `json:"fluxBo"`
	FluxBi  float64 `json:"fluxBi"`
	StockBo float64 `json:"stockBo"`
	StockBi float64 `json:"stockBi"`
}

// Flux returns the annual national flux of a category
func (n NationalWoodProducts) Flux(category string) float64 {
	if category == CategoryBi {
		return n.FluxBi
	}
	return n.FluxBo
}

// Stock returns the national stock of a category
func (n NationalWoodProducts) Stock(category string) float64 {
	if category == CategoryBi {
		return n.StockBi
	}
	return n.StockBo
}

// DefaultNationalWoodProducts are the CITEPA figures
func DefaultNationalWoodProducts() NationalWoodProducts {
	return NationalWoodProducts{
		FluxBo:  812000,
		FluxBi:  751000,
		StockBo: 177419001,
		StockBi: 258680001,
	}
}

// Source is the set of key/value lookups the engines consume. Lookups are pure
// and safe for concurrent use once the source is built.
//
// Missing optional rows are reported through the boolean results or as zero;
// only rows the methodology cannot do without return ErrMissingReferenceRow.
type Source interface {
	// AreaChange returns the hectares that changed from one CLC code to
	// another between the two land cover surveys
	AreaChange(insee, fromCode, toCode string) float64
	// ForestAreaChange returns the annual hectares entering a forest subtype
	ForestAreaChange(insee, from, subtype string) float64
	// GroundCarbonFlux returns the soil flux between two flux identifiers
	GroundCarbonFlux(zpc, fromFluxID, toFluxID string) (GroundFlux, bool)
	// BiomassFlux returns the non-forest biomass flux between two ground types
	BiomassFlux(epci, from, to string) (float64, bool)
	// CarbonDensity returns the soil carbon density of a ground type, tC/ha
	CarbonDensity(zpc, groundType string) float64
	// BiomassCarbonDensity returns the non-forest biomass density of a ground type
	BiomassCarbonDensity(epci, groundType string) float64
	// ForestInventory returns the inventory row of a forest subtype, nil when
	// the commune has none
	ForestInventory(insee, subtype string) (*ForestInventory, error)
	// ForestBiomassDensities returns live and dead densities of a forest
	// subtype, falling back to the national row
	ForestBiomassDensities(insee, subtype string) (ForestDensity, error)
	// WoodHarvest returns the harvest of a composition for a commune or NationalKey
	WoodHarvest(key, composition string) (WoodHarvest, error)
	NationalWoodProducts() NationalWoodProducts
	NationalPopulation() int
	// GroundArea returns the hectares covered by a CLC code
	GroundArea(insee, clcCode string) float64
	// Hedgerows returns the hedgerow length in km
	Hedgerows(insee string) float64
}
