package reference

import (
	"fmt"
	"strings"

	"aldo-territoires/carbon-backend/internal/groundtypes"
)

// Tables is the in-memory Source. Build it with the Set methods, then share it
// read-only between calculations.
type Tables struct {
	areaChanges       map[string]float64
	forestAreaChanges map[string]float64
	groundFlux        map[string]GroundFlux
	biomassFlux       map[string]float64
	carbonDensity     map[string]float64
	biomassDensity    map[string]float64
	forestInventory   map[string]ForestInventory
	woodHarvest       map[string]WoodHarvest
	groundAreas       map[string]float64
	hedgerows         map[string]float64

	national           NationalWoodProducts
	nationalPopulation int
}

// NewTables creates empty tables with the default national wood products figures
func NewTables() *Tables {
	return &Tables{
		areaChanges:       make(map[string]float64),
		forestAreaChanges: make(map[string]float64),
		groundFlux:        make(map[string]GroundFlux),
		biomassFlux:       make(map[string]float64),
		carbonDensity:     make(map[string]float64),
		biomassDensity:    make(map[string]float64),
		forestInventory:   make(map[string]ForestInventory),
		woodHarvest:       make(map[string]WoodHarvest),
		groundAreas:       make(map[string]float64),
		hedgerows:         make(map[string]float64),
		national:          DefaultNationalWoodProducts(),
	}
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}

// SetAreaChange records the hectares changed from one CLC code to another.
// Repeated calls for the same codes accumulate.
func (t *Tables) SetAreaChange(insee, fromCode, toCode string, hectares float64) {
	t.areaChanges[key(insee, fromCode, toCode)] += hectares
}

// SetForestAreaChange records the annual hectares entering a forest subtype
func (t *Tables) SetForestAreaChange(insee, from, subtype string, hectares float64) {
	t.forestAreaChanges[key(insee, from, subtype)] = hectares
}

// SetGroundFlux records a soil flux coefficient
func (t *Tables) SetGroundFlux(zpc, fromFluxID, toFluxID string, flux GroundFlux) {
	t.groundFlux[key(zpc, fromFluxID, toFluxID)] = flux
}

// SetBiomassFlux records a non-forest biomass flux coefficient
func (t *Tables) SetBiomassFlux(epci, from, to string, flux float64) {
	t.biomassFlux[key(epci, from, to)] = flux
}

// SetCarbonDensity records a soil carbon density
func (t *Tables) SetCarbonDensity(zpc, groundType string, density float64) {
	t.carbonDensity[key(zpc, groundType)] = density
}

// SetBiomassCarbonDensity records a non-forest biomass density
func (t *Tables) SetBiomassCarbonDensity(epci, groundType string, density float64) {
	t.biomassDensity[key(epci, groundType)] = density
}

// SetForestInventory records a forest inventory row. The composition is the
// inventory label ("Mixte", "Feuillu", "Conifere", "Peupleraie").
func (t *Tables) SetForestInventory(insee, composition string, row ForestInventory) {
	t.forestInventory[key(insee, composition)] = row
}

// SetWoodHarvest records the harvest of a composition for a commune or NationalKey
func (t *Tables) SetWoodHarvest(k, composition string, harvest WoodHarvest) {
	t.woodHarvest[key(k, composition)] = harvest
}

// SetGroundArea records the hectares covered by a CLC code
func (t *Tables) SetGroundArea(insee, clcCode string, hectares float64) {
	t.groundAreas[key(insee, clcCode)] += hectares
}

// SetHedgerows records the hedgerow length of a commune, in km
func (t *Tables) SetHedgerows(insee string, km float64) {
	t.hedgerows[insee] = km
}

// SetNationalWoodProducts replaces the national wood products figures
func (t *Tables) SetNationalWoodProducts(n NationalWoodProducts) {
	t.national = n
}

// SetNationalPopulation records the population of France
func (t *Tables) SetNationalPopulation(population int) {
	t.nationalPopulation = population
}

// AreaChange implements Source
func (t *Tables) AreaChange(insee, fromCode, toCode string) float64 {
	return t.areaChanges[key(insee, fromCode, toCode)]
}

// ForestAreaChange implements Source
func (t *Tables) ForestAreaChange(insee, from, subtype string) float64 {
	return t.forestAreaChanges[key(insee, from, subtype)]
}

// GroundCarbonFlux implements Source
func (t *Tables) GroundCarbonFlux(zpc, fromFluxID, toFluxID string) (GroundFlux, bool) {
	f, ok := t.groundFlux[key(zpc, fromFluxID, toFluxID)]
	return f, ok
}

// BiomassFlux implements Source
func (t *Tables) BiomassFlux(epci, from, to string) (float64, bool) {
	f, ok := t.biomassFlux[key(epci, from, to)]
	return f, ok
}

// CarbonDensity implements Source. The NATIONAL row is used when the ZPC has none.
func (t *Tables) CarbonDensity(zpc, groundType string) float64 {
	return withNationalFallback(t.carbonDensity, zpc, groundType)
}

// BiomassCarbonDensity implements Source. The NATIONAL row is used when the EPCI has none.
func (t *Tables) BiomassCarbonDensity(epci, groundType string) float64 {
	return withNationalFallback(t.biomassDensity, epci, groundType)
}

func withNationalFallback(densities map[string]float64, territory, groundType string) float64 {
	for _, k := range []string{territory, NationalKey} {
		if d, ok := densities[key(k, groundType)]; ok {
			return d
		}
	}
	return 0
}

// ForestInventory implements Source
func (t *Tables) ForestInventory(insee, subtype string) (*ForestInventory, error) {
	composition, err := groundtypes.ForestComposition(subtype)
	if err != nil {
		return nil, fmt.Errorf("forest inventory: %v: %w", err, ErrMissingReferenceRow)
	}
	row, ok := t.forestInventory[key(insee, composition)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// ForestBiomassDensities implements Source
func (t *Tables) ForestBiomassDensities(insee, subtype string) (ForestDensity, error) {
	composition, err := groundtypes.ForestComposition(subtype)
	if err != nil {
		return ForestDensity{}, fmt.Errorf("forest biomass density: %v: %w", err, ErrMissingReferenceRow)
	}
	for _, k := range []string{insee, NationalKey} {
		if row, ok := t.forestInventory[key(k, composition)]; ok && row.LiveDensity+row.DeadDensity != 0 {
			return ForestDensity{Live: row.LiveDensity, Dead: row.DeadDensity}, nil
		}
	}
	return ForestDensity{}, fmt.Errorf("forest biomass density for %s in %s: %w", composition, insee, ErrMissingReferenceRow)
}

// WoodHarvest implements Source
func (t *Tables) WoodHarvest(k, composition string) (WoodHarvest, error) {
	h, ok := t.woodHarvest[key(k, composition)]
	if !ok {
		return WoodHarvest{}, fmt.Errorf("wood harvest for %s (%s): %w", k, composition, ErrMissingReferenceRow)
	}
	return h, nil
}

// NationalWoodProducts implements Source
func (t *Tables) NationalWoodProducts() NationalWoodProducts {
	return t.national
}

// NationalPopulation implements Source
func (t *Tables) NationalPopulation() int {
	return t.nationalPopulation
}

// GroundArea implements Source
func (t *Tables) GroundArea(insee, clcCode string) float64 {
	return t.groundAreas[key(insee, clcCode)]
}

// Hedgerows implements Source
func (t *Tables) Hedgerows(insee string) float64 {
	return t.hedgerows[insee]
}
