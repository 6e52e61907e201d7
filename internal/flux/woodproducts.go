package flux

import (
	"fmt"

	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

// WoodProductsMethod apportions the national wood products sequestration to a commune
type WoodProductsMethod interface {
	// Name returns the option value selecting the method
	Name() WoodMethod
	// Portion returns the local share of a wood category and fills the
	// method-specific fields of the entry
	Portion(c location.Commune, source reference.Source, category string, entry *Entry) (float64, error)
}

// HarvestMethod apportions by the commune share of the national harvest,
// summed over compositions
type HarvestMethod struct{}

// Name implements WoodProductsMethod
func (HarvestMethod) Name() WoodMethod {
	return WoodMethodHarvest
}

// Portion implements WoodProductsMethod
func (HarvestMethod) Portion(c location.Commune, source reference.Source, category string, entry *Entry) (float64, error) {
	local, err := harvestTotal(source, c.Insee, category)
	if err != nil {
		return 0, err
	}
	national, err := harvestTotal(source, reference.NationalKey, category)
	if err != nil {
		return 0, err
	}
	entry.LocalHarvest = local
	entry.FranceHarvest = national
	if national == 0 {
		return 0, nil
	}
	return local / national, nil
}

func harvestTotal(source reference.Source, key, category string) (float64, error) {
	total := 0.0
	for _, composition := range reference.WoodCompositions {
		h, err := source.WoodHarvest(key, composition)
		if err != nil {
			return 0, err
		}
		total += h.Get(category)
	}
	return total, nil
}

// ConsumptionMethod apportions by the commune share of the national population
type ConsumptionMethod struct{}

// Name implements WoodProductsMethod
func (ConsumptionMethod) Name() WoodMethod {
	return WoodMethodConsumption
}

// Portion implements WoodProductsMethod
func (ConsumptionMethod) Portion(c location.Commune, source reference.Source, _ string, entry *Entry) (float64, error) {
	national := source.NationalPopulation()
	entry.LocalPopulation = c.Population
	entry.FrancePopulation = national
	if national == 0 {
		return 0, nil
	}
	return float64(c.Population) / float64(national), nil
}

// WoodProductsEntries returns one entry per wood category for a commune with
// values computed. Arrondissements carry no entry: harvest and population
// statistics are published for their parent commune.
func WoodProductsEntries(c location.Commune, source reference.Source, method WoodProductsMethod) ([]Entry, error) {
	if c.Arrondissement {
		return nil, nil
	}
	national := source.NationalWoodProducts()
	entries := make([]Entry, 0, len(reference.WoodCategories))
	for _, category := range reference.WoodCategories {
		entry := Entry{
			Commune:   c.Insee,
			To:        groundtypes.ProduitsBois,
			Reservoir: ReservoirBiomasse,
			Gas:       GasC,
			Category:  category,
		}
		portion, err := method.Portion(c, source, category, &entry)
		if err != nil {
			return nil, fmt.Errorf("wood products %s (%s) for %s: %w", category, method.Name(), c.Insee, err)
		}
		entry.LocalPortion = portion
		entry.FranceSequestration = CO2eToC(national.Flux(category))
		entry.Value = entry.FranceSequestration * portion
		entry.Flux = entry.Value
		entry.AnnualFlux = entry.Value
		entry.CO2e = ptr(CToCO2e(entry.Value))
		entries = append(entries, entry)
	}
	return entries, nil
}
