package flux

import (
	"fmt"

	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

// LitterDensity is the forest litter carbon density, tC/ha
const LitterDensity = 9.0

// soilRule substitutes the soil flux lookup of a transition
type soilRule struct {
	name    string
	matches func(catalog *groundtypes.Catalog, from, to string) bool
	// resolve returns false when the transition has no soil flux
	resolve func(r *CoefficientResolver, zpc, from, to string) (reference.GroundFlux, bool)
}

func undefinedSoilFlux(*CoefficientResolver, string, string, string) (reference.GroundFlux, bool) {
	return reference.GroundFlux{}, false
}

// soilRules are evaluated in order, the first match wins. Transitions with
// no matching rule are looked up by flux identifiers.
var soilRules []soilRule

// The rules call back into the resolvers, which read the table, so it is
// assigned in init.
func init() {
	soilRules = []soilRule{
		{
			name: "shrubby artificial to wetland",
			matches: func(_ *groundtypes.Catalog, from, to string) bool {
				return from == groundtypes.SolsArbustifs && to == groundtypes.ZonesHumides
			},
			resolve: undefinedSoilFlux,
		},
		{
			name: "shrubby artificial as tree-covered grassland",
			matches: func(_ *groundtypes.Catalog, from, _ string) bool {
				return from == groundtypes.SolsArbustifs
			},
			resolve: func(r *CoefficientResolver, zpc, _, to string) (reference.GroundFlux, bool) {
				// every grassland subtype shares the same flux
				return r.soilFlux(zpc, groundtypes.PrairiesArborees, to)
			},
		},
		{
			name: "tree-covered artificial as forest",
			matches: func(_ *groundtypes.Catalog, from, _ string) bool {
				return from == groundtypes.SolsArbores
			},
			resolve: func(r *CoefficientResolver, zpc, _, to string) (reference.GroundFlux, bool) {
				return r.soilFlux(zpc, groundtypes.Forets, to)
			},
		},
		{
			name: "orchard or vineyard to artificial as cropland",
			matches: func(catalog *groundtypes.Catalog, from, to string) bool {
				return (from == groundtypes.Vergers || from == groundtypes.Vignes) &&
					catalog.InFamily(to, groundtypes.SolsArtificiels)
			},
			resolve: func(r *CoefficientResolver, zpc, _, to string) (reference.GroundFlux, bool) {
				return r.soilFlux(zpc, groundtypes.Cultures, to)
			},
		},
		{
			name: "wetland to impermeable through cropland",
			matches: func(_ *groundtypes.Catalog, from, to string) bool {
				return from == groundtypes.ZonesHumides && to == groundtypes.SolsImpermeabilises
			},
			resolve: func(r *CoefficientResolver, zpc, from, to string) (reference.GroundFlux, bool) {
				first, ok := r.soilFlux(zpc, from, groundtypes.Cultures)
				if !ok {
					return reference.GroundFlux{}, false
				}
				second, ok := r.soilFlux(zpc, groundtypes.Cultures, to)
				if !ok {
					return reference.GroundFlux{}, false
				}
				return addGroundFlux(first, second), true
			},
		},
		{
			name: "grassland to shrubby artificial",
			matches: func(catalog *groundtypes.Catalog, from, to string) bool {
				return to == groundtypes.SolsArbustifs && catalog.InFamily(from, groundtypes.Prairies)
			},
			resolve: undefinedSoilFlux,
		},
		{
			name: "wetland to shrubby artificial as grassland",
			matches: func(_ *groundtypes.Catalog, from, to string) bool {
				return to == groundtypes.SolsArbustifs && from == groundtypes.ZonesHumides
			},
			resolve: func(r *CoefficientResolver, zpc, from, _ string) (reference.GroundFlux, bool) {
				return r.soilFlux(zpc, from, groundtypes.PrairiesArborees)
			},
		},
		{
			name: "forest to tree-covered artificial",
			matches: func(catalog *groundtypes.Catalog, from, to string) bool {
				return to == groundtypes.SolsArbores && catalog.InFamily(from, groundtypes.Forets)
			},
			resolve: undefinedSoilFlux,
		},
		{
			name: "wetland to tree-covered artificial as forest",
			matches: func(_ *groundtypes.Catalog, from, to string) bool {
				return to == groundtypes.SolsArbores && from == groundtypes.ZonesHumides
			},
			resolve: func(r *CoefficientResolver, zpc, from, _ string) (reference.GroundFlux, bool) {
				return r.soilFlux(zpc, from, groundtypes.Forets)
			},
		},
	}
}

// addGroundFlux chains two soil fluxes. Amortization periods are kept when
// equal, otherwise the total fluxes are summed.
func addGroundFlux(a, b reference.GroundFlux) reference.GroundFlux {
	if a.YearsForFlux == b.YearsForFlux {
		return reference.GroundFlux{AnnualFlux: a.AnnualFlux + b.AnnualFlux, YearsForFlux: a.YearsForFlux}
	}
	total := func(f reference.GroundFlux) float64 {
		if f.YearsForFlux == 0 {
			return f.AnnualFlux
		}
		return f.AnnualFlux * f.YearsForFlux
	}
	return reference.GroundFlux{AnnualFlux: total(a) + total(b)}
}

// CoefficientResolver lists the flux coefficients known for a commune
type CoefficientResolver struct {
	catalog *groundtypes.Catalog
	source  reference.Source
}

// NewCoefficientResolver creates a coefficient resolver over a reference source
func NewCoefficientResolver(catalog *groundtypes.Catalog, source reference.Source) *CoefficientResolver {
	return &CoefficientResolver{catalog: catalog, source: source}
}

// soilFlux looks up the soil flux of a transition through the substitution rules
func (r *CoefficientResolver) soilFlux(zpc, from, to string) (reference.GroundFlux, bool) {
	for _, rule := range soilRules {
		if rule.matches(r.catalog, from, to) {
			return rule.resolve(r, zpc, from, to)
		}
	}
	f, ok := r.catalog.Get(from)
	if !ok || f.FluxID == "" {
		return reference.GroundFlux{}, false
	}
	t, ok := r.catalog.Get(to)
	if !ok || t.FluxID == "" {
		return reference.GroundFlux{}, false
	}
	return r.source.GroundCarbonFlux(zpc, f.FluxID, t.FluxID)
}

// SoilFlux returns the soil flux of a transition for a commune
func (r *CoefficientResolver) SoilFlux(c location.Commune, from, to string) (reference.GroundFlux, bool) {
	return r.soilFlux(c.ZPC, from, to)
}

// LitterFlux returns the litter flux of a transition: litter is gained when
// entering a forest-like ground type and lost when leaving one
func (r *CoefficientResolver) LitterFlux(from, to string) (float64, bool) {
	fromForest := r.catalog.IsForestLike(from)
	toForest := r.catalog.IsForestLike(to)
	switch {
	case fromForest && !toForest:
		return -LitterDensity, true
	case !fromForest && toForest:
		return LitterDensity, true
	}
	return 0, false
}

// Entries returns the raw flux entries of a commune: soil, litter and
// non-forest biomass per transition, then forest biomass growth per subtype.
// Areas and values are not filled.
func (r *CoefficientResolver) Entries(c location.Commune) ([]Entry, error) {
	var entries []Entry
	leaves := r.catalog.Leaves()

	for _, from := range leaves {
		for _, to := range leaves {
			if from.StocksID == to.StocksID {
				continue
			}
			if from.FluxID != "" && to.FluxID != "" {
				if soil, ok := r.SoilFlux(c, from.StocksID, to.StocksID); ok {
					entries = append(entries, Entry{
						Commune:      c.Insee,
						From:         from.StocksID,
						To:           to.StocksID,
						Reservoir:    ReservoirSol,
						Gas:          GasC,
						AnnualFlux:   soil.AnnualFlux,
						YearsForFlux: soil.YearsForFlux,
					})
				}
				if litter, ok := r.LitterFlux(from.StocksID, to.StocksID); ok {
					entries = append(entries, Entry{
						Commune:    c.Insee,
						From:       from.StocksID,
						To:         to.StocksID,
						Reservoir:  ReservoirLitiere,
						Gas:        GasC,
						AnnualFlux: litter,
					})
				}
			}
			if groundtypes.HasNonForestBiomass(from.StocksID) && groundtypes.HasNonForestBiomass(to.StocksID) {
				if biomass, ok := r.source.BiomassFlux(c.Epci, from.StocksID, to.StocksID); ok {
					entries = append(entries, Entry{
						Commune:    c.Insee,
						From:       from.StocksID,
						To:         to.StocksID,
						Reservoir:  ReservoirBiomasse,
						Gas:        GasC,
						AnnualFlux: biomass,
					})
				}
			}
		}
	}

	for _, subtype := range r.catalog.ForestSubtypes() {
		growth, err := r.ForestGrowth(c, subtype)
		if err != nil {
			return nil, err
		}
		if growth != nil {
			entries = append(entries, *growth)
		}
	}
	return entries, nil
}

// ForestGrowth returns the biomass growth entry of a forest subtype, nil when
// the commune has no inventory row for it. The entry area is the forest area.
func (r *CoefficientResolver) ForestGrowth(c location.Commune, subtype string) (*Entry, error) {
	inv, err := r.source.ForestInventory(c.Insee, subtype)
	if err != nil {
		return nil, fmt.Errorf("forest growth of %s in %s: %w", subtype, c.Insee, err)
	}
	if inv == nil {
		return nil, nil
	}
	return &Entry{
		Commune:              c.Insee,
		To:                   subtype,
		Reservoir:            ReservoirBiomasse,
		Gas:                  GasC,
		AnnualFlux:           inv.AnnualFlux,
		Area:                 inv.Area,
		OriginalArea:         inv.Area,
		Growth:               inv.Growth,
		Mortality:            inv.Mortality,
		TimberExtraction:     inv.TimberExtraction,
		FluxMeterCubed:       inv.FluxMeterCubed,
		ConversionFactor:     inv.ConversionFactor,
		AnnualFluxEquivalent: CToCO2e(inv.AnnualFlux),
	}, nil
}
