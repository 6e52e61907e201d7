package flux

import (
	"fmt"

	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

// DeforestationResolver computes the biomass lost when a forest subtype turns
// into a non-forest ground type.
//
// Transitions into a forest subtype, and between forest subtypes, produce no
// entry: that biomass is accounted for by the growth figures of the subtypes.
type DeforestationResolver struct {
	catalog *groundtypes.Catalog
	source  reference.Source
	surface *SurfaceResolver
}

// NewDeforestationResolver creates a deforestation resolver
func NewDeforestationResolver(catalog *groundtypes.Catalog, source reference.Source, surface *SurfaceResolver) *DeforestationResolver {
	return &DeforestationResolver{catalog: catalog, source: source, surface: surface}
}

// Entries returns the deforestation biomass entries of a commune with their
// values computed. Transitions with no area or no density difference are skipped.
func (d *DeforestationResolver) Entries(c location.Commune, opts Options) ([]Entry, error) {
	var entries []Entry
	for _, from := range d.catalog.ForestSubtypes() {
		for _, to := range d.catalog.Leaves() {
			if d.catalog.InFamily(to.StocksID, groundtypes.Forets) {
				continue
			}
			area := d.surface.Resolve(c, opts, from, to.StocksID)
			if area.Area == 0 {
				continue
			}
			densities, err := d.source.ForestBiomassDensities(c.Insee, from)
			if err != nil {
				return nil, fmt.Errorf("deforestation from %s in %s: %w", from, c.Insee, err)
			}
			annualFlux := d.source.BiomassCarbonDensity(c.Epci, to.StocksID) - densities.Total()
			if annualFlux == 0 {
				continue
			}
			entry := Entry{
				Commune:              c.Insee,
				From:                 from,
				To:                   to.StocksID,
				Reservoir:            ReservoirBiomasse,
				Gas:                  GasC,
				AnnualFlux:           annualFlux,
				AnnualFluxEquivalent: CToCO2e(annualFlux),
				Area:                 area.Area,
				OriginalArea:         area.OriginalArea,
				AreaModified:         area.AreaModified,
				Origin:               OriginDeforestation,
			}
			ComputeValue(&entry)
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
