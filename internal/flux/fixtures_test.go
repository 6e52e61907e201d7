package flux

import (
	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

const (
	testEpci = "200000001"
	testZPC  = "1_1"
)

func testCommune(insee string) location.Commune {
	return location.Commune{Insee: insee, Epci: testEpci, ZPC: testZPC, Population: 100}
}

// vineyardTables has a cropland to vineyard transition of 3 ha/year in each
// commune, with a soil flux of -2 tC/ha/year amortized over 20 years
func vineyardTables(insees ...string) *reference.Tables {
	t := reference.NewTables()
	t.SetGroundFlux(testZPC, "cult", "vign", reference.GroundFlux{AnnualFlux: -2, YearsForFlux: 20})
	for _, insee := range insees {
		t.SetAreaChange(insee, "211", "221", 18)
		t.SetWoodHarvest(insee, reference.CompositionFeuillus, reference.WoodHarvest{Bo: 10, Bi: 20})
		t.SetWoodHarvest(insee, reference.CompositionConiferes, reference.WoodHarvest{})
	}
	t.SetWoodHarvest(reference.NationalKey, reference.CompositionFeuillus, reference.WoodHarvest{Bo: 100, Bi: 200})
	t.SetWoodHarvest(reference.NationalKey, reference.CompositionConiferes, reference.WoodHarvest{})
	t.SetNationalPopulation(1000)
	return t
}

func entriesFor(entries []Entry, from, to string, reservoir Reservoir) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.From == from && e.To == to && e.Reservoir == reservoir {
			out = append(out, e)
		}
	}
	return out
}

func newTestSurface(source reference.Source) *SurfaceResolver {
	return NewSurfaceResolver(groundtypes.Default, source)
}

func float(v float64) *float64 {
	return &v
}
