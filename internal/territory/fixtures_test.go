package territory

import (
	"context"

	"github.com/stretchr/testify/mock"

	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

const (
	testEpci = "200000001"
	testZPC  = "1_1"
)

func testDirectory() *location.StaticDirectory {
	return location.NewStaticDirectory(
		[]location.Commune{
			{Insee: "01001", Name: "Alpha", Epci: testEpci, ZPC: testZPC, Population: 100},
			{Insee: "01002", Name: "Beta", Epci: testEpci, ZPC: testZPC, Population: 300},
			{Insee: "02001", Name: "Gamma", Epci: "200000002", ZPC: testZPC, Population: 50},
		},
		[]location.EPCI{
			{Code: testEpci, Name: "CC du Test", Members: []string{"01001", "01002"}, Population: 400},
			{Code: "200000002", Name: "CC Voisine", Members: []string{"02001"}, Population: 50},
		},
	)
}

// testTables has a cropland to vineyard change of 3 ha/year in each member
// commune of the test EPCI. Gamma has no wood harvest row.
func testTables() *reference.Tables {
	t := reference.NewTables()
	t.SetGroundFlux(testZPC, "cult", "vign", reference.GroundFlux{AnnualFlux: -2, YearsForFlux: 20})
	t.SetCarbonDensity(testZPC, "cultures", 50)
	for _, insee := range []string{"01001", "01002"} {
		t.SetAreaChange(insee, "211", "221", 18)
		t.SetGroundArea(insee, "211", 100)
		t.SetWoodHarvest(insee, reference.CompositionFeuillus, reference.WoodHarvest{Bo: 10, Bi: 20})
		t.SetWoodHarvest(insee, reference.CompositionConiferes, reference.WoodHarvest{})
	}
	t.SetWoodHarvest(reference.NationalKey, reference.CompositionFeuillus, reference.WoodHarvest{Bo: 100, Bi: 200})
	t.SetWoodHarvest(reference.NationalKey, reference.CompositionConiferes, reference.WoodHarvest{})
	t.SetNationalWoodProducts(reference.DefaultNationalWoodProducts())
	t.SetNationalPopulation(10000)
	return t
}

// MockLoader is a mock implementation of reference.Loader
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, communes []location.Commune) (reference.Source, error) {
	args := m.Called(ctx, communes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(reference.Source), args.Error(1)
}

// MockWarmer is a mock implementation of Warmer
type MockWarmer struct {
	mock.Mock
}

func (m *MockWarmer) Warm(ctx context.Context, epcis []string) error {
	return m.Called(ctx, epcis).Error(0)
}
