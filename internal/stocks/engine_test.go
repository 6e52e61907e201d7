package stocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aldo-territoires/carbon-backend/internal/flux"
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

// stockTables gives c1 150 ha of cropland, 200 ha of broadleaf forest,
// 10 km of hedgerows and a tenth of the national harvest
func stockTables() *reference.Tables {
	t := reference.NewTables()
	t.SetGroundArea("c1", "211", 100)
	t.SetGroundArea("c1", "212", 50)
	t.SetCarbonDensity(testZPC, groundtypes.Cultures, 50)
	t.SetBiomassCarbonDensity(testEpci, groundtypes.Cultures, 2)

	t.SetForestInventory("c1", "Feuillu", reference.ForestInventory{Area: 200, LiveDensity: 60, DeadDensity: 10})
	t.SetCarbonDensity(testZPC, groundtypes.Forets, 80)

	t.SetHedgerows("c1", 10)
	t.SetBiomassCarbonDensity(testEpci, groundtypes.Haies, 50)

	for _, insee := range []string{"c1", "c2"} {
		t.SetWoodHarvest(insee, reference.CompositionFeuillus, reference.WoodHarvest{Bo: 10, Bi: 20})
		t.SetWoodHarvest(insee, reference.CompositionConiferes, reference.WoodHarvest{})
	}
	t.SetWoodHarvest(reference.NationalKey, reference.CompositionFeuillus, reference.WoodHarvest{Bo: 100, Bi: 200})
	t.SetWoodHarvest(reference.NationalKey, reference.CompositionConiferes, reference.WoodHarvest{})
	t.SetNationalWoodProducts(reference.NationalWoodProducts{StockBo: 4400, StockBi: 8800})
	t.SetNationalPopulation(1000)
	return t
}

func locationOf(insees ...string) *location.Location {
	loc := &location.Location{}
	for _, insee := range insees {
		loc.Communes = append(loc.Communes, testCommune(insee))
	}
	return loc
}

func TestComputeStocks(t *testing.T) {
	engine := NewEngine(stockTables(), nil)

	result, err := engine.ComputeStocks(context.Background(), locationOf("c1"), Options{})
	require.NoError(t, err)

	cultures := result.Stocks[groundtypes.Cultures]
	require.NotNil(t, cultures)
	assert.Equal(t, 150.0, cultures.Area)
	assert.InDelta(t, 7500.0, cultures.SoilStock, 1e-9)
	assert.InDelta(t, 300.0, cultures.BiomassStock, 1e-9)
	assert.InDelta(t, 7800.0, cultures.TotalStock, 1e-9)

	feuillu := result.Stocks[groundtypes.ForetFeuillu]
	assert.Equal(t, 200.0, feuillu.Area)
	assert.Equal(t, 80.0, feuillu.SoilDensity)
	assert.InDelta(t, 1800.0, feuillu.LitterStock, 1e-9)
	assert.InDelta(t, 14000.0, feuillu.BiomassStock, 1e-9)
	assert.InDelta(t, 31800.0, feuillu.TotalStock, 1e-9)

	mixte := result.Stocks[groundtypes.ForetMixte]
	assert.Zero(t, mixte.Area)
	assert.Zero(t, mixte.TotalStock)

	forests := result.Stocks[groundtypes.Forets]
	require.NotNil(t, forests)
	assert.Equal(t, 200.0, forests.Area)
	assert.InDelta(t, 31800.0, forests.TotalStock, 1e-9)
	assert.InDelta(t, 9.0, forests.LitterDensity, 1e-12)

	haies := result.Stocks[groundtypes.Haies]
	assert.Equal(t, 10.0, haies.Area)
	assert.InDelta(t, 500.0, haies.BiomassStock, 1e-9)

	assert.InDelta(t, 0.1, result.WoodProducts.PortionBo, 1e-12)
	assert.InDelta(t, 1200.0, result.WoodProducts.FranceStockBo, 1e-9)
	assert.InDelta(t, 360.0, result.WoodProducts.Total, 1e-9)
	assert.InDelta(t, 360.0, result.Stocks[groundtypes.ProduitsBois].TotalStock, 1e-9)

	assert.InDelta(t, 40460.0, result.Total, 1e-9)
	assert.InDelta(t, 7800.0/40460*100, cultures.StockPercentage, 1e-9)
	assert.Equal(t, "c1", result.Territory)
	assert.Len(t, result.Steps, 2)
}

func TestComputeStocks_PercentagesOfLeavesSumTo100(t *testing.T) {
	engine := NewEngine(stockTables(), nil)

	result, err := engine.ComputeStocks(context.Background(), locationOf("c1"), Options{})
	require.NoError(t, err)

	total := 0.0
	for id, s := range result.Stocks {
		if groundtypes.Default.IsLeaf(id) {
			total += s.StockPercentage
		}
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestComputeStocks_AreaOverride(t *testing.T) {
	engine := NewEngine(stockTables(), nil)

	result, err := engine.ComputeStocks(context.Background(), locationOf("c1", "c2"), Options{
		Areas: map[string]float64{groundtypes.Cultures: 300},
	})
	require.NoError(t, err)

	cultures := result.Stocks[groundtypes.Cultures]
	assert.Equal(t, 300.0, cultures.Area)
	assert.Equal(t, 150.0, cultures.OriginalArea)
	assert.True(t, cultures.AreaModified)
	assert.InDelta(t, 15600.0, cultures.TotalStock, 1e-9)
}

func TestComputeStocks_OverrideWithoutArea(t *testing.T) {
	engine := NewEngine(stockTables(), nil)

	result, err := engine.ComputeStocks(context.Background(), locationOf("c2"), Options{
		Areas: map[string]float64{groundtypes.Cultures: 10},
	})
	require.NoError(t, err)

	assert.InDelta(t, 520.0, result.Stocks[groundtypes.Cultures].TotalStock, 1e-9)
}

func TestComputeStocks_SubtypeOverrideFlagsParent(t *testing.T) {
	engine := NewEngine(stockTables(), nil)

	result, err := engine.ComputeStocks(context.Background(), locationOf("c1"), Options{
		Areas: map[string]float64{groundtypes.ForetFeuillu: 100},
	})
	require.NoError(t, err)

	assert.InDelta(t, 15900.0, result.Stocks[groundtypes.ForetFeuillu].TotalStock, 1e-9)
	assert.True(t, result.Stocks[groundtypes.Forets].HasModifications)
	assert.InDelta(t, 15900.0, result.Stocks[groundtypes.Forets].TotalStock, 1e-9)
}

func TestComputeStocks_Consumption(t *testing.T) {
	engine := NewEngine(stockTables(), nil)

	result, err := engine.ComputeStocks(context.Background(), locationOf("c1", "c2"), Options{
		WoodCalculation: flux.WoodMethodConsommation,
	})
	require.NoError(t, err)

	w := result.WoodProducts
	assert.Equal(t, flux.WoodMethodConsumption, w.Method)
	assert.Equal(t, 200, w.LocalPopulation)
	assert.InDelta(t, 0.2, w.PortionBi, 1e-12)
	assert.InDelta(t, 0.2*(1200+2400), w.Total, 1e-9)
}

func TestWoodProducts_SkipsArrondissements(t *testing.T) {
	loc := locationOf("c1")
	loc.Communes = append(loc.Communes, location.Commune{Insee: "75101", Arrondissement: true})

	w, err := WoodProducts(loc, stockTables(), flux.WoodMethodHarvest)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, w.LocalHarvestBo, 1e-12)
}

func TestWoodProducts_MissingHarvest(t *testing.T) {
	_, err := WoodProducts(locationOf("c3"), stockTables(), flux.WoodMethodHarvest)
	assert.ErrorIs(t, err, reference.ErrMissingReferenceRow)
}

func TestComputeStocks_MissingForestDensity(t *testing.T) {
	tables := stockTables()
	tables.SetForestInventory("c1", "Conifere", reference.ForestInventory{Area: 5})

	_, err := NewEngine(tables, nil).ComputeStocks(context.Background(), locationOf("c1"), Options{})
	assert.ErrorIs(t, err, reference.ErrMissingReferenceRow)
}

func TestComputeStocks_Errors(t *testing.T) {
	engine := NewEngine(stockTables(), nil)

	_, err := engine.ComputeStocks(context.Background(), &location.Location{}, Options{})
	assert.ErrorIs(t, err, location.ErrUnknownTerritory)

	for _, opts := range []Options{
		{WoodCalculation: "import"},
		{Areas: map[string]float64{"mars": 1}},
		{Areas: map[string]float64{groundtypes.Forets: 1}},
		{Areas: map[string]float64{groundtypes.ProduitsBois: 1}},
		{Areas: map[string]float64{groundtypes.Vignes: -1}},
	} {
		_, err := engine.ComputeStocks(context.Background(), locationOf("c1"), opts)
		assert.ErrorIs(t, err, flux.ErrInvalidOptions)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.ComputeStocks(ctx, locationOf("c1"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
