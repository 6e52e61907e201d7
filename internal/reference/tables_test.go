package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aldo-territoires/carbon-backend/internal/groundtypes"
)

func TestTables_AreaChangeAccumulates(t *testing.T) {
	tables := NewTables()
	tables.SetAreaChange("01001", "211", "221", 3)
	tables.SetAreaChange("01001", "211", "221", 2)

	assert.Equal(t, 5.0, tables.AreaChange("01001", "211", "221"))
	assert.Zero(t, tables.AreaChange("01001", "221", "211"))
}

func TestTables_ForestInventory(t *testing.T) {
	tables := NewTables()
	tables.SetForestInventory("01001", "Mixte", ForestInventory{Area: 12, Growth: 5})

	row, err := tables.ForestInventory("01001", groundtypes.ForetMixte)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 12.0, row.Area)

	row, err = tables.ForestInventory("01001", groundtypes.ForetFeuillu)
	require.NoError(t, err)
	assert.Nil(t, row)

	_, err = tables.ForestInventory("01001", groundtypes.Cultures)
	assert.ErrorIs(t, err, ErrMissingReferenceRow)
}

func TestTables_ForestBiomassDensitiesFallsBackToNational(t *testing.T) {
	tables := NewTables()
	tables.SetForestInventory(NationalKey, "Feuillu", ForestInventory{LiveDensity: 80, DeadDensity: 10})
	tables.SetForestInventory("01001", "Mixte", ForestInventory{LiveDensity: 15, DeadDensity: 5})

	d, err := tables.ForestBiomassDensities("01001", groundtypes.ForetMixte)
	require.NoError(t, err)
	assert.Equal(t, 20.0, d.Total())

	d, err = tables.ForestBiomassDensities("01001", groundtypes.ForetFeuillu)
	require.NoError(t, err)
	assert.Equal(t, ForestDensity{Live: 80, Dead: 10}, d)

	_, err = tables.ForestBiomassDensities("01001", groundtypes.ForetConifere)
	assert.ErrorIs(t, err, ErrMissingReferenceRow)
}

func TestTables_DensitiesFallBackToNational(t *testing.T) {
	tables := NewTables()
	tables.SetCarbonDensity(NationalKey, groundtypes.Cultures, 50)
	tables.SetCarbonDensity("1_1", groundtypes.Cultures, 45)
	tables.SetCarbonDensity("1_1", groundtypes.Vignes, 0)
	tables.SetCarbonDensity(NationalKey, groundtypes.Vignes, 40)
	tables.SetBiomassCarbonDensity(NationalKey, groundtypes.Haies, 60)

	assert.Equal(t, 45.0, tables.CarbonDensity("1_1", groundtypes.Cultures))
	assert.Equal(t, 50.0, tables.CarbonDensity("2_1", groundtypes.Cultures))
	// an explicit zero row is kept
	assert.Zero(t, tables.CarbonDensity("1_1", groundtypes.Vignes))
	assert.Zero(t, tables.CarbonDensity("1_1", groundtypes.Vergers))

	assert.Equal(t, 60.0, tables.BiomassCarbonDensity("200000001", groundtypes.Haies))
	assert.Zero(t, tables.BiomassCarbonDensity("200000001", groundtypes.Vignes))
}

func TestTables_WoodHarvestMissingRow(t *testing.T) {
	tables := NewTables()
	tables.SetWoodHarvest(NationalKey, CompositionFeuillus, WoodHarvest{Bo: 100, Bi: 200})

	h, err := tables.WoodHarvest(NationalKey, CompositionFeuillus)
	require.NoError(t, err)
	assert.Equal(t, 200.0, h.Get(CategoryBi))

	_, err = tables.WoodHarvest(NationalKey, CompositionConiferes)
	assert.ErrorIs(t, err, ErrMissingReferenceRow)
}

func TestTables_NationalDefaults(t *testing.T) {
	n := NewTables().NationalWoodProducts()
	assert.Equal(t, 812000.0, n.Flux(CategoryBo))
	assert.Equal(t, 751000.0, n.Flux(CategoryBi))
	assert.Equal(t, 177419001.0, n.Stock(CategoryBo))
	assert.Equal(t, 258680001.0, n.Stock(CategoryBi))
}
