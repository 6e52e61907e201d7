package reference

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aldo-territoires/carbon-backend/internal/groundtypes"
)

func writeSheet(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
}

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	writeSheet(t, f, SheetCommunes, [][]interface{}{
		{"insee", "nom", "epci", "zpc", "region", "departement", "population"},
		{"01001", "L'Abergement-Clémenciat", "200069193", "1_1", "84", "01", 800},
		{"01002", "L'Abergement-de-Varey", "200069193", "1_1", "84", "01", 250},
	})
	writeSheet(t, f, SheetEpcis, [][]interface{}{
		{"code", "nom", "membres", "population"},
		{"200069193", "CC de la Dombes", "01001,01002", 1050},
	})
	writeSheet(t, f, SheetClcChanges, [][]interface{}{
		{"insee", "from", "to", "hectares"},
		{"01001", "211", "221", "12,5"},
	})
	writeSheet(t, f, SheetGroundFlux, [][]interface{}{
		{"zpc", "from", "to", "annual_flux", "years_for_flux"},
		{"1_1", "cult", "vign", -2, 20},
	})
	writeSheet(t, f, SheetForestInventory, [][]interface{}{
		{"insee", "composition", "area", "growth", "mortality", "timber_extraction", "flux_m3",
			"conversion_factor", "annual_flux", "live_density", "dead_density"},
		{"01001", "Mixte", 40, 6, 1, 2, 3, 0.5, 1.5, 15, 5},
	})
	writeSheet(t, f, SheetWoodHarvest, [][]interface{}{
		{"key", "composition", "bo", "bi"},
		{NationalKey, CompositionFeuillus, 100, 200},
	})
	writeSheet(t, f, SheetNational, [][]interface{}{
		{"key", "value"},
		{"population", 67000000},
		{"flux_bo", 900000},
	})
	require.NoError(t, f.DeleteSheet("Sheet1"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadWorkbook(t *testing.T) {
	wb, err := ReadWorkbook(bytes.NewReader(buildWorkbook(t)))
	require.NoError(t, err)

	require.Len(t, wb.Communes, 2)
	assert.Equal(t, "1_1", wb.Communes[0].ZPC)
	assert.Equal(t, 800, wb.Communes[0].Population)
	require.Len(t, wb.Epcis, 1)
	assert.Equal(t, []string{"01001", "01002"}, wb.Epcis[0].Members)

	tables := wb.Tables
	assert.Equal(t, 12.5, tables.AreaChange("01001", "211", "221"))
	flux, ok := tables.GroundCarbonFlux("1_1", "cult", "vign")
	require.True(t, ok)
	assert.Equal(t, GroundFlux{AnnualFlux: -2, YearsForFlux: 20}, flux)

	inv, err := tables.ForestInventory("01001", groundtypes.ForetMixte)
	require.NoError(t, err)
	assert.Equal(t, 40.0, inv.Area)
	assert.Equal(t, 3.0, inv.FluxMeterCubed)

	assert.Equal(t, 67000000, tables.NationalPopulation())
	assert.Equal(t, 900000.0, tables.NationalWoodProducts().FluxBo)
	assert.Equal(t, 751000.0, tables.NationalWoodProducts().FluxBi)

	communes, err := wb.Directory().EpciCommunes(context.Background(), "200069193")
	require.NoError(t, err)
	assert.Len(t, communes, 2)
}

func TestReadWorkbook_MissingGeography(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ReadWorkbook(&buf)
	assert.Error(t, err)
}

// MockWorkbookStore is a mock implementation of WorkbookStore
type MockWorkbookStore struct {
	mock.Mock
}

func (m *MockWorkbookStore) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestFetchWorkbook(t *testing.T) {
	ctx := context.Background()
	store := new(MockWorkbookStore)
	store.On("Fetch", ctx, "aldo", "reference.xlsx").Return(buildWorkbook(t), nil)

	wb, err := FetchWorkbook(ctx, store, "aldo", "reference.xlsx")
	require.NoError(t, err)
	assert.Len(t, wb.Communes, 2)
	store.AssertExpectations(t)
}

func TestFetchWorkbook_DownloadError(t *testing.T) {
	ctx := context.Background()
	store := new(MockWorkbookStore)
	store.On("Fetch", ctx, "aldo", "missing.xlsx").Return(nil, errors.New("no such key"))

	_, err := FetchWorkbook(ctx, store, "aldo", "missing.xlsx")
	assert.EqualError(t, err, "no such key")
}
