package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/stocks"
)

func float(v float64) *float64 {
	return &v
}

func testDashboard() Dashboard {
	return Dashboard{
		Name:       "CC du Test",
		Code:       "200000001",
		Communes:   []string{"Alpha", "Beta"},
		ExportedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Stocks: &stocks.Result{
			Stocks: map[string]*stocks.Stock{
				groundtypes.Cultures: {GroundType: groundtypes.Cultures, Area: 150, TotalStock: 7800, StockPercentage: 50},
				groundtypes.Forets:   {GroundType: groundtypes.Forets, Area: 100, TotalStock: 7800, StockPercentage: 50, HasModifications: true},
			},
			Total: 15600,
		},
		Flux: &flux.Result{
			Summary: map[string]*flux.SummaryRow{
				groundtypes.Cultures: {TotalSequestration: -440, HasModifications: true},
				groundtypes.Forets:   {TotalSequestration: 0.2},
			},
			AllFlux: []flux.Entry{
				{Commune: "01001", From: groundtypes.Vignes, To: groundtypes.Cultures, Reservoir: flux.ReservoirSol, Gas: flux.GasC, Area: 3, Value: -120, CO2e: float(-440)},
				{Commune: "01001", To: groundtypes.ProduitsBois, Reservoir: flux.ReservoirBiomasse, Gas: flux.GasC, Category: "bo"},
			},
			Total: -439.8,
		},
	}
}

func TestDirection(t *testing.T) {
	assert.Equal(t, DirectionSequester, Direction(0.6))
	assert.Equal(t, DirectionEmission, Direction(-12))
	assert.Empty(t, Direction(0.4))
	assert.Empty(t, Direction(-0.5))
}

func TestDashboard_Rows(t *testing.T) {
	d := testDashboard()

	stockRows := d.StockRows()
	require.Len(t, stockRows, len(groundtypes.Default.Roots()))
	assert.Equal(t, "Cultures", stockRows[0][ColumnGroundType])
	assert.Equal(t, 7800.0, stockRows[0][ColumnStock])
	assert.NotContains(t, stockRows[1], ColumnStock)

	fluxRows := d.FluxRows()
	require.Len(t, fluxRows, len(groundtypes.Default.Roots())-1)
	for _, row := range fluxRows {
		assert.NotEqual(t, "Haies", row[ColumnGroundType])
	}
	assert.Equal(t, DirectionEmission, fluxRows[0][ColumnDirection])
	assert.Equal(t, true, fluxRows[0][ColumnModified])
	assert.Equal(t, 0.0, fluxRows[1][ColumnSequestration])

	assert.Nil(t, Dashboard{}.StockRows())
	assert.Nil(t, Dashboard{}.FluxRows())
}

func TestEntryRows(t *testing.T) {
	rows := EntryRows(testDashboard().Flux.AllFlux)

	require.Len(t, rows, 2)
	assert.Equal(t, -440.0, rows[0]["co2e"])
	assert.Equal(t, "sol", rows[0]["reservoir"])
	assert.NotContains(t, rows[1], "co2e")
}

func TestExcelExporter_WriteDashboard(t *testing.T) {
	e := NewExcelExporter(DefaultExcelOptions())
	defer e.Close()
	require.NoError(t, e.WriteDashboard(testDashboard()))

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	cell := func(sheet, name string) string {
		v, err := f.GetCellValue(sheet, name, raw)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Description", cell(SheetDashboard, "A1"))
	assert.Equal(t, "200000001", cell(SheetDashboard, "C3"))
	assert.Equal(t, "Beta", cell(SheetDashboard, "C6"))
	assert.Equal(t, "Résultats stocks de carbone", cell(SheetDashboard, "A9"))
	assert.Equal(t, "Occupation du sol", cell(SheetDashboard, "B10"))
	assert.Equal(t, "Cultures", cell(SheetDashboard, "B11"))
	assert.Equal(t, "7800", cell(SheetDashboard, "D11"))
	assert.Equal(t, "Résultats flux de carbone", cell(SheetDashboard, "A21"))
	assert.Equal(t, "-440", cell(SheetDashboard, "C23"))
	assert.Equal(t, DirectionEmission, cell(SheetDashboard, "D23"))

	rows, err := f.GetRows(SheetFlux)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Commune", rows[0][0])
	assert.Equal(t, "01001", rows[1][0])
}

func TestCSVExporter_WriteEntries(t *testing.T) {
	var buf bytes.Buffer
	e := NewCSVExporter(&buf, DefaultCSVOptions())
	require.NoError(t, e.WriteEntries(testDashboard().Flux))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, labels(EntryColumns), records[0])
	assert.Equal(t, []string{
		"01001", groundtypes.Vignes, groundtypes.Cultures, "sol", "C", "", "3", "0", "0", "0", "-120", "-440", "false",
	}, records[1])
	assert.Empty(t, records[2][11])
}

func TestCSVExporter_WriteStocks(t *testing.T) {
	var buf bytes.Buffer
	e := NewCSVExporter(&buf, DefaultCSVOptions())
	require.NoError(t, e.WriteStocks(testDashboard()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(groundtypes.Default.Roots())+1)
	assert.Equal(t, labels(StockColumns), records[0])
	assert.Equal(t, []string{"Cultures", "150", "7800", "50", "false"}, records[1])
	assert.Equal(t, []string{"", "", "", ""}, records[2][1:])
}

func TestCSVExporter_Options(t *testing.T) {
	var buf bytes.Buffer
	e := NewCSVExporter(&buf, CSVOptions{Delimiter: ';', NumberFormat: "%.1f", NullValue: "NA", BoolTrueValue: "oui", BoolFalseValue: "non"})
	require.NoError(t, e.WriteMapRows([]map[string]interface{}{{"a": 1.26, "b": true}}, []string{"a", "b", "c"}))
	require.NoError(t, e.Flush())

	assert.Equal(t, "1.3;oui;NA\n", buf.String())
}

func TestPDFGenerator_GenerateDashboard(t *testing.T) {
	g := NewPDFGenerator(DefaultPDFOptions())
	require.NoError(t, g.GenerateDashboard(testDashboard()))

	out, err := g.OutputToBytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
