package export

import (
	"time"

	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/stocks"
)

// Column keys of the dashboard tables
const (
	ColumnGroundType    = "ground_type"
	ColumnArea          = "area"
	ColumnStock         = "stock"
	ColumnStockShare    = "stock_percentage"
	ColumnSequestration = "sequestration"
	ColumnDirection     = "direction"
	ColumnModified      = "modified"
)

// Directions of a flux summary. Sequestrations are rounded to the unit
// before their sign is read.
const (
	DirectionSequester = "séquestration"
	DirectionEmission  = "émission"
	directionThreshold = 0.5
)

// Dashboard is the content of a territory export
type Dashboard struct {
	Name       string
	Code       string
	Link       string
	Communes   []string
	ExportedAt time.Time
	Stocks     *stocks.Result
	Flux       *flux.Result
}

// Column describes one table column
type Column struct {
	Key   string
	Label string
}

// StockColumns are the columns of the stocks table
var StockColumns = []Column{
	{ColumnGroundType, "Occupation du sol"},
	{ColumnArea, "Surface (ha)"},
	{ColumnStock, "Stocks carbone (tC)"},
	{ColumnStockShare, "Stocks (%)"},
	{ColumnModified, "Modifié par l'utilisateur ?"},
}

// FluxColumns are the columns of the flux table
var FluxColumns = []Column{
	{ColumnGroundType, "Occupation du sol finale"},
	{ColumnSequestration, "Séquestration (tCO2e / an)"},
	{ColumnDirection, ""},
	{ColumnModified, "Modifié par l'utilisateur ?"},
}

// EntryColumns are the columns of the flux entry listing
var EntryColumns = []Column{
	{"commune", "Commune"},
	{"from", "Occupation initiale"},
	{"to", "Occupation finale"},
	{"reservoir", "Réservoir"},
	{"gas", "Gaz"},
	{"category", "Catégorie"},
	{"area", "Surface (ha/an)"},
	{"original_area", "Surface calculée (ha/an)"},
	{"annual_flux", "Flux annuel"},
	{"years", "Durée (ans)"},
	{"value", "Valeur"},
	{"co2e", "tCO2e / an"},
	{"modified", "Modifié"},
}

func keys(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Key
	}
	return out
}

func labels(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Label
	}
	return out
}

// Direction names the sign of a sequestration rounded to the unit,
// "" when it rounds to 0
func Direction(sequestration float64) string {
	switch {
	case sequestration > directionThreshold:
		return DirectionSequester
	case sequestration < -directionThreshold:
		return DirectionEmission
	}
	return ""
}

// StockRows returns one row per root ground type
func (d Dashboard) StockRows() []map[string]interface{} {
	if d.Stocks == nil {
		return nil
	}
	var rows []map[string]interface{}
	for _, gt := range groundtypes.Default.Roots() {
		row := map[string]interface{}{ColumnGroundType: gt.Name}
		if s, ok := d.Stocks.Stocks[gt.StocksID]; ok {
			row[ColumnArea] = s.Area
			row[ColumnStock] = s.TotalStock
			row[ColumnStockShare] = s.StockPercentage
			row[ColumnModified] = s.HasModifications || s.AreaModified
		}
		rows = append(rows, row)
	}
	return rows
}

// FluxRows returns one row per root ground type, hedgerows excluded
func (d Dashboard) FluxRows() []map[string]interface{} {
	if d.Flux == nil {
		return nil
	}
	var rows []map[string]interface{}
	for _, gt := range groundtypes.Default.Roots() {
		if gt.StocksID == groundtypes.Haies {
			continue
		}
		row := map[string]interface{}{ColumnGroundType: gt.Name}
		if s, ok := d.Flux.Summary[gt.StocksID]; ok {
			row[ColumnSequestration] = s.TotalSequestration
			row[ColumnDirection] = Direction(s.TotalSequestration)
			row[ColumnModified] = s.HasModifications
		} else {
			row[ColumnSequestration] = 0.0
		}
		rows = append(rows, row)
	}
	return rows
}

// EntryRows returns one row per flux entry
func EntryRows(entries []flux.Entry) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		row := map[string]interface{}{
			"commune":       e.Commune,
			"from":          e.From,
			"to":            e.To,
			"reservoir":     string(e.Reservoir),
			"gas":           string(e.Gas),
			"category":      e.Category,
			"area":          e.Area,
			"original_area": e.OriginalArea,
			"annual_flux":   e.AnnualFlux,
			"years":         e.YearsForFlux,
			"value":         e.Value,
			"modified":      e.AreaModified,
		}
		if e.HasCO2e() {
			row["co2e"] = *e.CO2e
		}
		rows = append(rows, row)
	}
	return rows
}
