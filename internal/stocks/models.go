package stocks

import (
	"github.com/google/uuid"

	"aldo-territoires/carbon-backend/internal/flux"
)

// LitterDensity is the forest litter carbon density in tC/ha
const LitterDensity = 9

// Options tunes a stock calculation. Every field is optional.
type Options struct {
	WoodCalculation flux.WoodMethod    `json:"woodCalculation,omitempty"`
	Areas           map[string]float64 `json:"areas,omitempty"`
}

// WoodMethod returns the normalized wood products method
func (o Options) WoodMethod() flux.WoodMethod {
	return flux.Options{WoodCalculation: o.WoodCalculation}.WoodMethod()
}

// Stock is the carbon stored by one ground type over the territory. Stocks
// are in tC; areas in ha, or km for hedgerows.
type Stock struct {
	GroundType       string  `json:"groundType"`
	Area             float64 `json:"area"`
	OriginalArea     float64 `json:"originalArea,omitempty"`
	AreaModified     bool    `json:"areaModified,omitempty"`
	HasModifications bool    `json:"hasModifications,omitempty"`
	SoilDensity      float64 `json:"soilDensity"`
	LitterDensity    float64 `json:"litterDensity,omitempty"`
	BiomassDensity   float64 `json:"biomassDensity"`
	SoilStock        float64 `json:"soilStock"`
	LitterStock      float64 `json:"litterStock,omitempty"`
	BiomassStock     float64 `json:"biomassStock"`
	TotalStock       float64 `json:"totalStock"`
	StockPercentage  float64 `json:"stockPercentage"`
}

func (s *Stock) sumStocks() {
	s.TotalStock = s.SoilStock + s.LitterStock + s.BiomassStock
}

// WoodProductsStock is the share of the national wood products stock
// attributed to the territory
type WoodProductsStock struct {
	Method           flux.WoodMethod `json:"method"`
	LocalHarvestBo   float64         `json:"localHarvestBo,omitempty"`
	LocalHarvestBi   float64         `json:"localHarvestBi,omitempty"`
	FranceHarvestBo  float64         `json:"franceHarvestBo,omitempty"`
	FranceHarvestBi  float64         `json:"franceHarvestBi,omitempty"`
	LocalPopulation  int             `json:"localPopulation,omitempty"`
	FrancePopulation int             `json:"francePopulation,omitempty"`
	PortionBo        float64         `json:"portionBo"`
	PortionBi        float64         `json:"portionBi"`
	FranceStockBo    float64         `json:"franceStockBo"`
	FranceStockBi    float64         `json:"franceStockBi"`
	StockBo          float64         `json:"stockBo"`
	StockBi          float64         `json:"stockBi"`
	Total            float64         `json:"total"`
}

// Result is the outcome of a stock calculation
type Result struct {
	CalculationID uuid.UUID              `json:"calculationId"`
	Territory     string                 `json:"territory"`
	Stocks        map[string]*Stock      `json:"stocks"`
	WoodProducts  WoodProductsStock      `json:"woodProducts"`
	Total         float64                `json:"total"`
	Steps         []flux.CalculationStep `json:"steps,omitempty"`
}
