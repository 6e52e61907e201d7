// Package stocks computes the carbon stored in the soils, litter, biomass and
// wood products of a territory.
package stocks

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

// Engine computes territory stocks from a reference source
type Engine struct {
	catalog *groundtypes.Catalog
	source  reference.Source
	logger  *zap.Logger
}

// NewEngine creates a new stocks engine
func NewEngine(source reference.Source, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{catalog: groundtypes.Default, source: source, logger: logger}
}

// StockTypes returns the ground types carrying a stock of their own,
// wood products excluded
func (e *Engine) StockTypes() []groundtypes.GroundType {
	var out []groundtypes.GroundType
	for _, gt := range e.catalog.Leaves() {
		if gt.StocksID != groundtypes.ProduitsBois {
			out = append(out, gt)
		}
	}
	return out
}

// ValidateOptions checks the wood method and the area overrides
func (e *Engine) ValidateOptions(opts Options) error {
	switch opts.WoodCalculation {
	case "", flux.WoodMethodHarvest, flux.WoodMethodConsumption, flux.WoodMethodConsommation:
	default:
		return fmt.Errorf("unsupported woodCalculation %q: %w", opts.WoodCalculation, flux.ErrInvalidOptions)
	}
	for id, area := range opts.Areas {
		if _, ok := e.catalog.Get(id); !ok {
			return fmt.Errorf("unknown ground type %q: %w", id, flux.ErrInvalidOptions)
		}
		if !e.catalog.IsLeaf(id) || id == groundtypes.ProduitsBois {
			return fmt.Errorf("area override %q is not a ground type with a stock: %w", id, flux.ErrInvalidOptions)
		}
		if area < 0 || math.IsNaN(area) {
			return fmt.Errorf("area of %q must be a non-negative number: %w", id, flux.ErrInvalidOptions)
		}
	}
	return nil
}

// CommuneStock returns the stock of one ground type in one commune
func (e *Engine) CommuneStock(c location.Commune, groundType string) (Stock, error) {
	s := Stock{GroundType: groundType}

	switch {
	case groundType == groundtypes.Haies:
		s.Area = e.source.Hedgerows(c.Insee)
		s.BiomassDensity = e.source.BiomassCarbonDensity(c.Epci, groundtypes.Haies)

	case e.catalog.IsForestSubtype(groundType):
		inv, err := e.source.ForestInventory(c.Insee, groundType)
		if err != nil {
			return Stock{}, err
		}
		if inv != nil {
			s.Area = inv.Area
		}
		s.SoilDensity = e.source.CarbonDensity(c.ZPC, groundType)
		if s.SoilDensity == 0 {
			s.SoilDensity = e.source.CarbonDensity(c.ZPC, groundtypes.Forets)
		}
		s.LitterDensity = LitterDensity
		if s.Area > 0 {
			densities, err := e.source.ForestBiomassDensities(c.Insee, groundType)
			if err != nil {
				return Stock{}, err
			}
			s.BiomassDensity = densities.Total()
		}

	default:
		gt, ok := e.catalog.Get(groundType)
		if !ok {
			return Stock{}, fmt.Errorf("unknown ground type %q: %w", groundType, reference.ErrMissingReferenceRow)
		}
		for _, code := range gt.CLCCodes {
			s.Area += e.source.GroundArea(c.Insee, code)
		}
		s.SoilDensity = e.source.CarbonDensity(c.ZPC, groundType)
		s.BiomassDensity = e.source.BiomassCarbonDensity(c.Epci, groundType)
	}

	s.SoilStock = s.Area * s.SoilDensity
	s.LitterStock = s.Area * s.LitterDensity
	s.BiomassStock = s.Area * s.BiomassDensity
	s.sumStocks()
	return s, nil
}

// mergeStocks sums commune stocks of a ground type. Densities are the
// area-weighted means, or simple means when the total area is 0.
func mergeStocks(groundType string, parts []Stock) *Stock {
	s := &Stock{GroundType: groundType}
	var soil, litter, biomass float64
	for _, p := range parts {
		s.Area += p.Area
		s.SoilStock += p.SoilStock
		s.LitterStock += p.LitterStock
		s.BiomassStock += p.BiomassStock
		soil += p.SoilDensity
		litter += p.LitterDensity
		biomass += p.BiomassDensity
	}
	switch {
	case s.Area != 0:
		s.SoilDensity = s.SoilStock / s.Area
		s.LitterDensity = s.LitterStock / s.Area
		s.BiomassDensity = s.BiomassStock / s.Area
	case len(parts) > 0:
		n := float64(len(parts))
		s.SoilDensity = soil / n
		s.LitterDensity = litter / n
		s.BiomassDensity = biomass / n
	}
	s.sumStocks()
	return s
}

// applyArea replaces the area of a stock and recomputes it from the densities
func applyArea(s *Stock, area float64) {
	s.OriginalArea = s.Area
	s.Area = area
	s.AreaModified = true
	s.HasModifications = true
	s.SoilStock = area * s.SoilDensity
	s.LitterStock = area * s.LitterDensity
	s.BiomassStock = area * s.BiomassDensity
	s.sumStocks()
}

// rollUp adds a parent row per root type summing the rows of its subtypes
func (e *Engine) rollUp(stocks map[string]*Stock) {
	for _, root := range e.catalog.Roots() {
		children := e.catalog.Children(root.StocksID)
		if len(children) == 0 {
			continue
		}
		parent := &Stock{GroundType: root.StocksID}
		for _, child := range children {
			s, ok := stocks[child]
			if !ok {
				continue
			}
			parent.Area += s.Area
			parent.SoilStock += s.SoilStock
			parent.LitterStock += s.LitterStock
			parent.BiomassStock += s.BiomassStock
			if s.AreaModified {
				parent.HasModifications = true
			}
		}
		if parent.Area != 0 {
			parent.SoilDensity = parent.SoilStock / parent.Area
			parent.LitterDensity = parent.LitterStock / parent.Area
			parent.BiomassDensity = parent.BiomassStock / parent.Area
		}
		parent.sumStocks()
		stocks[root.StocksID] = parent
	}
}

// ComputeStocks computes the stock of every ground type of the location
func (e *Engine) ComputeStocks(ctx context.Context, loc *location.Location, opts Options) (*Result, error) {
	if err := e.ValidateOptions(opts); err != nil {
		return nil, err
	}
	if loc == nil || len(loc.Communes) == 0 {
		return nil, fmt.Errorf("no commune to compute: %w", location.ErrUnknownTerritory)
	}

	result := &Result{
		CalculationID: uuid.New(),
		Territory:     loc.Code(),
		Stocks:        make(map[string]*Stock),
	}
	step := func(name, description string, outputs map[string]interface{}) {
		result.Steps = append(result.Steps, flux.CalculationStep{
			StepNumber:  len(result.Steps) + 1,
			Name:        name,
			Description: description,
			Outputs:     outputs,
			Timestamp:   time.Now(),
		})
	}

	types := e.StockTypes()
	parts := make(map[string][]Stock, len(types))
	for _, c := range loc.Communes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, gt := range types {
			s, err := e.CommuneStock(c, gt.StocksID)
			if err != nil {
				return nil, fmt.Errorf("failed to compute stock of %s in commune %s: %w", gt.StocksID, c.Insee, err)
			}
			parts[gt.StocksID] = append(parts[gt.StocksID], s)
		}
	}
	for _, gt := range types {
		s := mergeStocks(gt.StocksID, parts[gt.StocksID])
		if area, ok := opts.Areas[gt.StocksID]; ok {
			applyArea(s, area)
		}
		result.Stocks[gt.StocksID] = s
		result.Total += s.TotalStock
	}
	step("ground_stocks", "Area times soil, litter and biomass densities per ground type",
		map[string]interface{}{"communes": len(loc.Communes), "groundTypes": len(types)})

	wood, err := WoodProducts(loc, e.source, opts.WoodMethod())
	if err != nil {
		return nil, err
	}
	result.WoodProducts = wood
	result.Stocks[groundtypes.ProduitsBois] = &Stock{
		GroundType:   groundtypes.ProduitsBois,
		BiomassStock: wood.Total,
		TotalStock:   wood.Total,
	}
	result.Total += wood.Total
	step("wood_products", "National wood products stock apportioned to the territory",
		map[string]interface{}{"method": string(wood.Method), "total": wood.Total})

	e.rollUp(result.Stocks)
	if result.Total != 0 {
		for _, s := range result.Stocks {
			s.StockPercentage = s.TotalStock / result.Total * 100
		}
	}

	e.logger.Info("Computed territory stocks",
		zap.String("calculation_id", result.CalculationID.String()),
		zap.String("territory", result.Territory),
		zap.Int("communes", len(loc.Communes)),
		zap.Float64("total_tc", result.Total),
	)

	return result, nil
}
