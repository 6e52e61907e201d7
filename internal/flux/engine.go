// Package flux computes the annual carbon and greenhouse gas fluxes of a
// territory caused by land use and land use change.
package flux

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

// Engine runs the flux pipeline over the communes of a location
type Engine struct {
	catalog       *groundtypes.Catalog
	source        reference.Source
	validator     *Validator
	surface       *SurfaceResolver
	coefficients  *CoefficientResolver
	deforestation *DeforestationResolver
	aggregator    *Aggregator
	woodMethods   map[WoodMethod]WoodProductsMethod
	logger        *zap.Logger
}

// NewEngine creates a new flux engine over a reference source
func NewEngine(source reference.Source, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := groundtypes.Default
	surface := NewSurfaceResolver(catalog, source)
	engine := &Engine{
		catalog:       catalog,
		source:        source,
		validator:     NewValidator(catalog),
		surface:       surface,
		coefficients:  NewCoefficientResolver(catalog, source),
		deforestation: NewDeforestationResolver(catalog, source, surface),
		aggregator:    NewAggregator(catalog, surface, logger),
		woodMethods:   make(map[WoodMethod]WoodProductsMethod),
		logger:        logger,
	}

	engine.registerWoodMethods()

	return engine
}

// registerWoodMethods registers the wood products apportioning methods
func (e *Engine) registerWoodMethods() {
	for _, m := range []WoodProductsMethod{HarvestMethod{}, ConsumptionMethod{}} {
		e.woodMethods[m.Name()] = m
	}
}

// SupportedWoodMethods returns the registered wood products methods
func (e *Engine) SupportedWoodMethods() []WoodMethod {
	methods := make([]WoodMethod, 0, len(e.woodMethods))
	for name := range e.woodMethods {
		methods = append(methods, name)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

// Validator returns the options validator of the engine
func (e *Engine) Validator() *Validator {
	return e.validator
}

// CommuneFluxes runs the per-commune stages: coefficients, areas, values,
// N2O, wood products and deforestation
func (e *Engine) CommuneFluxes(c location.Commune, opts Options) ([]Entry, error) {
	entries, err := e.coefficients.Entries(c)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].From == "" {
			continue
		}
		area := e.surface.Resolve(c, opts, entries[i].From, entries[i].To)
		entries[i].Area = area.Area
		entries[i].OriginalArea = area.OriginalArea
		entries[i].AreaModified = area.AreaModified
	}
	entries = ComputeValues(entries)

	entries = append(entries, DeriveNitrousOxide(entries)...)

	method, ok := e.woodMethods[opts.WoodMethod()]
	if !ok {
		return nil, fmt.Errorf("unsupported wood method %q: %w", opts.WoodCalculation, ErrInvalidOptions)
	}
	wood, err := WoodProductsEntries(c, e.source, method)
	if err != nil {
		return nil, err
	}
	entries = append(entries, wood...)

	deforestation, err := e.deforestation.Entries(c, opts)
	if err != nil {
		return nil, err
	}
	return append(entries, deforestation...), nil
}

// ComputeFluxes computes every flux of the location and its summaries
func (e *Engine) ComputeFluxes(ctx context.Context, loc *location.Location, opts Options) (*Result, error) {
	// Validate options
	if err := e.validator.ValidateOptions(opts); err != nil {
		return nil, err
	}
	if loc == nil || len(loc.Communes) == 0 {
		return nil, fmt.Errorf("no commune to compute: %w", location.ErrUnknownTerritory)
	}

	result := &Result{
		CalculationID: uuid.New(),
		Territory:     loc.Code(),
	}
	step := func(name, description string, outputs map[string]interface{}) {
		result.Steps = append(result.Steps, CalculationStep{
			StepNumber:  len(result.Steps) + 1,
			Name:        name,
			Description: description,
			Outputs:     outputs,
			Timestamp:   time.Now(),
		})
	}

	// Per-commune pipeline
	var all []Entry
	for _, c := range loc.Communes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := e.CommuneFluxes(c, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to compute fluxes of commune %s: %w", c.Insee, err)
		}
		all = append(all, entries...)
	}
	step("commune_fluxes", "Coefficients, areas, values, N2O, wood products and deforestation per commune",
		map[string]interface{}{"communes": len(loc.Communes), "entries": len(all)})

	// Territory level override merge
	if len(opts.AreaChanges) > 0 {
		all = MergeOverrides(e.catalog, all, opts)
		step("area_overrides", "Per-commune entries of overridden transitions merged into territory entries",
			map[string]interface{}{"overrides": len(opts.AreaChanges), "entries": len(all)})
	}

	// Aggregation
	summary := e.aggregator.Summarize(all, opts)
	result.AllFlux = all
	result.Summary = summary.Summary
	result.BiomassSummary = summary.BiomassSummary
	result.Total = summary.Total
	result.Areas = e.aggregator.AreaChanges(loc.Communes, opts)
	step("summaries", "Ground type roll-up, forest biomass summary and area changes",
		map[string]interface{}{"total": summary.Total, "skipped": summary.Skipped})

	e.logger.Info("Computed territory fluxes",
		zap.String("calculation_id", result.CalculationID.String()),
		zap.String("territory", result.Territory),
		zap.Int("communes", len(loc.Communes)),
		zap.Int("entries", len(all)),
		zap.Float64("total_co2e", result.Total),
	)

	return result, nil
}
