package territory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"aldo-territoires/carbon-backend/internal/export"
	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
	"aldo-territoires/carbon-backend/internal/stocks"
)

// Defaults are the option values applied when a request leaves them unset
type Defaults struct {
	WoodCalculation            flux.WoodMethod
	ProportionSolsImpermeables float64
}

// Service resolves territories, loads their reference data and runs the
// flux and stocks engines
type Service struct {
	directory location.Directory
	resolver  *location.Resolver
	loader    reference.Loader
	cache     *ResultCache
	defaults  Defaults
	logger    *zap.Logger
}

// NewService creates a new territory service. cache may be nil.
func NewService(directory location.Directory, loader reference.Loader, cache *ResultCache, defaults Defaults, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		directory: directory,
		resolver:  location.NewResolver(directory),
		loader:    loader,
		cache:     cache,
		defaults:  defaults,
		logger:    logger,
	}
}

// ListEpcis returns every known EPCI
func (s *Service) ListEpcis(ctx context.Context) ([]location.EPCI, error) {
	return s.directory.ListEpcis(ctx)
}

// Resolve returns the communes of a territory request
func (s *Service) Resolve(ctx context.Context, req location.Request) (*location.Location, error) {
	return s.resolver.Resolve(ctx, req)
}

func (s *Service) fluxDefaults(opts flux.Options) flux.Options {
	if opts.WoodCalculation == "" {
		opts.WoodCalculation = s.defaults.WoodCalculation
	}
	if opts.ProportionSolsImpermeables == nil && s.defaults.ProportionSolsImpermeables > 0 {
		p := s.defaults.ProportionSolsImpermeables
		opts.ProportionSolsImpermeables = &p
	}
	return opts
}

// cached runs compute through the result cache, keyed by kind, territory and options
func (s *Service) cached(kind string, loc *location.Location, opts interface{}, compute func() (interface{}, error)) (interface{}, error) {
	if s.cache == nil {
		return compute()
	}
	encoded, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return s.cache.GetOrSet(kind+":"+loc.Code()+":"+string(encoded), compute)
}

// ComputeFluxes computes the annual fluxes of a territory
func (s *Service) ComputeFluxes(ctx context.Context, req location.Request, opts flux.Options) (*flux.Result, error) {
	loc, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.computeFluxes(ctx, loc, s.fluxDefaults(opts))
}

func (s *Service) computeFluxes(ctx context.Context, loc *location.Location, opts flux.Options) (*flux.Result, error) {
	value, err := s.cached("flux", loc, opts, func() (interface{}, error) {
		source, err := s.loader.Load(ctx, loc.Communes)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference data: %w", err)
		}
		return flux.NewEngine(source, s.logger).ComputeFluxes(ctx, loc, opts)
	})
	if err != nil {
		return nil, err
	}
	return value.(*flux.Result), nil
}

// ComputeStocks computes the carbon stocks of a territory
func (s *Service) ComputeStocks(ctx context.Context, req location.Request, opts stocks.Options) (*stocks.Result, error) {
	loc, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if opts.WoodCalculation == "" {
		opts.WoodCalculation = s.defaults.WoodCalculation
	}
	return s.computeStocks(ctx, loc, opts)
}

func (s *Service) computeStocks(ctx context.Context, loc *location.Location, opts stocks.Options) (*stocks.Result, error) {
	value, err := s.cached("stocks", loc, opts, func() (interface{}, error) {
		source, err := s.loader.Load(ctx, loc.Communes)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference data: %w", err)
		}
		return stocks.NewEngine(source, s.logger).ComputeStocks(ctx, loc, opts)
	})
	if err != nil {
		return nil, err
	}
	return value.(*stocks.Result), nil
}

// Dashboard computes stocks and fluxes of a territory for export
func (s *Service) Dashboard(ctx context.Context, req location.Request, opts flux.Options) (export.Dashboard, error) {
	loc, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return export.Dashboard{}, err
	}
	opts = s.fluxDefaults(opts)

	stockResult, err := s.computeStocks(ctx, loc, stocks.Options{WoodCalculation: opts.WoodCalculation})
	if err != nil {
		return export.Dashboard{}, err
	}
	fluxResult, err := s.computeFluxes(ctx, loc, opts)
	if err != nil {
		return export.Dashboard{}, err
	}

	d := export.Dashboard{
		Code:       loc.Code(),
		Name:       loc.Code(),
		ExportedAt: time.Now(),
		Stocks:     stockResult,
		Flux:       fluxResult,
	}
	if loc.Epci != nil {
		d.Name = loc.Epci.Name
	}
	for _, c := range loc.Communes {
		if !c.Arrondissement {
			d.Communes = append(d.Communes, c.Name)
		}
	}
	return d, nil
}

// Warm computes the default results of the given EPCIs so they are served from cache
func (s *Service) Warm(ctx context.Context, epcis []string) error {
	for _, code := range epcis {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := location.Request{Epcis: []string{code}}
		if _, err := s.ComputeFluxes(ctx, req, flux.Options{}); err != nil {
			return fmt.Errorf("failed to warm fluxes of %s: %w", code, err)
		}
		if _, err := s.ComputeStocks(ctx, req, stocks.Options{}); err != nil {
			return fmt.Errorf("failed to warm stocks of %s: %w", code, err)
		}
		s.logger.Debug("Warmed territory results", zap.String("epci", code))
	}
	return nil
}

// Invalidate drops every cached result
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}
