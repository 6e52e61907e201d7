package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aldo-territoires/carbon-backend/internal/app"
	"aldo-territoires/carbon-backend/internal/config"
	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/territory"
)

// TerritoryAPI holds the territory API dependencies
type TerritoryAPI struct {
	Handler *territory.Handler
	Service *territory.Service
	Cache   *territory.ResultCache
	Warmer  *territory.CacheWarmer
}

// SetupTerritoryAPI builds the territory service over the given sources
func SetupTerritoryAPI(cfg *config.Config, sources *app.Sources, logger *zap.Logger) (*TerritoryAPI, error) {
	var cache *territory.ResultCache
	if cfg.Cache.TTLSeconds > 0 {
		cache = territory.NewResultCache(cfg.Cache.TTL())
	}

	service := territory.NewService(sources.Directory, sources.Loader, cache, territory.Defaults{
		WoodCalculation:            flux.WoodMethod(cfg.Calculation.WoodCalculation),
		ProportionSolsImpermeables: cfg.Calculation.ProportionSolsImpermeables,
	}, logger)

	api := &TerritoryAPI{
		Handler: territory.NewHandler(service, logger),
		Service: service,
		Cache:   cache,
	}
	if cache != nil && cfg.Cache.WarmSchedule != "" && len(cfg.Cache.WarmEpcis) > 0 {
		api.Warmer = territory.NewCacheWarmer(service, cfg.Cache.WarmSchedule, cfg.Cache.WarmEpcis, logger)
	}
	return api, nil
}

// Start launches the cache warmer, if configured
func (a *TerritoryAPI) Start(ctx context.Context) error {
	if a.Warmer == nil {
		return nil
	}
	return a.Warmer.Start(ctx)
}

// Stop halts the warmer and the cache cleanup loop
func (a *TerritoryAPI) Stop() {
	if a.Warmer != nil {
		a.Warmer.Stop()
	}
	if a.Cache != nil {
		a.Cache.Stop()
	}
}

// RegisterTerritoryRoutes registers the territory routes on the router group
func RegisterTerritoryRoutes(router *gin.RouterGroup, api *TerritoryAPI) {
	api.Handler.RegisterRoutes(router)
}

// CacheStats reports the result cache counters, for the health endpoint
func (a *TerritoryAPI) CacheStats() gin.H {
	if a.Cache == nil {
		return gin.H{"enabled": false}
	}
	return gin.H{"enabled": true, "stats": a.Cache.Stats()}
}
