package territory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
	"aldo-territoires/carbon-backend/internal/stocks"
)

func newTestService(cache *ResultCache) *Service {
	return NewService(testDirectory(), reference.StaticLoader{Source: testTables()}, cache,
		Defaults{WoodCalculation: flux.WoodMethodHarvest, ProportionSolsImpermeables: 0.8}, nil)
}

func TestService_ComputeFluxes(t *testing.T) {
	s := newTestService(nil)

	result, err := s.ComputeFluxes(context.Background(), location.Request{Epcis: []string{testEpci}}, flux.Options{})
	require.NoError(t, err)

	assert.Equal(t, testEpci, result.Territory)
	assert.InDelta(t, -240.0, result.Summary["vignes"].TotalCarbonSequestration, 1e-9)
}

func TestService_UnknownTerritory(t *testing.T) {
	s := newTestService(nil)

	_, err := s.ComputeFluxes(context.Background(), location.Request{Epcis: []string{"999"}}, flux.Options{})
	assert.ErrorIs(t, err, location.ErrUnknownTerritory)

	_, err = s.ComputeStocks(context.Background(), location.Request{}, stocks.Options{})
	assert.ErrorIs(t, err, location.ErrUnknownTerritory)
}

func TestService_CachesResults(t *testing.T) {
	cache := NewResultCache(time.Minute)
	defer cache.Stop()
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(testTables(), nil)
	s := NewService(testDirectory(), loader, cache, Defaults{}, nil)
	req := location.Request{Epcis: []string{testEpci}}

	first, err := s.ComputeFluxes(context.Background(), req, flux.Options{})
	require.NoError(t, err)
	second, err := s.ComputeFluxes(context.Background(), req, flux.Options{})
	require.NoError(t, err)
	assert.Same(t, first, second)
	loader.AssertNumberOfCalls(t, "Load", 1)

	_, err = s.ComputeFluxes(context.Background(), req, flux.Options{AreaChanges: map[string]float64{"cult_vign": 1}})
	require.NoError(t, err)
	loader.AssertNumberOfCalls(t, "Load", 2)

	s.Invalidate()
	assert.Zero(t, cache.Size())
}

func TestService_LoadError(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	s := NewService(testDirectory(), loader, nil, Defaults{}, nil)

	_, err := s.ComputeStocks(context.Background(), location.Request{Epcis: []string{testEpci}}, stocks.Options{})
	assert.ErrorContains(t, err, "connection refused")
}

func TestService_Dashboard(t *testing.T) {
	s := newTestService(nil)

	d, err := s.Dashboard(context.Background(), location.Request{Epcis: []string{testEpci}}, flux.Options{})
	require.NoError(t, err)

	assert.Equal(t, "CC du Test", d.Name)
	assert.Equal(t, testEpci, d.Code)
	assert.Equal(t, []string{"Alpha", "Beta"}, d.Communes)
	require.NotNil(t, d.Stocks)
	require.NotNil(t, d.Flux)
	assert.InDelta(t, 10000.0, d.Stocks.Stocks["cultures"].SoilStock, 1e-9)
}

func TestService_Warm(t *testing.T) {
	cache := NewResultCache(time.Minute)
	defer cache.Stop()
	s := newTestService(cache)

	require.NoError(t, s.Warm(context.Background(), []string{testEpci}))
	assert.Equal(t, 2, cache.Size())

	err := s.Warm(context.Background(), []string{"200000002"})
	assert.ErrorIs(t, err, reference.ErrMissingReferenceRow)
}
