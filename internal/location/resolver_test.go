package location

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDirectory is a mock implementation of Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Commune(ctx context.Context, insee string) (*Commune, error) {
	args := m.Called(ctx, insee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Commune), args.Error(1)
}

func (m *MockDirectory) Epci(ctx context.Context, code string) (*EPCI, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EPCI), args.Error(1)
}

func (m *MockDirectory) EpciCommunes(ctx context.Context, code string) ([]Commune, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Commune), args.Error(1)
}

func (m *MockDirectory) ListEpcis(ctx context.Context) ([]EPCI, error) {
	args := m.Called(ctx)
	return args.Get(0).([]EPCI), args.Error(1)
}

func TestResolve_CombinesEpciAndCommunesWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	dir := new(MockDirectory)
	epci := &EPCI{Code: "200055887", Name: "CC Test", Members: []string{"01001", "01002"}}
	dir.On("Epci", ctx, "200055887").Return(epci, nil)
	dir.On("EpciCommunes", ctx, "200055887").Return([]Commune{
		{Insee: "01001", Epci: "200055887"},
		{Insee: "01002", Epci: "200055887"},
	}, nil)
	dir.On("Commune", ctx, "01003").Return(&Commune{Insee: "01003"}, nil)

	loc, err := NewResolver(dir).Resolve(ctx, Request{
		Epcis:    []string{"200055887"},
		Communes: []string{"01002", "01003"},
	})

	require.NoError(t, err)
	assert.Equal(t, epci, loc.Epci)
	require.Len(t, loc.Communes, 3)
	assert.Equal(t, "01001", loc.Communes[0].Insee)
	assert.Equal(t, "01002", loc.Communes[1].Insee)
	assert.Equal(t, "01003", loc.Communes[2].Insee)
	dir.AssertExpectations(t)
	dir.AssertNotCalled(t, "Commune", ctx, "01002")
}

func TestResolve_UnknownEpci(t *testing.T) {
	ctx := context.Background()
	dir := new(MockDirectory)
	dir.On("Epci", ctx, "000").Return(nil, ErrUnknownTerritory)

	_, err := NewResolver(dir).Resolve(ctx, Request{Epcis: []string{"000"}})

	assert.True(t, errors.Is(err, ErrUnknownTerritory))
}

func TestResolve_EmptyRequest(t *testing.T) {
	_, err := NewResolver(new(MockDirectory)).Resolve(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnknownTerritory)
}

func TestExpandArrondissements_Lyon(t *testing.T) {
	communes := ExpandArrondissements([]Commune{
		{Insee: "69123", Name: "Lyon", Epci: "200046977", ZPC: "zpc-lyon", Population: 500000},
	})

	require.Len(t, communes, 10)
	assert.Equal(t, "69123", communes[0].Insee)
	for i, c := range communes[1:] {
		assert.Equal(t, "6938"+string(rune('1'+i)), c.Insee)
		assert.Equal(t, "zpc-lyon", c.ZPC)
		assert.Equal(t, "200046977", c.Epci)
		assert.Zero(t, c.Population)
		assert.True(t, c.Arrondissement)
	}
}

func TestExpandArrondissements_CountsPerCity(t *testing.T) {
	assert.Len(t, ExpandArrondissements([]Commune{{Insee: "13055"}}), 17)
	assert.Len(t, ExpandArrondissements([]Commune{{Insee: "75056"}}), 21)
	assert.Len(t, ExpandArrondissements([]Commune{{Insee: "01001"}}), 1)
}

func TestLocation_CodeAndPopulation(t *testing.T) {
	loc := &Location{Communes: ExpandArrondissements([]Commune{
		{Insee: "75056", Population: 2100000},
		{Insee: "01001", Population: 800},
	})}
	assert.Equal(t, "75056+01001", loc.Code())
	assert.Equal(t, 2100800, loc.Population())

	loc.Epci = &EPCI{Code: "200054781"}
	assert.Equal(t, "200054781", loc.Code())
}

func TestStaticDirectory_EpciCommunes(t *testing.T) {
	ctx := context.Background()
	dir := NewStaticDirectory(
		[]Commune{{Insee: "01002", Epci: "E1"}, {Insee: "01001"}, {Insee: "01003", Epci: "E2"}},
		[]EPCI{{Code: "E1", Name: "B", Members: []string{"01001"}}, {Code: "E2", Name: "A"}},
	)

	communes, err := dir.EpciCommunes(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, communes, 2)
	assert.Equal(t, "01001", communes[0].Insee)
	assert.Equal(t, "01002", communes[1].Insee)

	epcis, err := dir.ListEpcis(ctx)
	require.NoError(t, err)
	assert.Equal(t, "E2", epcis[0].Code)

	_, err = dir.Commune(ctx, "99999")
	assert.ErrorIs(t, err, ErrUnknownTerritory)
}
