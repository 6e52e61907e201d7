package reference

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aldo-territoires/carbon-backend/internal/location"
)

// Loader builds the reference tables needed to compute a set of communes
type Loader interface {
	Load(ctx context.Context, communes []location.Commune) (Source, error)
}

// Repository loads reference tables from postgres
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository creates a new reference data repository
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger}
}

// Migrate creates the reference tables
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate reference tables: %w", err)
	}
	return nil
}

type territoryKeys struct {
	insees []string
	zpcs   []string
	epcis  []string
}

func keysOf(communes []location.Commune) territoryKeys {
	var keys territoryKeys
	seen := make(map[string]bool)
	add := func(list *[]string, prefix, v string) {
		if v == "" || seen[prefix+v] {
			return
		}
		seen[prefix+v] = true
		*list = append(*list, v)
	}
	for _, c := range communes {
		add(&keys.insees, "i", c.Insee)
		add(&keys.zpcs, "z", c.ZPC)
		add(&keys.epcis, "e", c.Epci)
	}
	return keys
}

// Load reads every reference row keyed by the given communes, plus the
// national rows, into in-memory tables
func (r *Repository) Load(ctx context.Context, communes []location.Commune) (Source, error) {
	db := r.db.WithContext(ctx)
	keys := keysOf(communes)
	tables := NewTables()

	var changes []ClcChangeRecord
	if err := db.Where("insee IN ?", keys.insees).Find(&changes).Error; err != nil {
		return nil, fmt.Errorf("failed to load clc changes: %w", err)
	}
	for _, rec := range changes {
		for codes, hectares := range rec.Changes.Data() {
			from, to, ok := strings.Cut(codes, "-")
			if !ok {
				r.logger.Warn("Malformed clc change key", zap.String("insee", rec.Insee), zap.String("key", codes))
				continue
			}
			tables.SetAreaChange(rec.Insee, from, to, hectares)
		}
	}

	var areas []ClcAreaRecord
	if err := db.Where("insee IN ?", keys.insees).Find(&areas).Error; err != nil {
		return nil, fmt.Errorf("failed to load clc areas: %w", err)
	}
	for _, rec := range areas {
		for code, hectares := range rec.Areas.Data() {
			tables.SetGroundArea(rec.Insee, code, hectares)
		}
	}

	var forestChanges []ForestAreaChangeRecord
	if err := db.Where("insee IN ?", keys.insees).Find(&forestChanges).Error; err != nil {
		return nil, fmt.Errorf("failed to load forest area changes: %w", err)
	}
	for _, rec := range forestChanges {
		tables.SetForestAreaChange(rec.Insee, rec.From, rec.Subtype, rec.Hectares)
	}

	zpcs := append(append([]string(nil), keys.zpcs...), NationalKey)
	epcis := append(append([]string(nil), keys.epcis...), NationalKey)

	var groundFluxes []GroundFluxRecord
	if err := db.Where("zpc IN ?", keys.zpcs).Find(&groundFluxes).Error; err != nil {
		return nil, fmt.Errorf("failed to load ground fluxes: %w", err)
	}
	for _, rec := range groundFluxes {
		tables.SetGroundFlux(rec.ZPC, rec.FromFluxID, rec.ToFluxID, GroundFlux{
			AnnualFlux:   rec.AnnualFlux,
			YearsForFlux: rec.YearsForFlux,
		})
	}

	var densities []CarbonDensityRecord
	if err := db.Where("zpc IN ?", zpcs).Find(&densities).Error; err != nil {
		return nil, fmt.Errorf("failed to load carbon densities: %w", err)
	}
	for _, rec := range densities {
		tables.SetCarbonDensity(rec.ZPC, rec.GroundType, rec.Density)
	}

	var biomassFluxes []BiomassFluxRecord
	if err := db.Where("epci IN ?", keys.epcis).Find(&biomassFluxes).Error; err != nil {
		return nil, fmt.Errorf("failed to load biomass fluxes: %w", err)
	}
	for _, rec := range biomassFluxes {
		tables.SetBiomassFlux(rec.Epci, rec.From, rec.To, rec.AnnualFlux)
	}

	var biomassDensities []BiomassDensityRecord
	if err := db.Where("epci IN ?", epcis).Find(&biomassDensities).Error; err != nil {
		return nil, fmt.Errorf("failed to load biomass densities: %w", err)
	}
	for _, rec := range biomassDensities {
		tables.SetBiomassCarbonDensity(rec.Epci, rec.GroundType, rec.Density)
	}

	withNational := append(append([]string(nil), keys.insees...), NationalKey)

	var inventory []ForestInventoryRecord
	if err := db.Where("insee IN ?", withNational).Find(&inventory).Error; err != nil {
		return nil, fmt.Errorf("failed to load forest inventory: %w", err)
	}
	for _, rec := range inventory {
		tables.SetForestInventory(rec.Insee, rec.Composition, rec.ToInventory())
	}

	var harvests []WoodHarvestRecord
	if err := db.Where("territory_key IN ?", withNational).Find(&harvests).Error; err != nil {
		return nil, fmt.Errorf("failed to load wood harvests: %w", err)
	}
	for _, rec := range harvests {
		tables.SetWoodHarvest(rec.Key, rec.Composition, WoodHarvest{Bo: rec.RecolteBo, Bi: rec.RecolteBi})
	}

	var hedgerows []HedgerowRecord
	if err := db.Where("insee IN ?", keys.insees).Find(&hedgerows).Error; err != nil {
		return nil, fmt.Errorf("failed to load hedgerows: %w", err)
	}
	for _, rec := range hedgerows {
		tables.SetHedgerows(rec.Insee, rec.LengthKm)
	}

	var population int64
	if err := db.Model(&location.CommuneRecord{}).Select("COALESCE(SUM(population), 0)").Scan(&population).Error; err != nil {
		return nil, fmt.Errorf("failed to sum national population: %w", err)
	}
	tables.SetNationalPopulation(int(population))

	r.logger.Debug("Loaded reference tables",
		zap.Int("communes", len(keys.insees)),
		zap.Int("zpcs", len(keys.zpcs)),
		zap.Int("epcis", len(keys.epcis)),
	)
	return tables, nil
}

// StaticLoader serves the same tables for every request
type StaticLoader struct {
	Source Source
}

// Load implements Loader
func (l StaticLoader) Load(ctx context.Context, communes []location.Commune) (Source, error) {
	return l.Source, nil
}
