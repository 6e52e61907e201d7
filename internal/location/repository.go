package location

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository is the postgres backed Directory
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new geography repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the geography tables
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&CommuneRecord{}, &EpciRecord{}); err != nil {
		return fmt.Errorf("failed to migrate geography tables: %w", err)
	}
	return nil
}

// Commune returns the commune with the given INSEE code
func (r *Repository) Commune(ctx context.Context, insee string) (*Commune, error) {
	var record CommuneRecord
	err := r.db.WithContext(ctx).First(&record, "insee = ?", insee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("commune %s: %w", insee, ErrUnknownTerritory)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commune %s: %w", insee, err)
	}
	c := record.ToCommune()
	return &c, nil
}

// Epci returns the EPCI with the given SIREN code
func (r *Repository) Epci(ctx context.Context, code string) (*EPCI, error) {
	var record EpciRecord
	err := r.db.WithContext(ctx).First(&record, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("epci %s: %w", code, ErrUnknownTerritory)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get epci %s: %w", code, err)
	}
	e := record.ToEPCI()
	return &e, nil
}

// EpciCommunes returns the member communes of an EPCI sorted by INSEE code
func (r *Repository) EpciCommunes(ctx context.Context, code string) ([]Commune, error) {
	epci, err := r.Epci(ctx, code)
	if err != nil {
		return nil, err
	}
	var records []CommuneRecord
	query := r.db.WithContext(ctx).Where("epci = ?", code)
	if len(epci.Members) > 0 {
		query = query.Or("insee IN ?", epci.Members)
	}
	if err := query.Order("insee").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list communes of epci %s: %w", code, err)
	}
	communes := make([]Commune, len(records))
	for i, record := range records {
		communes[i] = record.ToCommune()
	}
	return communes, nil
}

// ListEpcis returns every EPCI sorted by name
func (r *Repository) ListEpcis(ctx context.Context) ([]EPCI, error) {
	var records []EpciRecord
	if err := r.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list epcis: %w", err)
	}
	epcis := make([]EPCI, len(records))
	for i, record := range records {
		epcis[i] = record.ToEPCI()
	}
	return epcis, nil
}
