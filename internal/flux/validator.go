package flux

import (
	"errors"
	"fmt"
	"sort"

	"aldo-territoires/carbon-backend/internal/groundtypes"
)

// ErrInvalidOptions is returned for calculation options that cannot be applied
var ErrInvalidOptions = errors.New("invalid calculation options")

// Validator checks calculation options against the ground type catalog
type Validator struct {
	catalog  *groundtypes.Catalog
	pairKeys map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator(catalog *groundtypes.Catalog) *Validator {
	keys := make(map[string]bool)
	for _, from := range catalog.Leaves() {
		for _, to := range catalog.Leaves() {
			if from.StocksID == to.StocksID {
				continue
			}
			if key, ok := catalog.PairKey(from.StocksID, to.StocksID); ok {
				keys[key] = true
			}
		}
	}
	return &Validator{catalog: catalog, pairKeys: keys}
}

// ValidateOptions performs validation of calculation options
func (v *Validator) ValidateOptions(opts Options) error {
	if opts.ProportionSolsImpermeables != nil {
		p := *opts.ProportionSolsImpermeables
		if isNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("proportionSolsImpermeables must be between 0 and 1: %w", ErrInvalidOptions)
		}
	}

	switch opts.WoodCalculation {
	case "", WoodMethodHarvest, WoodMethodConsumption, WoodMethodConsommation:
	default:
		return fmt.Errorf("unsupported woodCalculation %q: %w", opts.WoodCalculation, ErrInvalidOptions)
	}

	for _, key := range sortedKeys(opts.AreaChanges) {
		if !v.pairKeys[key] {
			return fmt.Errorf("unknown area change %q: %w", key, ErrInvalidOptions)
		}
		if area := opts.AreaChanges[key]; isNaN(area) || area < 0 {
			return fmt.Errorf("area change %q must be a non-negative number of hectares: %w", key, ErrInvalidOptions)
		}
	}

	for _, subtype := range sortedKeys(opts.Areas) {
		if !v.catalog.IsForestSubtype(subtype) {
			return fmt.Errorf("area override %q is not a forest subtype: %w", subtype, ErrInvalidOptions)
		}
		if area := opts.Areas[subtype]; isNaN(area) || area < 0 {
			return fmt.Errorf("area of %q must be a non-negative number of hectares: %w", subtype, ErrInvalidOptions)
		}
	}

	return nil
}

// PairKeys returns every valid area change key, sorted
func (v *Validator) PairKeys() []string {
	return sortedKeys(v.pairKeys)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
