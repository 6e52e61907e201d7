package flux

import (
	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

// YearsBetweenSurveys is the interval between the two CORINE land cover surveys
const YearsBetweenSurveys = 6

// AreaChange is the annual area changing between two ground types
type AreaChange struct {
	Area         float64 `json:"area"`
	OriginalArea float64 `json:"originalArea"`
	AreaModified bool    `json:"areaModified,omitempty"`
}

// surfaceRule replaces the CLC area change of a transition
type surfaceRule struct {
	name    string
	applies func(catalog *groundtypes.Catalog, from, to string) bool
	area    func(s *SurfaceResolver, c location.Commune, proportion float64, from, to string) float64
}

// surfaceRules are evaluated in order; the first applicable rule wins and the
// CLC change is used when none applies
var surfaceRules []surfaceRule

// The rules call back into the resolvers, which read the table, so it is
// assigned in init.
func init() {
	surfaceRules = []surfaceRule{
		{
			name: "forest inventory",
			applies: func(catalog *groundtypes.Catalog, _, to string) bool {
				return catalog.IsForestSubtype(to)
			},
			area: func(s *SurfaceResolver, c location.Commune, _ float64, from, to string) float64 {
				return s.source.ForestAreaChange(c.Insee, from, to)
			},
		},
		{
			name: "shrubby to impermeable",
			applies: func(_ *groundtypes.Catalog, from, to string) bool {
				return from == groundtypes.SolsArbustifs && to == groundtypes.SolsImpermeabilises
			},
			area: func(*SurfaceResolver, location.Commune, float64, string, string) float64 {
				return 0
			},
		},
		{
			name: "impermeable share",
			applies: func(_ *groundtypes.Catalog, _, to string) bool {
				return to == groundtypes.SolsImpermeabilises
			},
			area: func(s *SurfaceResolver, c location.Commune, p float64, from, to string) float64 {
				clc := s.ClcChange(c, from, to)
				arbores := s.OriginalArea(c, p, from, groundtypes.SolsArbores)
				combined := clc + arbores
				if arbores < 0.2*(arbores+combined*p) {
					return combined * p
				}
				return clc
			},
		},
		{
			name: "shrubby share",
			applies: func(_ *groundtypes.Catalog, _, to string) bool {
				return to == groundtypes.SolsArbustifs
			},
			area: func(s *SurfaceResolver, c location.Commune, p float64, from, to string) float64 {
				clc := s.ClcChange(c, from, to)
				arbores := s.OriginalArea(c, p, from, groundtypes.SolsArbores)
				impermeables := s.OriginalArea(c, p, from, groundtypes.SolsImpermeabilises)
				if arbores < 0.2*(impermeables+arbores) {
					return (clc+arbores)*(1-p) - arbores
				}
				return 0
			},
		},
	}
}

// SurfaceResolver computes the annual area changing between ground types
type SurfaceResolver struct {
	catalog *groundtypes.Catalog
	source  reference.Source
}

// NewSurfaceResolver creates a surface resolver over a reference source
func NewSurfaceResolver(catalog *groundtypes.Catalog, source reference.Source) *SurfaceResolver {
	return &SurfaceResolver{catalog: catalog, source: source}
}

// ClcChange returns the yearly CORINE land cover change between two ground
// types, 0 when either has no CLC mapping
func (s *SurfaceResolver) ClcChange(c location.Commune, from, to string) float64 {
	f, ok := s.catalog.Get(from)
	if !ok {
		return 0
	}
	t, ok := s.catalog.Get(to)
	if !ok {
		return 0
	}
	if len(f.CLCCodes) == 0 || len(t.CLCCodes) == 0 {
		return 0
	}
	total := 0.0
	for _, fromCode := range f.CLCCodes {
		for _, toCode := range t.CLCCodes {
			total += s.source.AreaChange(c.Insee, fromCode, toCode)
		}
	}
	return total / YearsBetweenSurveys
}

// OriginalArea returns the computed annual area change, before overrides
func (s *SurfaceResolver) OriginalArea(c location.Commune, proportion float64, from, to string) float64 {
	for _, rule := range surfaceRules {
		if rule.applies(s.catalog, from, to) {
			return rule.area(s, c, proportion, from, to)
		}
	}
	return s.ClcChange(c, from, to)
}

// Override returns the user area for a transition, if any
func (s *SurfaceResolver) Override(opts Options, from, to string) (float64, bool) {
	if len(opts.AreaChanges) == 0 || from == "" {
		return 0, false
	}
	key, ok := s.catalog.PairKey(from, to)
	if !ok {
		return 0, false
	}
	area, ok := opts.AreaChanges[key]
	if !ok || area < 0 {
		return 0, false
	}
	return area, true
}

// Resolve returns the area change of a transition for a commune, applying the
// user override when one is set for the pair
func (s *SurfaceResolver) Resolve(c location.Commune, opts Options, from, to string) AreaChange {
	original := s.OriginalArea(c, opts.Proportion(), from, to)
	if area, ok := s.Override(opts, from, to); ok {
		return AreaChange{Area: area, OriginalArea: original, AreaModified: true}
	}
	return AreaChange{Area: original, OriginalArea: original}
}
