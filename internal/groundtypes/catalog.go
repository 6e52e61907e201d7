package groundtypes

import (
	"fmt"
	"strings"
)

// Ground type identifiers used throughout the calculations
const (
	Cultures            = "cultures"
	Prairies            = "prairies"
	PrairiesArborees    = "prairies zones arborées"
	PrairiesHerbacees   = "prairies zones herbacées"
	PrairiesArbustives  = "prairies zones arbustives"
	ZonesHumides        = "zones humides"
	Vergers             = "vergers"
	Vignes              = "vignes"
	SolsArtificiels     = "sols artificiels"
	SolsImpermeabilises = "sols artificiels imperméabilisés"
	SolsArbustifs       = "sols artificiels arbustifs"
	SolsArbores         = "sols artificiels arborés et buissonants"
	Forets              = "forêts"
	ForetMixte          = "forêt mixte"
	ForetFeuillu        = "forêt feuillu"
	ForetConifere       = "forêt conifere"
	ForetPeupleraie     = "forêt peupleraie"
	ProduitsBois        = "produits bois"
	Haies               = "haies"
)

// GroundType is a land-cover / land-use category of the taxonomy
type GroundType struct {
	StocksID   string   `json:"stocksId"`
	Name       string   `json:"name"`
	ParentType string   `json:"parentType,omitempty"`
	CLCCodes   []string `json:"clcCodes,omitempty"`
	FluxID     string   `json:"fluxId,omitempty"`
	AltFluxID  string   `json:"altFluxId,omitempty"`
}

// HasParent reports whether the ground type is a subtype
func (g GroundType) HasParent() bool {
	return g.ParentType != ""
}

// PairID returns the identifier used in area change override keys
func (g GroundType) PairID() string {
	if g.AltFluxID != "" {
		return g.AltFluxID
	}
	return g.FluxID
}

// Catalog is the immutable ground type table with its parent/child indexes
type Catalog struct {
	types    []GroundType
	byID     map[string]int
	children map[string][]string
}

// NewCatalog builds a catalog from a flat table of ground types.
// Parents must be declared before their children.
func NewCatalog(types []GroundType) (*Catalog, error) {
	c := &Catalog{
		types:    make([]GroundType, 0, len(types)),
		byID:     make(map[string]int, len(types)),
		children: make(map[string][]string),
	}
	for _, gt := range types {
		if gt.StocksID == "" {
			return nil, fmt.Errorf("ground type without stocksId: %q", gt.Name)
		}
		if _, exists := c.byID[gt.StocksID]; exists {
			return nil, fmt.Errorf("duplicate ground type %q", gt.StocksID)
		}
		if gt.HasParent() {
			parent, ok := c.byID[gt.ParentType]
			if !ok {
				return nil, fmt.Errorf("ground type %q declared before its parent %q", gt.StocksID, gt.ParentType)
			}
			if c.types[parent].HasParent() {
				return nil, fmt.Errorf("ground type %q: taxonomy is limited to two levels", gt.StocksID)
			}
			c.children[gt.ParentType] = append(c.children[gt.ParentType], gt.StocksID)
		}
		c.byID[gt.StocksID] = len(c.types)
		c.types = append(c.types, gt)
	}
	return c, nil
}

// MustNewCatalog is NewCatalog for static tables, panicking on malformed input
func MustNewCatalog(types []GroundType) *Catalog {
	c, err := NewCatalog(types)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every ground type in declaration order
func (c *Catalog) All() []GroundType {
	out := make([]GroundType, len(c.types))
	copy(out, c.types)
	return out
}

// Get returns the ground type with the given identifier
func (c *Catalog) Get(id string) (GroundType, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return GroundType{}, false
	}
	return c.types[idx], true
}

// Parent returns the parent identifier of a subtype, or "" for a root type
func (c *Catalog) Parent(id string) string {
	gt, ok := c.Get(id)
	if !ok {
		return ""
	}
	return gt.ParentType
}

// Children returns the subtypes of a root type
func (c *Catalog) Children(id string) []string {
	return append([]string(nil), c.children[id]...)
}

// IsLeaf reports whether a ground type has no subtypes
func (c *Catalog) IsLeaf(id string) bool {
	return len(c.children[id]) == 0
}

// Leaves returns the ground types without subtypes, in declaration order
func (c *Catalog) Leaves() []GroundType {
	var leaves []GroundType
	for _, gt := range c.types {
		if c.IsLeaf(gt.StocksID) {
			leaves = append(leaves, gt)
		}
	}
	return leaves
}

// Roots returns the top level ground types
func (c *Catalog) Roots() []GroundType {
	var roots []GroundType
	for _, gt := range c.types {
		if !gt.HasParent() {
			roots = append(roots, gt)
		}
	}
	return roots
}

// InFamily reports whether id is root or one of its subtypes
func (c *Catalog) InFamily(id, root string) bool {
	return id == root || c.Parent(id) == root
}

// PairKey builds the canonical area-change override key for a from/to pair.
// Returns false when either type is unknown.
func (c *Catalog) PairKey(from, to string) (string, bool) {
	f, ok := c.Get(from)
	if !ok {
		return "", false
	}
	t, ok := c.Get(to)
	if !ok {
		return "", false
	}
	return f.PairID() + "_" + t.PairID(), true
}

// ForestSubtypes returns the subtypes of the forest root type
func (c *Catalog) ForestSubtypes() []string {
	return c.Children(Forets)
}

// IsForestSubtype reports whether id is one of the forest subtypes
func (c *Catalog) IsForestSubtype(id string) bool {
	return c.Parent(id) == Forets
}

// ForestComposition maps a forest subtype to the composition label used by
// the forest inventory tables ("Mixte", "Feuillu", "Conifere", "Peupleraie").
func ForestComposition(subtype string) (string, error) {
	name, ok := strings.CutPrefix(subtype, "forêt ")
	if !ok || name == "" {
		return "", fmt.Errorf("no forest composition for ground type %q", subtype)
	}
	switch name {
	case "mixte", "feuillu", "conifere", "peupleraie":
		return strings.ToUpper(name[:1]) + name[1:], nil
	}
	return "", fmt.Errorf("no forest composition for ground type %q", subtype)
}
