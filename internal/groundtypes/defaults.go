package groundtypes

// DefaultTypes is the ALDO ground type table. Order matters: parents come
// before children and leaves are iterated in this order.
var DefaultTypes = []GroundType{
	{
		StocksID: Cultures,
		Name:     "Cultures",
		CLCCodes: []string{"211", "212", "213", "241", "242", "243", "244"},
		FluxID:   "cult",
	},
	{
		StocksID: Prairies,
		Name:     "Prairies",
	},
	{
		StocksID:   PrairiesHerbacees,
		Name:       "Prairies zones herbacées",
		ParentType: Prairies,
		CLCCodes:   []string{"231", "321"},
		FluxID:     "prai",
		AltFluxID:  "prai_herb",
	},
	{
		StocksID:   PrairiesArbustives,
		Name:       "Prairies zones arbustives",
		ParentType: Prairies,
		CLCCodes:   []string{"322"},
		FluxID:     "prai",
		AltFluxID:  "prai_arbu",
	},
	{
		StocksID:   PrairiesArborees,
		Name:       "Prairies zones arborées",
		ParentType: Prairies,
		CLCCodes:   []string{"323"},
		FluxID:     "prai",
		AltFluxID:  "prai_arbo",
	},
	{
		StocksID: ZonesHumides,
		Name:     "Zones humides",
		CLCCodes: []string{"411", "412", "421", "422", "423", "511", "512", "521", "522", "523"},
		FluxID:   "zh",
	},
	{
		StocksID: Vergers,
		Name:     "Vergers",
		CLCCodes: []string{"222", "223"},
		FluxID:   "verg",
	},
	{
		StocksID: Vignes,
		Name:     "Vignes",
		CLCCodes: []string{"221"},
		FluxID:   "vign",
	},
	{
		StocksID: SolsArtificiels,
		Name:     "Sols artificiels",
	},
	{
		StocksID:   SolsImpermeabilises,
		Name:       "Sols artificiels imperméabilisés",
		ParentType: SolsArtificiels,
		CLCCodes:   []string{"111", "121", "122", "123", "124", "131", "132", "133", "142"},
		FluxID:     "art_imp",
	},
	{
		StocksID:   SolsArbustifs,
		Name:       "Sols artificiels arbustifs",
		ParentType: SolsArtificiels,
		CLCCodes:   []string{"112"},
		FluxID:     "art_arbu",
	},
	{
		StocksID:   SolsArbores,
		Name:       "Sols artificiels arborés et buissonants",
		ParentType: SolsArtificiels,
		CLCCodes:   []string{"141"},
		FluxID:     "art_arb",
	},
	{
		StocksID: Forets,
		Name:     "Forêts",
		FluxID:   "for",
	},
	{
		StocksID:   ForetMixte,
		Name:       "Forêt mixte",
		ParentType: Forets,
		CLCCodes:   []string{"313"},
		FluxID:     "for",
		AltFluxID:  "for_mix",
	},
	{
		StocksID:   ForetFeuillu,
		Name:       "Forêt feuillu",
		ParentType: Forets,
		CLCCodes:   []string{"311"},
		FluxID:     "for",
		AltFluxID:  "for_feu",
	},
	{
		StocksID:   ForetConifere,
		Name:       "Forêt conifere",
		ParentType: Forets,
		CLCCodes:   []string{"312"},
		FluxID:     "for",
		AltFluxID:  "for_con",
	},
	{
		StocksID:   ForetPeupleraie,
		Name:       "Forêt peupleraie",
		ParentType: Forets,
		FluxID:     "for",
		AltFluxID:  "for_peu",
	},
	{
		StocksID: ProduitsBois,
		Name:     "Produits bois",
	},
	{
		StocksID: Haies,
		Name:     "Haies",
	},
}

// Default is the catalog built from DefaultTypes
var Default = MustNewCatalog(DefaultTypes)

// IsForestLike reports whether litter accumulates on the ground type
func (c *Catalog) IsForestLike(id string) bool {
	return c.InFamily(id, Forets) || id == SolsArbores
}

// HasNonForestBiomass reports whether the ground type participates in the
// non-forest biomass flux lookups
func HasNonForestBiomass(id string) bool {
	switch id {
	case Prairies, Haies, Forets:
		return false
	}
	return true
}

// AreaTypes returns the leaf ground types that carry an area, excluding
// hedgerows and wood products
func (c *Catalog) AreaTypes() []GroundType {
	var out []GroundType
	for _, gt := range c.Leaves() {
		if gt.StocksID == Haies || gt.StocksID == ProduitsBois {
			continue
		}
		out = append(out, gt)
	}
	return out
}

// FluxTypes returns the leaf ground types considered by the flux resolvers
func (c *Catalog) FluxTypes() []GroundType {
	return c.AreaTypes()
}
