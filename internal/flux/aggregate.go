package flux

import (
	"go.uber.org/zap"

	"aldo-territoires/carbon-backend/internal/groundtypes"
	"aldo-territoires/carbon-backend/internal/location"
)

// Aggregator reduces flux entries into territory summaries
type Aggregator struct {
	catalog *groundtypes.Catalog
	surface *SurfaceResolver
	logger  *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(catalog *groundtypes.Catalog, surface *SurfaceResolver, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{catalog: catalog, surface: surface, logger: logger}
}

// Summary is the reduction of a flux entry list
type Summary struct {
	Summary        map[string]*SummaryRow `json:"summary"`
	BiomassSummary []BiomassRow           `json:"biomassSummary"`
	Total          float64                `json:"total"`
	Skipped        int                    `json:"skipped,omitempty"`
}

func (s *Summary) row(id string) *SummaryRow {
	row, ok := s.Summary[id]
	if !ok {
		row = &SummaryRow{}
		s.Summary[id] = row
	}
	return row
}

func addToRow(row *SummaryRow, e Entry) {
	if e.Gas == GasC {
		row.TotalCarbonSequestration += e.Value
	}
	row.TotalSequestration += *e.CO2e
	if e.AreaModified {
		row.AreaModified = true
		row.HasModifications = true
	}
}

// Summarize sums entries per destination ground type, rolled up to the parent
// type, computes the forest biomass summary and the grand total. Entries
// without a CO2e value are logged and left out.
func (a *Aggregator) Summarize(entries []Entry, opts Options) *Summary {
	s := &Summary{Summary: make(map[string]*SummaryRow)}

	for _, e := range entries {
		if !e.HasCO2e() {
			a.logger.Warn("Flux without a co2e found",
				zap.String("commune", e.Commune),
				zap.String("from", e.From),
				zap.String("to", e.To),
				zap.String("reservoir", string(e.Reservoir)),
				zap.String("gas", string(e.Gas)),
			)
			s.Skipped++
			continue
		}
		s.Total += *e.CO2e
		addToRow(s.row(e.To), e)
		if parent := a.catalog.Parent(e.To); parent != "" {
			addToRow(s.row(parent), e)
		}
	}

	s.BiomassSummary = a.biomassSummary(s, entries, opts)
	return s
}

// biomassSummary builds one row per forest subtype from the growth entries,
// each property averaged with the entry area as weight. An area override only
// changes the row and the forest flags; the summary rows and the total stay
// sums of the entries.
func (a *Aggregator) biomassSummary(s *Summary, entries []Entry, opts Options) []BiomassRow {
	subtypes := a.catalog.ForestSubtypes()
	rows := make([]BiomassRow, 0, len(subtypes))
	modified := false

	for _, subtype := range subtypes {
		var growth []Entry
		for _, e := range entries {
			if e.IsGrowth() && e.To == subtype && e.HasCO2e() {
				growth = append(growth, e)
			}
		}

		row := BiomassRow{To: subtype}
		for _, e := range growth {
			row.Area += e.Area
			row.CO2e += *e.CO2e
		}
		row.Growth = weightedAverage(growth, func(e Entry) float64 { return e.Growth })
		row.Mortality = weightedAverage(growth, func(e Entry) float64 { return e.Mortality })
		row.TimberExtraction = weightedAverage(growth, func(e Entry) float64 { return e.TimberExtraction })
		row.FluxMeterCubed = weightedAverage(growth, func(e Entry) float64 { return e.FluxMeterCubed })
		row.ConversionFactor = weightedAverage(growth, func(e Entry) float64 { return e.ConversionFactor })
		row.AnnualFlux = weightedAverage(growth, func(e Entry) float64 { return e.AnnualFlux })
		row.AnnualFluxEquivalent = weightedAverage(growth, func(e Entry) float64 { return e.AnnualFluxEquivalent })

		if area, ok := opts.Areas[subtype]; ok && area >= 0 {
			row.OriginalArea = row.Area
			row.Area = area
			row.AreaModified = true
			row.CO2e = row.Area * row.AnnualFluxEquivalent
			modified = true
		}
		rows = append(rows, row)
	}

	if modified {
		forests := s.row(groundtypes.Forets)
		forests.AreaModified = true
		forests.HasModifications = true
	}
	return rows
}

// weightedAverage averages a property over entries weighted by area, 0 when
// the total area is 0
func weightedAverage(entries []Entry, property func(Entry) float64) float64 {
	weighted, total := 0.0, 0.0
	for _, e := range entries {
		weighted += property(e) * e.Area
		total += e.Area
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// AreaChanges sums, per ordered pair of area-carrying ground types, the
// computed area change over the communes. Overridden pairs take the override
// as territory area.
func (a *Aggregator) AreaChanges(communes []location.Commune, opts Options) map[string]map[string]*AreaRow {
	types := a.catalog.AreaTypes()
	proportion := opts.Proportion()
	changes := make(map[string]map[string]*AreaRow, len(types))

	for _, from := range types {
		changes[from.StocksID] = make(map[string]*AreaRow, len(types)-1)
		for _, to := range types {
			if from.StocksID == to.StocksID {
				continue
			}
			row := &AreaRow{}
			for _, c := range communes {
				row.OriginalArea += a.surface.OriginalArea(c, proportion, from.StocksID, to.StocksID)
			}
			row.Area = row.OriginalArea
			if area, ok := a.surface.Override(opts, from.StocksID, to.StocksID); ok {
				row.Area = area
				row.AreaModified = true
			}
			changes[from.StocksID][to.StocksID] = row
		}
	}
	return changes
}
