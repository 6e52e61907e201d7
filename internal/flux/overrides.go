package flux

import (
	"aldo-territoires/carbon-backend/internal/groundtypes"
)

type mergeKey struct {
	from, to  string
	reservoir Reservoir
	gas       Gas
	origin    string
}

// MergeOverrides collapses, for every transition whose area is overridden,
// the per-commune entries of the same reservoir, gas and origin into one
// territory entry. The override is a territory area: without merging it would be
// counted once per commune.
//
// The merged entry keeps the summed original area, takes the override as
// area and the original-area weighted mean of the coefficients. N2O entries
// of overridden transitions are derived again from the merged soil and
// litter values.
func MergeOverrides(catalog *groundtypes.Catalog, entries []Entry, opts Options) []Entry {
	if len(opts.AreaChanges) == 0 {
		return entries
	}
	overrides := make(map[[2]string]float64)
	for _, from := range catalog.Leaves() {
		for _, to := range catalog.Leaves() {
			key, ok := catalog.PairKey(from.StocksID, to.StocksID)
			if !ok {
				continue
			}
			if area, ok := opts.AreaChanges[key]; ok && area >= 0 {
				overrides[[2]string{from.StocksID, to.StocksID}] = area
			}
		}
	}
	if len(overrides) == 0 {
		return entries
	}

	out := make([]Entry, 0, len(entries))
	groups := make(map[mergeKey][]Entry)
	var order []mergeKey
	for _, e := range entries {
		pair := [2]string{e.From, e.To}
		if _, ok := overrides[pair]; !ok || e.From == "" {
			out = append(out, e)
			continue
		}
		if e.Reservoir == ReservoirSolEtLitiere {
			continue
		}
		k := mergeKey{e.From, e.To, e.Reservoir, e.Gas, e.Origin}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	merged := make([]Entry, 0, len(order))
	for _, k := range order {
		merged = append(merged, mergeGroup(groups[k], overrides[[2]string{k.from, k.to}]))
	}
	out = append(out, merged...)
	out = append(out, DeriveNitrousOxide(merged)...)
	return out
}

func mergeGroup(group []Entry, area float64) Entry {
	first := group[0]
	merged := Entry{
		From:         first.From,
		To:           first.To,
		Reservoir:    first.Reservoir,
		Gas:          first.Gas,
		Origin:       first.Origin,
		Area:         area,
		AreaModified: true,
	}

	sameYears := true
	for _, e := range group {
		merged.OriginalArea += e.OriginalArea
		if e.YearsForFlux != first.YearsForFlux {
			sameYears = false
		}
	}

	coefficient := func(e Entry) float64 {
		if sameYears || e.YearsForFlux == 0 {
			return e.AnnualFlux
		}
		return e.AnnualFlux * e.YearsForFlux
	}
	weighted, sum := 0.0, 0.0
	for _, e := range group {
		weighted += coefficient(e) * e.OriginalArea
		sum += coefficient(e)
	}
	if merged.OriginalArea != 0 {
		merged.AnnualFlux = weighted / merged.OriginalArea
	} else {
		merged.AnnualFlux = sum / float64(len(group))
	}
	if sameYears {
		merged.YearsForFlux = first.YearsForFlux
	}
	if first.AnnualFluxEquivalent != 0 {
		merged.AnnualFluxEquivalent = CToCO2e(merged.AnnualFlux)
	}
	ComputeValue(&merged)
	return merged
}
