package flux

// NitrousOxide returns the N2O emitted by a negative soil + litter carbon
// value: direct emissions plus indirect leaching emissions
func NitrousOxide(carbon float64) float64 {
	return carbon/15*0.01*44/25 + carbon/15*0.30*0.0075*44/28
}

type pairKey struct {
	commune, from, to string
}

// DeriveNitrousOxide returns one N2O entry per soil entry whose soil + litter
// value for the same transition is an emission
func DeriveNitrousOxide(entries []Entry) []Entry {
	litter := make(map[pairKey]float64)
	for _, e := range entries {
		if e.Reservoir == ReservoirLitiere {
			litter[pairKey{e.Commune, e.From, e.To}] += e.Value
		}
	}

	var derived []Entry
	for _, soil := range entries {
		if soil.Reservoir != ReservoirSol {
			continue
		}
		sum := soil.Value + litter[pairKey{soil.Commune, soil.From, soil.To}]
		if sum >= 0 {
			continue
		}
		value := NitrousOxide(sum)
		derived = append(derived, Entry{
			Commune:      soil.Commune,
			From:         soil.From,
			To:           soil.To,
			Reservoir:    ReservoirSolEtLitiere,
			Gas:          GasN2O,
			Area:         soil.Area,
			OriginalArea: soil.OriginalArea,
			AreaModified: soil.AreaModified,
			Value:        value,
			CO2e:         ptr(ToCO2e(GasN2O, value)),
		})
	}
	return derived
}
