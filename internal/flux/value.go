package flux

import "math"

// Conversion factors to CO2 equivalent
const (
	CarbonToCO2e = 44.0 / 12.0
	N2OToCO2e    = 298.0
)

// CToCO2e converts a carbon mass to CO2 equivalent
func CToCO2e(c float64) float64 {
	return c * CarbonToCO2e
}

// CO2eToC converts a CO2 equivalent mass to carbon
func CO2eToC(co2e float64) float64 {
	return co2e / CarbonToCO2e
}

// ToCO2e converts a value expressed in the given gas to CO2 equivalent
func ToCO2e(gas Gas, value float64) float64 {
	if gas == GasN2O {
		return value * N2OToCO2e
	}
	return CToCO2e(value)
}

func isNaN(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func ptr(v float64) *float64 {
	return &v
}

// ComputeValue fills flux, value and co2e of an entry from its coefficient and area
func ComputeValue(e *Entry) {
	e.Flux = e.AnnualFlux
	if e.YearsForFlux != 0 {
		e.Flux *= e.YearsForFlux
	}
	e.Value = e.Flux * e.Area
	e.CO2e = ptr(ToCO2e(e.Gas, e.Value))
}

// ComputeValues applies ComputeValue to every entry
func ComputeValues(entries []Entry) []Entry {
	for i := range entries {
		ComputeValue(&entries[i])
	}
	return entries
}
