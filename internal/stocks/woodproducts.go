package stocks

import (
	"fmt"

	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
)

// WoodProducts apportions the national wood products stock (tCO2, converted
// to tC) to the territory by harvest or population share
func WoodProducts(loc *location.Location, source reference.Source, method flux.WoodMethod) (WoodProductsStock, error) {
	national := source.NationalWoodProducts()
	w := WoodProductsStock{
		Method:        method,
		FranceStockBo: flux.CO2eToC(national.Stock(reference.CategoryBo)),
		FranceStockBi: flux.CO2eToC(national.Stock(reference.CategoryBi)),
	}

	switch method {
	case flux.WoodMethodConsumption:
		w.LocalPopulation = loc.Population()
		w.FrancePopulation = source.NationalPopulation()
		w.PortionBo = share(float64(w.LocalPopulation), float64(w.FrancePopulation))
		w.PortionBi = w.PortionBo
	default:
		var err error
		w.FranceHarvestBo, w.FranceHarvestBi, err = harvest(source, reference.NationalKey)
		if err != nil {
			return WoodProductsStock{}, err
		}
		for _, c := range loc.Communes {
			if c.Arrondissement {
				continue
			}
			bo, bi, err := harvest(source, c.Insee)
			if err != nil {
				return WoodProductsStock{}, err
			}
			w.LocalHarvestBo += bo
			w.LocalHarvestBi += bi
		}
		w.PortionBo = share(w.LocalHarvestBo, w.FranceHarvestBo)
		w.PortionBi = share(w.LocalHarvestBi, w.FranceHarvestBi)
	}

	w.StockBo = w.PortionBo * w.FranceStockBo
	w.StockBi = w.PortionBi * w.FranceStockBi
	w.Total = w.StockBo + w.StockBi
	return w, nil
}

// harvest returns the bo and bi harvest of a territory key summed over compositions
func harvest(source reference.Source, key string) (bo, bi float64, err error) {
	for _, composition := range reference.WoodCompositions {
		h, err := source.WoodHarvest(key, composition)
		if err != nil {
			return 0, 0, fmt.Errorf("wood products stock: %w", err)
		}
		bo += h.Bo
		bi += h.Bi
	}
	return bo, bi, nil
}

func share(local, national float64) float64 {
	if national == 0 {
		return 0
	}
	return local / national
}
