package reference

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"aldo-territoires/carbon-backend/internal/location"
)

// Workbook sheet names
const (
	SheetCommunes          = "communes"
	SheetEpcis             = "epcis"
	SheetClcChanges        = "clc_changes"
	SheetClcAreas          = "clc_areas"
	SheetForestAreaChanges = "forest_area_changes"
	SheetGroundFlux        = "ground_flux"
	SheetCarbonDensity     = "carbon_density"
	SheetBiomassFlux       = "biomass_flux"
	SheetBiomassDensity    = "biomass_density"
	SheetForestInventory   = "forest_inventory"
	SheetWoodHarvest       = "wood_harvest"
	SheetHedgerows         = "hedgerows"
	SheetNational          = "national"
)

// Workbook is a reference data set read from a spreadsheet, geography included
type Workbook struct {
	Tables   *Tables
	Communes []location.Commune
	Epcis    []location.EPCI
}

// Directory returns the geography of the workbook
func (w *Workbook) Directory() *location.StaticDirectory {
	return location.NewStaticDirectory(w.Communes, w.Epcis)
}

// sheetRow gives access to a data row by header name
type sheetRow struct {
	sheet  string
	line   int
	header map[string]int
	cells  []string
}

func (r sheetRow) str(column string) string {
	idx, ok := r.header[column]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

func (r sheetRow) num(column string) (float64, error) {
	s := r.str(column)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("sheet %s line %d column %s: %w", r.sheet, r.line, column, err)
	}
	return v, nil
}

func (r sheetRow) nums(columns ...string) ([]float64, error) {
	out := make([]float64, len(columns))
	for i, c := range columns {
		v, err := r.num(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// eachRow iterates the data rows of a sheet. Missing optional sheets are skipped.
func eachRow(f *excelize.File, sheet string, required bool, fn func(sheetRow) error) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		if required {
			return fmt.Errorf("sheet %s not found in workbook", sheet)
		}
		return nil
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}
	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for i, cells := range rows[1:] {
		if len(cells) == 0 {
			continue
		}
		if err := fn(sheetRow{sheet: sheet, line: i + 2, header: header, cells: cells}); err != nil {
			return err
		}
	}
	return nil
}

// ReadWorkbook parses a reference workbook. The geography sheets are
// required, every data sheet is optional.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Tables: NewTables()}
	t := wb.Tables
	population := 0
	nationalPopulation := 0

	steps := []struct {
		sheet    string
		required bool
		fn       func(sheetRow) error
	}{
		{SheetCommunes, true, func(row sheetRow) error {
			pop, err := row.num("population")
			if err != nil {
				return err
			}
			population += int(pop)
			wb.Communes = append(wb.Communes, location.Commune{
				Insee:      row.str("insee"),
				Name:       row.str("nom"),
				Epci:       row.str("epci"),
				ZPC:        row.str("zpc"),
				Region:     row.str("region"),
				Department: row.str("departement"),
				Population: int(pop),
			})
			return nil
		}},
		{SheetEpcis, true, func(row sheetRow) error {
			pop, err := row.num("population")
			if err != nil {
				return err
			}
			var members []string
			if m := row.str("membres"); m != "" {
				members = strings.Fields(strings.ReplaceAll(m, ",", " "))
			}
			wb.Epcis = append(wb.Epcis, location.EPCI{
				Code:       row.str("code"),
				Name:       row.str("nom"),
				Members:    members,
				Population: int(pop),
			})
			return nil
		}},
		{SheetClcChanges, false, func(row sheetRow) error {
			ha, err := row.num("hectares")
			if err != nil {
				return err
			}
			t.SetAreaChange(row.str("insee"), row.str("from"), row.str("to"), ha)
			return nil
		}},
		{SheetClcAreas, false, func(row sheetRow) error {
			ha, err := row.num("hectares")
			if err != nil {
				return err
			}
			t.SetGroundArea(row.str("insee"), row.str("code"), ha)
			return nil
		}},
		{SheetForestAreaChanges, false, func(row sheetRow) error {
			ha, err := row.num("hectares")
			if err != nil {
				return err
			}
			t.SetForestAreaChange(row.str("insee"), row.str("from"), row.str("to"), ha)
			return nil
		}},
		{SheetGroundFlux, false, func(row sheetRow) error {
			v, err := row.nums("annual_flux", "years_for_flux")
			if err != nil {
				return err
			}
			t.SetGroundFlux(row.str("zpc"), row.str("from"), row.str("to"), GroundFlux{AnnualFlux: v[0], YearsForFlux: v[1]})
			return nil
		}},
		{SheetCarbonDensity, false, func(row sheetRow) error {
			v, err := row.num("density")
			if err != nil {
				return err
			}
			t.SetCarbonDensity(row.str("zpc"), row.str("ground_type"), v)
			return nil
		}},
		{SheetBiomassFlux, false, func(row sheetRow) error {
			v, err := row.num("annual_flux")
			if err != nil {
				return err
			}
			t.SetBiomassFlux(row.str("epci"), row.str("from"), row.str("to"), v)
			return nil
		}},
		{SheetBiomassDensity, false, func(row sheetRow) error {
			v, err := row.num("density")
			if err != nil {
				return err
			}
			t.SetBiomassCarbonDensity(row.str("epci"), row.str("ground_type"), v)
			return nil
		}},
		{SheetForestInventory, false, func(row sheetRow) error {
			v, err := row.nums("area", "growth", "mortality", "timber_extraction", "flux_m3",
				"conversion_factor", "annual_flux", "live_density", "dead_density")
			if err != nil {
				return err
			}
			t.SetForestInventory(row.str("insee"), row.str("composition"), ForestInventory{
				Area:             v[0],
				Growth:           v[1],
				Mortality:        v[2],
				TimberExtraction: v[3],
				FluxMeterCubed:   v[4],
				ConversionFactor: v[5],
				AnnualFlux:       v[6],
				LiveDensity:      v[7],
				DeadDensity:      v[8],
			})
			return nil
		}},
		{SheetWoodHarvest, false, func(row sheetRow) error {
			v, err := row.nums("bo", "bi")
			if err != nil {
				return err
			}
			t.SetWoodHarvest(row.str("key"), row.str("composition"), WoodHarvest{Bo: v[0], Bi: v[1]})
			return nil
		}},
		{SheetHedgerows, false, func(row sheetRow) error {
			v, err := row.num("km")
			if err != nil {
				return err
			}
			t.SetHedgerows(row.str("insee"), v)
			return nil
		}},
		{SheetNational, false, func(row sheetRow) error {
			v, err := row.num("value")
			if err != nil {
				return err
			}
			n := t.NationalWoodProducts()
			switch row.str("key") {
			case "population":
				nationalPopulation = int(v)
			case "flux_bo":
				n.FluxBo = v
			case "flux_bi":
				n.FluxBi = v
			case "stock_bo":
				n.StockBo = v
			case "stock_bi":
				n.StockBi = v
			default:
				return fmt.Errorf("sheet %s line %d: unknown national key %q", row.sheet, row.line, row.str("key"))
			}
			t.SetNationalWoodProducts(n)
			return nil
		}},
	}

	for _, step := range steps {
		if err := eachRow(f, step.sheet, step.required, step.fn); err != nil {
			return nil, err
		}
	}

	if nationalPopulation == 0 {
		nationalPopulation = population
	}
	t.SetNationalPopulation(nationalPopulation)
	return wb, nil
}
