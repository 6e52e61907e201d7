package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"aldo-territoires/carbon-backend/internal/flux"
)

// Sheet names of the territory workbook
const (
	SheetDashboard = "Tableau de bord"
	SheetFlux      = "Flux"
)

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	NumberFormat string            `json:"number_format"`
	HeaderStyle  *ExcelStyleConfig `json:"header_style,omitempty"`
	DataStyle    *ExcelStyleConfig `json:"data_style,omitempty"`
	FreezeHeader bool              `json:"freeze_header"`
	AutoFilter   bool              `json:"auto_filter"`
	AutoWidth    bool              `json:"auto_width"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"` // left, center, right
	Border    bool   `json:"border"`
	WrapText  bool   `json:"wrap_text"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		NumberFormat: "##0.00",
		FreezeHeader: true,
		AutoFilter:   true,
		AutoWidth:    true,
		HeaderStyle: &ExcelStyleConfig{
			FontBold: true,
			FontSize: 11,
			Border:   true,
		},
		DataStyle: &ExcelStyleConfig{
			FontSize: 11,
			Border:   true,
		},
	}
}

// ExcelExporter writes territory results to an xlsx workbook
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
	styles  map[string]int
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	file := excelize.NewFile()

	// Rename the default sheet
	file.SetSheetName("Sheet1", SheetDashboard)

	return &ExcelExporter{
		file:    file,
		options: options,
		styles:  make(map[string]int),
	}
}

// WriteDashboard writes the dashboard sheet: description, stocks and flux
// summaries. When flux results are present their entries go to a second sheet.
func (e *ExcelExporter) WriteDashboard(d Dashboard) error {
	sheet := SheetDashboard
	row := 1

	set := func(col, row int, val interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return e.file.SetCellValue(sheet, cell, val)
	}

	// Description
	description := [][2]interface{}{
		{"Nom", d.Name},
		{"SIREN", d.Code},
	}
	if d.Link != "" {
		description = append(description, [2]interface{}{"Lien", d.Link})
	}
	description = append(description, [2]interface{}{"Date d'export", d.ExportedAt.Format("2006-01-02")})
	if err := set(1, row, "Description"); err != nil {
		return err
	}
	row++
	for _, line := range description {
		if err := set(2, row, line[0]); err != nil {
			return err
		}
		if err := set(3, row, line[1]); err != nil {
			return err
		}
		row++
	}
	if err := set(2, row, "Communes"); err != nil {
		return err
	}
	for _, name := range d.Communes {
		if err := set(3, row, name); err != nil {
			return err
		}
		row++
	}
	row += 2

	// Stocks
	if d.Stocks != nil {
		if err := set(1, row, "Résultats stocks de carbone"); err != nil {
			return err
		}
		row++
		next, err := e.writeTable(sheet, row, 2, StockColumns, d.StockRows())
		if err != nil {
			return fmt.Errorf("failed to write stocks table: %w", err)
		}
		row = next + 1
	}

	// Flux
	if d.Flux != nil {
		if err := set(1, row, "Résultats flux de carbone"); err != nil {
			return err
		}
		row++
		if _, err := e.writeTable(sheet, row, 2, FluxColumns, d.FluxRows()); err != nil {
			return fmt.Errorf("failed to write flux table: %w", err)
		}
		if err := e.WriteEntries(d.Flux); err != nil {
			return err
		}
	}

	return e.file.SetColWidth(sheet, "B", "B", 40)
}

// WriteEntries writes every flux entry of a result to the flux sheet
func (e *ExcelExporter) WriteEntries(result *flux.Result) error {
	if _, err := e.file.NewSheet(SheetFlux); err != nil {
		return fmt.Errorf("failed to create flux sheet: %w", err)
	}
	rows := EntryRows(result.AllFlux)
	if _, err := e.writeTable(SheetFlux, 1, 1, EntryColumns, rows); err != nil {
		return fmt.Errorf("failed to write flux entries: %w", err)
	}

	if e.options.FreezeHeader {
		if err := e.file.SetPanes(SheetFlux, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
	}
	if e.options.AutoFilter && len(rows) > 0 {
		lastCol, _ := excelize.CoordinatesToCellName(len(EntryColumns), 1)
		if err := e.file.AutoFilter(SheetFlux, "A1:"+lastCol, nil); err != nil {
			return err
		}
	}
	return nil
}

// writeTable writes a header row and data rows starting at (startCol,
// startRow) and returns the first row after the table
func (e *ExcelExporter) writeTable(sheet string, startRow, startCol int, columns []Column, rows []map[string]interface{}) (int, error) {
	headerStyle, err := e.style("header", e.options.HeaderStyle, "")
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	numberStyle, err := e.style("number", e.options.DataStyle, e.options.NumberFormat)
	if err != nil {
		return 0, fmt.Errorf("failed to create data style: %w", err)
	}
	dataStyle, err := e.style("data", e.options.DataStyle, "")
	if err != nil {
		return 0, fmt.Errorf("failed to create data style: %w", err)
	}

	// Track max width for each column
	columnWidths := make(map[int]float64)

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(startCol+i, startRow)
		if err := e.file.SetCellValue(sheet, cell, col.Label); err != nil {
			return 0, err
		}
		if headerStyle > 0 {
			e.file.SetCellStyle(sheet, cell, cell, headerStyle)
		}
	}

	for rowIdx, row := range rows {
		rowNum := startRow + 1 + rowIdx
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(startCol+colIdx, rowNum)
			val, ok := row[col.Key]
			if !ok {
				continue
			}
			if err := e.file.SetCellValue(sheet, cell, val); err != nil {
				return 0, fmt.Errorf("failed to set cell value: %w", err)
			}

			styleID := dataStyle
			switch v := val.(type) {
			case float64:
				styleID = numberStyle
			case string:
				if col.Key == ColumnDirection && v != "" {
					styleID, err = e.directionStyle(v)
					if err != nil {
						return 0, err
					}
				}
			}
			if styleID > 0 {
				e.file.SetCellStyle(sheet, cell, cell, styleID)
			}

			if e.options.AutoWidth {
				if width := float64(len(fmt.Sprint(val))) * 1.2; width > columnWidths[colIdx] {
					columnWidths[colIdx] = width
				}
			}
		}
	}

	// Apply column widths, min 10 and max 50
	for colIdx, width := range columnWidths {
		colName, _ := excelize.ColumnNumberToName(startCol + colIdx)
		width = min(max(width, 10), 50)
		e.file.SetColWidth(sheet, colName, colName, width)
	}

	return startRow + 1 + len(rows), nil
}

// style returns the cached style ID built from a config, 0 when config is nil
func (e *ExcelExporter) style(name string, config *ExcelStyleConfig, numberFormat string) (int, error) {
	if config == nil {
		return 0, nil
	}
	if id, ok := e.styles[name]; ok {
		return id, nil
	}
	id, err := e.createStyle(config, numberFormat)
	if err != nil {
		return 0, err
	}
	e.styles[name] = id
	return id, nil
}

// directionStyle colours sequestration green and emission red
func (e *ExcelExporter) directionStyle(direction string) (int, error) {
	color := "E1000F"
	if direction == DirectionSequester {
		color = "1F8D49"
	}
	return e.style(direction, &ExcelStyleConfig{FontColor: color, FontSize: 11}, "")
}

// createStyle creates an Excel style from config
func (e *ExcelExporter) createStyle(config *ExcelStyleConfig, numberFormat string) (int, error) {
	style := &excelize.Style{}

	// Font
	style.Font = &excelize.Font{
		Bold: config.FontBold,
		Size: float64(config.FontSize),
	}
	if config.FontColor != "" {
		style.Font.Color = config.FontColor
	}

	// Fill
	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}

	// Alignment
	if config.Alignment != "" || config.WrapText {
		style.Alignment = &excelize.Alignment{
			Horizontal: config.Alignment,
			WrapText:   config.WrapText,
		}
	}

	// Border
	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}

	if numberFormat != "" {
		style.CustomNumFmt = &numberFormat
	}

	return e.file.NewStyle(style)
}

// Write writes the Excel file to a writer
func (e *ExcelExporter) Write(w io.Writer) error {
	return e.file.Write(w)
}

// SaveAs saves the Excel file to a path
func (e *ExcelExporter) SaveAs(path string) error {
	return e.file.SaveAs(path)
}

// Close closes the Excel file
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}
