package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"aldo-territoires/carbon-backend/internal/flux"
)

// CSVOptions configures CSV export behavior
type CSVOptions struct {
	Delimiter      rune   `json:"delimiter"`        // Field delimiter (default: comma)
	UseCRLF        bool   `json:"use_crlf"`         // Use \r\n for line terminator
	IncludeHeader  bool   `json:"include_header"`   // Include column headers
	NumberFormat   string `json:"number_format"`    // Format for numbers (e.g., "%.2f")
	NullValue      string `json:"null_value"`       // String to use for missing values
	BoolTrueValue  string `json:"bool_true_value"`  // String for true
	BoolFalseValue string `json:"bool_false_value"` // String for false
}

// DefaultCSVOptions returns default CSV export options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:      ',',
		IncludeHeader:  true,
		BoolTrueValue:  "true",
		BoolFalseValue: "false",
	}
}

// CSVExporter exports flux entries to CSV
type CSVExporter struct {
	writer  *csv.Writer
	options CSVOptions
}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter(w io.Writer, options CSVOptions) *CSVExporter {
	writer := csv.NewWriter(w)
	if options.Delimiter != 0 {
		writer.Comma = options.Delimiter
	}
	writer.UseCRLF = options.UseCRLF

	return &CSVExporter{
		writer:  writer,
		options: options,
	}
}

// WriteEntries writes every flux entry of a result, one line per entry
func (e *CSVExporter) WriteEntries(result *flux.Result) error {
	if e.options.IncludeHeader {
		if err := e.writer.Write(labels(EntryColumns)); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := e.WriteMapRows(EntryRows(result.AllFlux), keys(EntryColumns)); err != nil {
		return err
	}
	return e.Flush()
}

// WriteStocks writes the stocks table of a dashboard
func (e *CSVExporter) WriteStocks(d Dashboard) error {
	if e.options.IncludeHeader {
		if err := e.writer.Write(labels(StockColumns)); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := e.WriteMapRows(d.StockRows(), keys(StockColumns)); err != nil {
		return err
	}
	return e.Flush()
}

// WriteMapRows writes rows from a slice of maps
func (e *CSVExporter) WriteMapRows(rows []map[string]interface{}, columns []string) error {
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			val, ok := row[col]
			if !ok {
				record[i] = e.options.NullValue
			} else {
				record[i] = e.formatValue(val)
			}
		}

		if err := e.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer
func (e *CSVExporter) Flush() error {
	e.writer.Flush()
	return e.writer.Error()
}

// formatValue formats a value for CSV output
func (e *CSVExporter) formatValue(val interface{}) string {
	if val == nil {
		return e.options.NullValue
	}

	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		if e.options.NumberFormat != "" {
			return fmt.Sprintf(e.options.NumberFormat, v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return e.options.BoolTrueValue
		}
		return e.options.BoolFalseValue
	default:
		return fmt.Sprintf("%v", v)
	}
}
