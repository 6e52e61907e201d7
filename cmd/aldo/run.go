package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"aldo-territoires/carbon-backend/internal/export"
	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/stocks"
)

func runFlux(cmd *cobra.Command, args []string) error {
	req, err := request()
	if err != nil {
		return err
	}
	var opts flux.Options
	if err := readOptions(&opts); err != nil {
		return err
	}
	if woodMethod != "" {
		opts.WoodCalculation = flux.WoodMethod(woodMethod)
	}

	service := newService()
	switch format() {
	case ".xlsx", ".pdf":
		d, err := service.Dashboard(cmd.Context(), req, opts)
		if err != nil {
			return err
		}
		return writeDashboard(d)
	case ".csv":
		result, err := service.ComputeFluxes(cmd.Context(), req, opts)
		if err != nil {
			return err
		}
		return withOutput(cmd, func(w io.Writer) error {
			return export.NewCSVExporter(w, export.DefaultCSVOptions()).WriteEntries(result)
		})
	}

	result, err := service.ComputeFluxes(cmd.Context(), req, opts)
	if err != nil {
		return err
	}
	return withOutput(cmd, func(w io.Writer) error { return writeJSON(w, result) })
}

func runStocks(cmd *cobra.Command, args []string) error {
	req, err := request()
	if err != nil {
		return err
	}
	var opts stocks.Options
	if err := readOptions(&opts); err != nil {
		return err
	}
	if woodMethod != "" {
		opts.WoodCalculation = flux.WoodMethod(woodMethod)
	}

	result, err := newService().ComputeStocks(cmd.Context(), req, opts)
	if err != nil {
		return err
	}

	switch format() {
	case ".csv":
		return withOutput(cmd, func(w io.Writer) error {
			return export.NewCSVExporter(w, export.DefaultCSVOptions()).WriteStocks(export.Dashboard{Stocks: result})
		})
	case ".json":
		return withOutput(cmd, func(w io.Writer) error { return writeJSON(w, result) })
	}
	return fmt.Errorf("unsupported stocks output %q", outPath)
}

func format() string {
	if outPath == "" {
		return ".json"
	}
	return strings.ToLower(filepath.Ext(outPath))
}

func readOptions(v interface{}) error {
	if optionsPath == "" {
		return nil
	}
	data, err := os.ReadFile(optionsPath)
	if err != nil {
		return fmt.Errorf("failed to read options: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse options: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withOutput writes to --out, or to stdout when it is empty
func withOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	if outPath == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeDashboard(d export.Dashboard) error {
	if format() == ".pdf" {
		g := export.NewPDFGenerator(export.DefaultPDFOptions())
		if err := g.GenerateDashboard(d); err != nil {
			return fmt.Errorf("failed to build pdf: %w", err)
		}
		out, err := g.OutputToBytes()
		if err != nil {
			return fmt.Errorf("failed to build pdf: %w", err)
		}
		return os.WriteFile(outPath, out, 0o644)
	}

	e := export.NewExcelExporter(export.DefaultExcelOptions())
	defer e.Close()
	if err := e.WriteDashboard(d); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	return e.SaveAs(outPath)
}
