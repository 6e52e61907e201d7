// Command aldo computes carbon stocks and fluxes of a territory from the
// command line, against the configured reference data or a local workbook.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aldo-territoires/carbon-backend/internal/app"
	"aldo-territoires/carbon-backend/internal/config"
	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/territory"
	"aldo-territoires/carbon-backend/pkg/logging"
)

var (
	configPath  string
	workbook    string
	epcis       []string
	communes    []string
	outPath     string
	woodMethod  string
	optionsPath string
	verbose     bool

	logger  *zap.Logger
	cfg     *config.Config
	sources *app.Sources
)

var rootCmd = &cobra.Command{
	Use:   "aldo",
	Short: "Territorial carbon stocks and fluxes",
	Long: `aldo computes the carbon stocks and the annual carbon fluxes of French
communes and EPCIs from land use and land-use change.

Reference data is read from the configured source, or from a local
workbook when --workbook is given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if workbook != "" {
			cfg.Reference.Source = config.SourceWorkbook
			cfg.Reference.WorkbookPath = workbook
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, true)
		if err != nil {
			return err
		}

		sources, err = app.OpenSources(cmd.Context(), cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if sources != nil {
			_ = sources.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var fluxCmd = &cobra.Command{
	Use:   "flux",
	Short: "Compute the annual carbon fluxes of a territory",
	Long: `Computes every flux entry of the territory and its per ground type summary.

The output format follows the --out extension: .json (default), .csv for the
flux entries, .xlsx or .pdf for the full dashboard.`,
	RunE: runFlux,
}

var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "Compute the carbon stocks of a territory",
	Long: `Computes the carbon stocks per ground type and the wood products stock.

The output format follows the --out extension: .json (default) or .csv.`,
	RunE: runStocks,
}

var territoriesCmd = &cobra.Command{
	Use:   "territoires",
	Short: "List the known EPCIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := sources.Directory.ListEpcis(cmd.Context())
		if err != nil {
			return err
		}
		for _, e := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d communes\n", e.Code, e.Name, len(e.Members))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&workbook, "workbook", "", "read reference data from this workbook")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	for _, cmd := range []*cobra.Command{fluxCmd, stocksCmd} {
		cmd.Flags().StringSliceVar(&epcis, "epci", nil, "EPCI SIREN code, repeatable")
		cmd.Flags().StringSliceVar(&communes, "commune", nil, "commune INSEE code, repeatable")
		cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, stdout when empty")
		cmd.Flags().StringVar(&woodMethod, "wood", "", "wood products method: harvest or consumption")
		cmd.Flags().StringVar(&optionsPath, "options", "", "JSON file with calculation options")
	}

	rootCmd.AddCommand(fluxCmd, stocksCmd, territoriesCmd)
}

func newService() *territory.Service {
	return territory.NewService(sources.Directory, sources.Loader, nil, territory.Defaults{
		WoodCalculation:            flux.WoodMethod(cfg.Calculation.WoodCalculation),
		ProportionSolsImpermeables: cfg.Calculation.ProportionSolsImpermeables,
	}, logger)
}

func request() (location.Request, error) {
	if len(epcis) == 0 && len(communes) == 0 {
		return location.Request{}, fmt.Errorf("at least one --epci or --commune is required")
	}
	return location.Request{Epcis: epcis, Communes: communes}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
