package cli

import (
	"github.com/spf13/cobra"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/config"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/ingest"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/store"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tmaetl",
		Short: "Reconcile master and ledger workbook uploads into the base tables",
		Long: `tmaetl ingests xlsx uploads and reconciles them into two tables:
base_legal.xlsx / base_geral.xlsx fully replace base_processos, any
other xlsx replaces its own partition of lancamentos, keyed by file
name. Re-ingesting a file name always leaves only its latest rows.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config file")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newIngestCmd(&configPath))
	rootCmd.AddCommand(newSweepCmd(&configPath))

	return rootCmd
}

// openPipeline wires config -> store -> dispatcher for the commands.
func openPipeline(configPath string) (*config.AppConfig, *store.Store, *ingest.Dispatcher, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := store.Open(cfg.Data.DatabasePath)
	if err != nil {
		return nil, nil, nil, err
	}
	dispatcher := ingest.New(st, ingest.DirBlobSource{Root: cfg.Storage.Root}, cfg.Ingest.MasterSheet)
	return cfg, st, dispatcher, nil
}
