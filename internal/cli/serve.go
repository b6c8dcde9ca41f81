package cli

import (
	"github.com/spf13/cobra"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/server"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/pkg/logger"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the storage-event intake endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, dispatcher, err := openPipeline(*configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			logger.Infof("listening on :%d", cfg.Server.Port)
			return server.New(dispatcher).Run(cfg.Server.Port)
		},
	}
}
