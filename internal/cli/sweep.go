package cli

import (
	"github.com/spf13/cobra"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/pkg/logger"
)

func newSweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Drop staging tables left behind by crashed ingestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, _, err := openPipeline(*configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			dropped, err := st.SweepStaging(cfg.StagingMaxAge())
			if err != nil {
				return err
			}
			logger.Infof("dropped %d stale staging tables", dropped)
			return nil
		},
	}
}
