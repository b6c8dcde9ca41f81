package cli

import (
	"github.com/spf13/cobra"
)

func newIngestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.xlsx> [more.xlsx ...]",
		Short: "Ingest local workbook files through the same pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, dispatcher, err := openPipeline(*configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, path := range args {
				if err := dispatcher.IngestFile(path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
