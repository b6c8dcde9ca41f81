package main

import (
	"os"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/cli"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/pkg/logger"
)

func main() {
	logger.Init()

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
