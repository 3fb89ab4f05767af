package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/korea-atlas/internal/config"
	"github.com/sells-group/korea-atlas/internal/loader"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "korea-atlas",
	Short: "Korean regional statistics on the map",
	Long:  "Reconciles municipal birth-rate statistics with the sigungu boundary map, and filters and aggregates bicycle-accident hotspot records by province.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newLoader validates the configuration for mode and builds a Loader.
func newLoader(mode string) (*loader.Loader, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	return loader.New(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
