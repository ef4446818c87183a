package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gnolang/virfix/fix"
	"github.com/gnolang/virfix/internal/fixes"
	"github.com/gnolang/virfix/internal/vir"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "virfix",
	Short: "virfix - repairs ghost labels and havocs loop targets in VIR programs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		vir.SetLogger(logger.Named("vir"))
		fixes.SetLogger(logger.Named("fixes"))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", fix.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for the run")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(havocCmd)
}

// loadConfig reads path, falling back to the defaults when the default
// configuration file does not exist.
func loadConfig(path string) (fix.Config, error) {
	config, err := fix.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) && path == fix.DefaultConfigFile {
		return fix.DefaultConfig(), nil
	}
	return config, err
}
