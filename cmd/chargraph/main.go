package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/chargraph/internal/config"
	"github.com/psidex/chargraph/internal/lib"
)

var version = "0.1.0"

// app is what every subcommand shares once the root has loaded the config.
type app struct {
	cfgPath   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "chargraph",
		Short:         "Render and explore character interaction graphs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = a.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = a.logFormat
			}

			logger, err := lib.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "text or json")

	root.AddCommand(
		renderCmd(a),
		statsCmd(a),
		serveCmd(a),
		configCmd(a),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		bad.Fprintf(root.ErrOrStderr(), "chargraph: %v\n", err)
		os.Exit(1)
	}
}
