package main

import (
	"github.com/mathmusci/optivenue/config"
	"github.com/mathmusci/optivenue/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries the configuration loaded before any subcommand runs.
type cli struct {
	configPath string
	cfg        *config.Config
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:          "optivenue",
		Short:        "Venue booking scheduler",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			cfg, err := config.ParseConfig(v)
			if err != nil {
				return err
			}
			if err := logger.Setup(&cfg.Log, cmd.ErrOrStderr()); err != nil {
				return err
			}
			c.cfg = cfg
			c.v = v
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./config/config.yaml)")

	cmd.AddCommand(
		c.serveCmd(),
		c.migrateCmd(),
		c.importCmd(),
		c.seedCmd(),
	)
	return cmd
}
