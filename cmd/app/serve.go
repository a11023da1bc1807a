package main

import (
	"github.com/mathmusci/optivenue/config"
	"github.com/mathmusci/optivenue/internal/appServer"
	"github.com/mathmusci/optivenue/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.ErrOrStderr()
			config.WatchLog(c.v, func(lc config.LogConfig) {
				if err := logger.Setup(&lc, out); err != nil {
					logrus.WithError(err).Warn("Keeping previous log settings")
				}
			})
			return appServer.NewServer(cmd.Context(), c.cfg)
		},
	}
}
