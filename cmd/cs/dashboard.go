package main

import (
	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/dashboard"
)

func newDashboardCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Run the local web dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if port == 0 {
				port = cfg.Dashboard.Port
			}
			return dashboard.Start(cmd.Context(), dashboard.StartOpts{
				DB:   gormDB,
				Port: port,
				Out:  cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	return cmd
}
