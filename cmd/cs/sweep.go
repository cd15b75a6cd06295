package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	var (
		configPath string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the approval expiry sweep",
		Long:  "Persists expiry for overdue pending approvals. With --once runs a single sweep; otherwise runs on the configured cron schedule until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			s, err := sweep.New(sweep.Opts{
				DB:       gormDB,
				CronExpr: cfg.Approval.SweepCron,
				Out:      cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}

			if once {
				n, err := s.RunOnce()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Expired %d approval request(s)\n", n)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sweeping on schedule %q\n", cfg.Approval.SweepCron)
			s.Run(cmd.Context())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().BoolVar(&once, "once", false, "run one sweep and exit")
	return cmd
}
