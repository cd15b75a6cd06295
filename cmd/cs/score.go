package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/readiness"
)

func newScoreCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "score <id>",
		Short: "Recompute a listing's readiness score",
		Long:  "Derives the score from current signals and caches it on the listing for display.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid listing id %q", args[0])
			}
			return runScore(cmd, configPath, uint(id))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	return cmd
}

func runScore(cmd *cobra.Command, configPath string, id uint) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	score, err := readiness.Evaluate(gormDB, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listing %d readiness: %d/100\n", id, score)
	return nil
}
