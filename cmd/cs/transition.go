package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/audit"
	"github.com/zulandar/carscout/internal/lifecycle"
)

func newTransitionCmd() *cobra.Command {
	var (
		configPath string
		reasoning  string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "transition <id> <state>",
		Short: "Move a listing to a new lifecycle state",
		Long:  "Validates the transition against the lifecycle graph and records it in the audit trail.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid listing id %q", args[0])
			}
			return runTransition(cmd, configPath, uint(id), lifecycle.Status(args[1]), reasoning, actor)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().StringVar(&reasoning, "reason", "", "why this transition is happening")
	cmd.Flags().StringVar(&actor, "by", audit.TriggeredByUser, "who triggered it (system, user, claude)")
	return cmd
}

func runTransition(cmd *cobra.Command, configPath string, id uint, target lifecycle.Status, reasoning, actor string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	res, err := lifecycle.Transition(gormDB, id, target, lifecycle.Opts{
		TriggeredBy: actor,
		Reasoning:   reasoning,
	})
	if err != nil {
		var rejected *lifecycle.RejectionError
		if errors.As(err, &rejected) {
			// Expected outcome: report, don't stack-trace.
			fmt.Fprintln(cmd.OutOrStdout(), rejected.Error())
			return fmt.Errorf("transition rejected")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listing %d: %s → %s\n", res.ListingID, res.From, res.To)
	return nil
}
