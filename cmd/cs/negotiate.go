package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/negotiate"
)

func newNegotiateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "negotiate",
		Short: "Negotiation price calculators",
	}

	cmd.AddCommand(newNegotiateBoundsCmd())
	cmd.AddCommand(newNegotiateCounterCmd())
	cmd.AddCommand(newNegotiateAcceptCmd())
	return cmd
}

func newNegotiateBoundsCmd() *cobra.Command {
	var (
		configPath    string
		listedPrice   float64
		marketAverage float64
	)

	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Compute target and walk-away prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var market *float64
			if cmd.Flags().Changed("market") {
				market = &marketAverage
			}
			return runNegotiateBounds(cmd, configPath, listedPrice, market)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().Float64Var(&listedPrice, "listed", 0, "listed price (required)")
	cmd.Flags().Float64Var(&marketAverage, "market", 0, "market average price")
	cmd.MarkFlagRequired("listed")
	return cmd
}

func runNegotiateBounds(cmd *cobra.Command, configPath string, listed float64, market *float64) error {
	cfg, _, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	b := negotiate.InitialBounds(listed, cfg.Budget, market, cfg.Negotiation)
	fmt.Fprintf(cmd.OutOrStdout(), "Target: $%.0f\nWalk-away: $%.0f\n", b.TargetPrice, b.WalkAwayPrice)
	return nil
}

func newNegotiateCounterCmd() *cobra.Command {
	var (
		configPath string
		ourLast    float64
		theirs     float64
		exchanges  int
		walkAway   float64
	)

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Compute the next counter-offer",
		RunE: func(cmd *cobra.Command, args []string) error {
			next := negotiate.NextCounterOffer(ourLast, theirs, exchanges, walkAway)
			fmt.Fprintf(cmd.OutOrStdout(), "Next offer: $%.0f\n", next)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().Float64Var(&ourLast, "ours", 0, "our last offer (required)")
	cmd.Flags().Float64Var(&theirs, "theirs", 0, "their current offer (required)")
	cmd.Flags().IntVar(&exchanges, "exchanges", 0, "how many exchanges so far")
	cmd.Flags().Float64Var(&walkAway, "walk-away", 0, "walk-away price (required)")
	cmd.MarkFlagRequired("ours")
	cmd.MarkFlagRequired("theirs")
	cmd.MarkFlagRequired("walk-away")
	return cmd
}

func newNegotiateAcceptCmd() *cobra.Command {
	var (
		configPath string
		offer      float64
		target     float64
		walkAway   float64
		exchanges  int
	)

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Decide whether to accept an offer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNegotiateAccept(cmd, configPath, offer, target, walkAway, exchanges)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().Float64Var(&offer, "offer", 0, "their current offer (required)")
	cmd.Flags().Float64Var(&target, "target", 0, "target price (required)")
	cmd.Flags().Float64Var(&walkAway, "walk-away", 0, "walk-away price (required)")
	cmd.Flags().IntVar(&exchanges, "exchanges", 0, "how many exchanges so far")
	cmd.MarkFlagRequired("offer")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("walk-away")
	return cmd
}

func runNegotiateAccept(cmd *cobra.Command, configPath string, offer, target, walkAway float64, exchanges int) error {
	cfg, _, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	d := negotiate.ShouldAccept(offer, target, walkAway, exchanges, cfg.Negotiation)
	verdict := "CONTINUE"
	if d.Accept {
		verdict = "ACCEPT"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verdict, d.Reason)
	return nil
}
