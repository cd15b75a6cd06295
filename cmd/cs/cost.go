package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/cost"
	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

func newCostCmd() *cobra.Command {
	var (
		configPath     string
		noRegistration bool
		transferPlates bool
	)

	cmd := &cobra.Command{
		Use:   "cost <id>",
		Short: "Compute and store a listing's out-the-door cost",
		Long:  "Recomputes the full cost breakdown from current prices and replaces the stored snapshot.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid listing id %q", args[0])
			}
			return runCost(cmd, configPath, uint(id), !noRegistration, transferPlates)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().BoolVar(&noRegistration, "no-registration", false, "exclude registration costs")
	cmd.Flags().BoolVar(&transferPlates, "transfer-plates", false, "transfer existing plates instead of buying new")
	return cmd
}

func runCost(cmd *cobra.Command, configPath string, id uint, includeRegistration, transferPlates bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	var listing models.Listing
	if err := gormDB.Where("id = ?", id).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("listing not found: %d", id)
		}
		return fmt.Errorf("load listing %d: %w", id, err)
	}
	if listing.AskingPrice == nil {
		return fmt.Errorf("listing %d has no asking price yet", id)
	}

	sellerType := "private"
	if listing.SellerType != nil {
		sellerType = *listing.SellerType
	}

	b := cost.Compute(cost.Inputs{
		AskingPrice:         *listing.AskingPrice,
		NegotiatedPrice:     listing.NegotiatedPrice,
		SellerType:          sellerType,
		IncludeRegistration: includeRegistration,
		TransferPlates:      transferPlates,
		Budget:              cfg.Budget,
		Fees:                cfg.Fees,
	})
	if err := cost.Save(gormDB, id, b); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Effective price\t$%.0f\n", b.EffectivePrice)
	names := make([]string, 0, len(b.Fees))
	for name := range b.Fees {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "Fee: %s\t$%.0f\n", name, b.Fees[name])
	}
	fmt.Fprintf(w, "Tax (%.0f%%)\t$%.0f\n", b.TaxRate*100, b.TaxAmount)
	if b.RegistrationCost > 0 {
		fmt.Fprintf(w, "Registration\t$%.0f\n", b.RegistrationCost)
	}
	fmt.Fprintf(w, "Total\t$%.0f\n", b.TotalCost)
	fmt.Fprintf(w, "Budget\t$%.0f\n", b.Budget)
	fmt.Fprintf(w, "Remaining\t$%.0f\n", b.Remaining)
	w.Flush()

	if b.WithinBudget {
		fmt.Fprintln(out, "Within budget.")
	} else {
		fmt.Fprintln(out, "Over budget.")
	}
	return nil
}
