package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/audit"
	"github.com/zulandar/carscout/internal/ingest"
	"github.com/zulandar/carscout/internal/lifecycle"
	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

func newListingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Listing management commands",
	}

	cmd.AddCommand(newListingListCmd())
	cmd.AddCommand(newListingShowCmd())
	cmd.AddCommand(newListingIngestCmd())
	return cmd
}

func newListingListCmd() *cobra.Command {
	var (
		configPath string
		status     string
		source     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List listings",
		Long:  "Lists listings with optional filters. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListingList(cmd, configPath, status, source)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&source, "source", "", "filter by source")
	return cmd
}

func runListingList(cmd *cobra.Command, configPath, status, source string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	q := gormDB.Model(&models.Listing{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if source != "" {
		q = q.Where("source = ?", source)
	}

	var listings []models.Listing
	if err := q.Order("readiness_score DESC, discovered_at DESC").Find(&listings).Error; err != nil {
		return fmt.Errorf("list listings: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(listings) == 0 {
		fmt.Fprintln(out, "No listings found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tPRICE\tSTATUS\tREADY\tSCORE")
	for _, l := range listings {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			l.ID, vehicleLabel(l), priceLabel(l.AskingPrice), l.Status,
			l.ReadinessScore, intLabel(l.Score))
	}
	return w.Flush()
}

func vehicleLabel(l models.Listing) string {
	parts := []string{}
	if l.Year != nil {
		parts = append(parts, strconv.Itoa(*l.Year))
	}
	if l.Make != nil {
		parts = append(parts, *l.Make)
	}
	if l.Model != nil {
		parts = append(parts, *l.Model)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s/%s", l.Source, l.SourceID)
	}
	return strings.Join(parts, " ")
}

func priceLabel(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("$%.0f", *p)
}

func intLabel(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func newListingShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a listing with its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid listing id %q", args[0])
			}
			return runListingShow(cmd, configPath, uint(id))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	return cmd
}

func runListingShow(cmd *cobra.Command, configPath string, id uint) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	var l models.Listing
	if err := gormDB.Preload("Conversation", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sent_at ASC")
	}).Where("id = ?", id).First(&l).Error; err != nil {
		return fmt.Errorf("listing not found: %d", id)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Listing %d: %s\n", l.ID, vehicleLabel(l))
	fmt.Fprintf(out, "Source: %s/%s\n", l.Source, l.SourceID)
	fmt.Fprintf(out, "Status: %s (allowed next: %s)\n", l.Status,
		statusList(lifecycle.AllowedNext(lifecycle.Status(l.Status))))
	fmt.Fprintf(out, "Asking: %s", priceLabel(l.AskingPrice))
	if l.NegotiatedPrice != nil {
		fmt.Fprintf(out, "  Negotiated: %s", priceLabel(l.NegotiatedPrice))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Readiness: %d/100\n", l.ReadinessScore)
	if len(l.RedFlags) > 0 {
		fmt.Fprintf(out, "Red flags: %s\n", strings.Join(l.RedFlags, "; "))
	}
	if len(l.Conversation) > 0 {
		fmt.Fprintf(out, "Conversation: %d message(s), last seller reply %s\n",
			len(l.Conversation), timeLabel(l.LastSellerResponseAt))
	}

	entries, err := audit.ForListing(gormDB, id)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Fprintln(out, "\nAudit trail (newest first):")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Action, e.TriggeredBy, e.Description)
		}
		w.Flush()
	}
	return nil
}

func statusList(states []lifecycle.Status) string {
	if len(states) == 0 {
		return "none"
	}
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func timeLabel(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format("2006-01-02 15:04")
}

func newListingIngestCmd() *cobra.Command {
	var (
		configPath string
		source     string
		sourceID   string
		year       int
		makeName   string
		model      string
		trim       string
		mileage    int
		price      float64
		sellerType string
		city       string
		region     string
		url        string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest or enrich a listing",
		Long:  "Creates a listing deduplicated on source + source id, or fills missing fields on an existing one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := ingest.Bundle{Source: source, SourceID: sourceID}
			if cmd.Flags().Changed("year") {
				b.Year = &year
			}
			if makeName != "" {
				b.Make = &makeName
			}
			if model != "" {
				b.Model = &model
			}
			if trim != "" {
				b.Trim = &trim
			}
			if cmd.Flags().Changed("mileage") {
				b.Mileage = &mileage
			}
			if cmd.Flags().Changed("price") {
				b.AskingPrice = &price
			}
			if sellerType != "" {
				b.SellerType = &sellerType
			}
			if city != "" {
				b.City = &city
			}
			if region != "" {
				b.Region = &region
			}
			if url != "" {
				b.URL = &url
			}
			return runListingIngest(cmd, configPath, b)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().StringVar(&source, "source", "", "listing source (required)")
	cmd.Flags().StringVar(&sourceID, "source-id", "", "source-native listing id (required)")
	cmd.Flags().IntVar(&year, "year", 0, "model year")
	cmd.Flags().StringVar(&makeName, "make", "", "vehicle make")
	cmd.Flags().StringVar(&model, "model", "", "vehicle model")
	cmd.Flags().StringVar(&trim, "trim", "", "trim level")
	cmd.Flags().IntVar(&mileage, "mileage", 0, "odometer reading")
	cmd.Flags().Float64Var(&price, "price", 0, "asking price")
	cmd.Flags().StringVar(&sellerType, "seller", "", "seller type (dealer, private)")
	cmd.Flags().StringVar(&city, "city", "", "city")
	cmd.Flags().StringVar(&region, "region", "", "region")
	cmd.Flags().StringVar(&url, "url", "", "listing URL")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("source-id")
	return cmd
}

func runListingIngest(cmd *cobra.Command, configPath string, b ingest.Bundle) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	l, err := ingest.Upsert(gormDB, b)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listing %d (%s) is %s\n", l.ID, vehicleLabel(*l), l.Status)
	return nil
}
