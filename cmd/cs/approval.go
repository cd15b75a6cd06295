package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/carscout/internal/approval"
	"github.com/zulandar/carscout/internal/notify"
)

func newApprovalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approval",
		Short: "Approval queue commands",
	}

	cmd.AddCommand(newApprovalQueueCmd())
	cmd.AddCommand(newApprovalPendingCmd())
	cmd.AddCommand(newApprovalApproveCmd())
	cmd.AddCommand(newApprovalRejectCmd())
	cmd.AddCommand(newApprovalStatsCmd())
	return cmd
}

func newApprovalQueueCmd() *cobra.Command {
	var (
		configPath  string
		listingID   uint
		actionType  string
		description string
		reasoning   string
		payload     string
		checkpoint  string
		threshold   float64
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Queue a proposed action for human approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := approval.EnqueueOpts{
				ActionType:     actionType,
				Description:    description,
				Reasoning:      reasoning,
				Payload:        payload,
				CheckpointType: checkpoint,
			}
			if cmd.Flags().Changed("listing") {
				opts.ListingID = &listingID
			}
			if cmd.Flags().Changed("threshold") {
				opts.ThresholdValue = &threshold
			}
			return runApprovalQueue(cmd, configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().UintVar(&listingID, "listing", 0, "related listing id")
	cmd.Flags().StringVar(&actionType, "action", "", "action type tag (required)")
	cmd.Flags().StringVar(&description, "description", "", "human-readable description (required)")
	cmd.Flags().StringVar(&reasoning, "reason", "", "why automation proposed this")
	cmd.Flags().StringVar(&payload, "payload", "", "opaque payload released on approval")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "which policy checkpoint triggered the hold")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "threshold value that was crossed")
	cmd.MarkFlagRequired("action")
	cmd.MarkFlagRequired("description")
	return cmd
}

func runApprovalQueue(cmd *cobra.Command, configPath string, opts approval.EnqueueOpts) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	opts.ExpiresAt = ttlExpiry(cfg.Approval.TTLHours)

	req, err := approval.Enqueue(gormDB, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Queued request %d (%s)\n", req.ID, req.ActionType)
	if req.ExpiresAt != nil {
		fmt.Fprintf(out, "Expires: %s\n", req.ExpiresAt.Format("2006-01-02 15:04"))
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}
	defer notifier.Close()
	event := notify.Event{
		Title:    fmt.Sprintf("Approval needed: %s", req.ActionType),
		Body:     req.Description,
		Severity: notify.SeverityWarning,
		Fields:   []notify.Field{{Name: "Request", Value: strconv.FormatUint(uint64(req.ID), 10)}},
	}
	if err := notifier.Send(cmd.Context(), event); err != nil {
		// Notification failure must not undo a successful enqueue.
		fmt.Fprintf(out, "warning: notify failed: %v\n", err)
	}
	return nil
}

func newApprovalPendingCmd() *cobra.Command {
	var (
		configPath string
		actionType string
		listingID  uint
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending approval requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := approval.Filters{ActionType: actionType, Limit: limit}
			if cmd.Flags().Changed("listing") {
				f.ListingID = &listingID
			}
			return runApprovalPending(cmd, configPath, f)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().StringVar(&actionType, "action", "", "filter by action type")
	cmd.Flags().UintVar(&listingID, "listing", 0, "filter by listing id")
	cmd.Flags().IntVar(&limit, "limit", 0, "max rows")
	return cmd
}

func runApprovalPending(cmd *cobra.Command, configPath string, f approval.Filters) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	reqs, err := approval.ListPending(gormDB, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(reqs) == 0 {
		fmt.Fprintln(out, "No pending approvals.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLISTING\tACTION\tDESCRIPTION\tEXPIRES")
	for _, r := range reqs {
		listing := "-"
		if r.ListingID != nil {
			listing = strconv.FormatUint(uint64(*r.ListingID), 10)
		}
		expires := "never"
		if r.ExpiresAt != nil {
			expires = r.ExpiresAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, listing, r.ActionType, r.Description, expires)
	}
	return w.Flush()
}

func newApprovalApproveCmd() *cobra.Command {
	var (
		configPath string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending request and print its payload",
		Long:  "Approval releases the stored payload for the calling automation to execute; the queue itself never executes anything.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid approval id %q", args[0])
			}
			return runApprovalApprove(cmd, configPath, uint(id), notes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().StringVar(&notes, "notes", "", "resolution notes")
	return cmd
}

func runApprovalApprove(cmd *cobra.Command, configPath string, id uint, notes string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	payload, err := approval.Approve(gormDB, id, notes)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Approved request %d\n", id)
	if payload != "" {
		fmt.Fprintf(out, "Payload: %s\n", payload)
	}
	return nil
}

func newApprovalRejectCmd() *cobra.Command {
	var (
		configPath string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid approval id %q", args[0])
			}
			return runApprovalReject(cmd, configPath, uint(id), notes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	cmd.Flags().StringVar(&notes, "notes", "", "resolution notes")
	return cmd
}

func runApprovalReject(cmd *cobra.Command, configPath string, id uint, notes string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := approval.Reject(gormDB, id, notes); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rejected request %d\n", id)
	return nil
}

func newApprovalStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show approval queue counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApprovalStats(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carscout.yaml", "path to Carscout config file")
	return cmd
}

func runApprovalStats(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	stats, err := approval.GetStats(gormDB)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PENDING\tAPPROVED\tREJECTED\tEXPIRED")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", stats.Pending, stats.Approved, stats.Rejected, stats.Expired)
	return w.Flush()
}

// ttlExpiry converts a TTL in hours to an absolute deadline, nil for 0.
func ttlExpiry(hours int) *time.Time {
	if hours <= 0 {
		return nil
	}
	t := time.Now().Add(time.Duration(hours) * time.Hour)
	return &t
}
