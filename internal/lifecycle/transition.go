package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/carscout/internal/audit"
	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

// Opts carries attribution for a transition.
type Opts struct {
	TriggeredBy string // audit.TriggeredBy* constant; defaults to system
	Reasoning   string
	Context     models.Context
}

// Result describes an applied transition.
type Result struct {
	ListingID uint
	From      Status
	To        Status
}

// Transition validates and applies a lifecycle transition. The status check
// and write are a single conditional UPDATE keyed on the observed status, so
// of two concurrent attempts on the same listing exactly one wins; the loser
// re-reads and gets a RejectionError carrying the post-transition state.
//
// On success the new status is written, analyzed_at/contacted_at are stamped
// on first arrival (set only if null), and one audit entry is appended in the
// same transaction. On any failure nothing is mutated.
func Transition(db *gorm.DB, listingID uint, target Status, opts Opts) (*Result, error) {
	if opts.TriggeredBy == "" {
		opts.TriggeredBy = audit.TriggeredBySystem
	}

	for {
		var listing models.Listing
		if err := db.Select("id, status, analyzed_at, contacted_at").
			Where("id = ?", listingID).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{ListingID: listingID}
			}
			return nil, fmt.Errorf("lifecycle: load listing %d: %w", listingID, err)
		}

		current := Status(listing.Status)
		if !CanTransition(current, target) {
			return nil, &RejectionError{
				ListingID: listingID,
				From:      current,
				To:        target,
				Allowed:   AllowedNext(current),
			}
		}

		updates := map[string]interface{}{"status": string(target)}
		now := time.Now()
		if target == StatusAnalyzed && listing.AnalyzedAt == nil {
			updates["analyzed_at"] = now
		}
		if target == StatusContacted && listing.ContactedAt == nil {
			updates["contacted_at"] = now
		}

		var applied bool
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Listing{}).
				Where("id = ? AND status = ?", listingID, string(current)).
				Updates(updates)
			if res.Error != nil {
				return fmt.Errorf("lifecycle: update listing %d: %w", listingID, res.Error)
			}
			if res.RowsAffected == 0 {
				// Lost a race; retry against the fresh status.
				return nil
			}
			applied = true

			from := string(current)
			to := string(target)
			_, err := audit.Append(tx, audit.Entry{
				ListingID:   &listingID,
				Action:      audit.ActionStateChange,
				FromState:   &from,
				ToState:     &to,
				Description: fmt.Sprintf("listing %d moved from %s to %s", listingID, from, to),
				Reasoning:   opts.Reasoning,
				Context:     opts.Context,
				TriggeredBy: opts.TriggeredBy,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		if applied {
			return &Result{ListingID: listingID, From: current, To: target}, nil
		}
	}
}
