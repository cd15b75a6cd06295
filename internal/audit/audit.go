// Package audit provides the append-only mutation trail. There is
// deliberately no update or delete in this package's API.
package audit

import (
	"fmt"
	"time"

	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

// Well-known action tags. Action is free-form; these are the ones the engine
// itself writes.
const (
	ActionStateChange      = "state_change"
	ActionApprovalQueued   = "approval_queued"
	ActionApprovalApproved = "approval_approved"
	ActionApprovalRejected = "approval_rejected"
	ActionApprovalExpired  = "approval_expired"
	ActionListingIngested  = "listing_ingested"
	ActionAnalysisAttached = "analysis_attached"
	ActionMessageRecorded  = "message_recorded"
)

// Actor values for TriggeredBy.
const (
	TriggeredBySystem = "system"
	TriggeredByUser   = "user"
	TriggeredByClaude = "claude"
)

// Entry holds the fields of an audit record to append.
type Entry struct {
	ListingID   *uint
	Action      string
	FromState   *string
	ToState     *string
	Description string
	Reasoning   string
	Context     models.Context
	TriggeredBy string
}

// Append inserts one audit entry and returns its id. It only fails on
// storage unavailability.
func Append(db *gorm.DB, e Entry) (uint, error) {
	if e.Action == "" {
		return 0, fmt.Errorf("audit: action is required")
	}
	if e.TriggeredBy == "" {
		e.TriggeredBy = TriggeredBySystem
	}

	row := models.AuditEntry{
		ListingID:   e.ListingID,
		Action:      e.Action,
		FromState:   e.FromState,
		ToState:     e.ToState,
		Description: e.Description,
		Reasoning:   e.Reasoning,
		Context:     e.Context,
		TriggeredBy: e.TriggeredBy,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("audit: append: %w", err)
	}
	return row.ID, nil
}

// ForListing returns a listing's entries newest-first. The result is a
// projection, not a snapshot; a later call may see more entries.
func ForListing(db *gorm.DB, listingID uint) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	if err := db.Where("listing_id = ?", listingID).
		Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("audit: query listing %d: %w", listingID, err)
	}
	return entries, nil
}

// Recent returns the newest entries across all listings, for the dashboard.
func Recent(db *gorm.DB, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.AuditEntry
	if err := db.Order("created_at DESC, id DESC").Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("audit: recent: %w", err)
	}
	return entries, nil
}
