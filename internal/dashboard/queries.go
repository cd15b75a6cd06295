package dashboard

import (
	"fmt"
	"time"

	"github.com/zulandar/carscout/internal/approval"
	"github.com/zulandar/carscout/internal/audit"
	"github.com/zulandar/carscout/internal/lifecycle"
	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

// SummaryData holds the front-page counts.
type SummaryData struct {
	ListingsByStatus map[string]int64 `json:"listings_by_status"`
	Approvals        approval.Stats   `json:"approvals"`
	ActiveListings   int64            `json:"active_listings"`
}

// Summary aggregates listing counts by status plus approval queue stats.
func Summary(db *gorm.DB) (*SummaryData, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := db.Model(&models.Listing{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("dashboard: listing summary: %w", err)
	}

	byStatus := make(map[string]int64, len(rows))
	var active int64
	for _, r := range rows {
		byStatus[r.Status] = r.Count
		if !lifecycle.Terminal(lifecycle.Status(r.Status)) {
			active += r.Count
		}
	}

	stats, err := approval.GetStats(db)
	if err != nil {
		return nil, err
	}

	return &SummaryData{
		ListingsByStatus: byStatus,
		Approvals:        stats,
		ActiveListings:   active,
	}, nil
}

// ListingRow holds listing data for the list view.
type ListingRow struct {
	ID             uint     `json:"id"`
	Source         string   `json:"source"`
	Year           *int     `json:"year"`
	Make           *string  `json:"make"`
	Model          *string  `json:"model"`
	AskingPrice    *float64 `json:"asking_price"`
	Status         string   `json:"status"`
	ReadinessScore int      `json:"readiness_score"`
	Score          *int     `json:"score"`
}

// ListingList returns listings matching the optional status and source
// filters, highest readiness first.
func ListingList(db *gorm.DB, status, source string) ([]ListingRow, error) {
	q := db.Model(&models.Listing{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if source != "" {
		q = q.Where("source = ?", source)
	}

	var listings []models.Listing
	if err := q.Order("readiness_score DESC, discovered_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("dashboard: list listings: %w", err)
	}

	rows := make([]ListingRow, len(listings))
	for i, l := range listings {
		rows[i] = ListingRow{
			ID:             l.ID,
			Source:         l.Source,
			Year:           l.Year,
			Make:           l.Make,
			Model:          l.Model,
			AskingPrice:    l.AskingPrice,
			Status:         l.Status,
			ReadinessScore: l.ReadinessScore,
			Score:          l.Score,
		}
	}
	return rows, nil
}

// ListingDetail holds full listing data for the detail view.
type ListingDetail struct {
	Listing     models.Listing        `json:"listing"`
	Cost        *models.CostBreakdown `json:"cost,omitempty"`
	Audit       []models.AuditEntry   `json:"audit"`
	AllowedNext []lifecycle.Status    `json:"allowed_next"`
}

// ListingDetailByID returns a listing with its conversation, latest cost
// snapshot, audit trail, and allowed next states.
func ListingDetailByID(db *gorm.DB, id uint) (*ListingDetail, error) {
	var listing models.Listing
	if err := db.Preload("Conversation", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sent_at ASC")
	}).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, fmt.Errorf("dashboard: listing %d: %w", id, err)
	}

	detail := &ListingDetail{
		Listing:     listing,
		AllowedNext: lifecycle.AllowedNext(lifecycle.Status(listing.Status)),
	}

	var breakdown models.CostBreakdown
	if err := db.Where("listing_id = ?", id).First(&breakdown).Error; err == nil {
		detail.Cost = &breakdown
	}

	entries, err := audit.ForListing(db, id)
	if err != nil {
		return nil, err
	}
	detail.Audit = entries

	return detail, nil
}

// ApprovalRow holds a pending approval for display.
type ApprovalRow struct {
	ID          uint       `json:"id"`
	ListingID   *uint      `json:"listing_id"`
	ActionType  string     `json:"action_type"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// ApprovalList returns the pending queue oldest-first.
func ApprovalList(db *gorm.DB) ([]ApprovalRow, error) {
	reqs, err := approval.ListPending(db, approval.Filters{})
	if err != nil {
		return nil, err
	}
	rows := make([]ApprovalRow, len(reqs))
	for i, r := range reqs {
		rows[i] = ApprovalRow{
			ID:          r.ID,
			ListingID:   r.ListingID,
			ActionType:  r.ActionType,
			Description: r.Description,
			CreatedAt:   r.CreatedAt,
			ExpiresAt:   r.ExpiresAt,
		}
	}
	return rows, nil
}

// AuditList returns recent audit entries across all listings.
func AuditList(db *gorm.DB, limit int) ([]models.AuditEntry, error) {
	return audit.Recent(db, limit)
}
