// Package approval implements the human-approval queue. Queued actions cross
// an automation threshold and wait for a person to approve, reject, or let
// them expire; each request resolves at most once.
package approval

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/carscout/internal/audit"
	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

// Request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

// NotFoundError reports an unknown approval id.
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("approval: request not found: %d", e.ID)
}

// AlreadyResolvedError reports a resolution attempt on a request that has
// already left pending. Exactly one of approve/reject ever succeeds; the
// loser of a race sees this error.
type AlreadyResolvedError struct {
	ID     uint
	Status string
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("approval: request %d already resolved (%s)", e.ID, e.Status)
}

// ExpiredError reports a resolution attempt on a request whose deadline has
// passed. Observing it persists the expiry.
type ExpiredError struct {
	ID        uint
	ExpiresAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("approval: request %d expired at %s", e.ID, e.ExpiresAt.Format(time.RFC3339))
}

// EnqueueOpts holds parameters for queueing a proposed action.
type EnqueueOpts struct {
	ListingID      *uint
	ActionType     string
	Description    string
	Reasoning      string
	Payload        string // opaque; returned verbatim on approval
	CheckpointType string
	ThresholdValue *float64
	ExpiresAt      *time.Time
	TriggeredBy    string
}

// Enqueue creates a pending request and its approval_queued audit entry in
// one transaction; neither is ever observable without the other.
func Enqueue(db *gorm.DB, opts EnqueueOpts) (*models.ApprovalRequest, error) {
	if opts.ActionType == "" {
		return nil, fmt.Errorf("approval: action type is required")
	}
	if opts.Description == "" {
		return nil, fmt.Errorf("approval: description is required")
	}

	req := models.ApprovalRequest{
		ListingID:      opts.ListingID,
		ActionType:     opts.ActionType,
		Description:    opts.Description,
		Reasoning:      opts.Reasoning,
		Payload:        opts.Payload,
		ThresholdValue: opts.ThresholdValue,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
		ExpiresAt:      opts.ExpiresAt,
	}
	if opts.CheckpointType != "" {
		req.CheckpointType = &opts.CheckpointType
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return fmt.Errorf("approval: enqueue: %w", err)
		}
		_, err := audit.Append(tx, audit.Entry{
			ListingID:   opts.ListingID,
			Action:      audit.ActionApprovalQueued,
			Description: fmt.Sprintf("queued %s for approval: %s", opts.ActionType, opts.Description),
			Reasoning:   opts.Reasoning,
			Context:     models.Context{"approval_id": req.ID, "action_type": opts.ActionType},
			TriggeredBy: opts.TriggeredBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Filters narrows ListPending.
type Filters struct {
	ListingID  *uint
	ActionType string
	Limit      int
}

// ListPending returns pending, non-expired requests oldest-first. Rows whose
// deadline has lazily passed are excluded without being mutated.
func ListPending(db *gorm.DB, f Filters) ([]models.ApprovalRequest, error) {
	q := db.Where("status = ?", StatusPending).
		Where("expires_at IS NULL OR expires_at > ?", time.Now())
	if f.ListingID != nil {
		q = q.Where("listing_id = ?", *f.ListingID)
	}
	if f.ActionType != "" {
		q = q.Where("action_type = ?", f.ActionType)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var reqs []models.ApprovalRequest
	if err := q.Order("created_at ASC, id ASC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("approval: list pending: %w", err)
	}
	return reqs, nil
}

// Approve resolves a pending request and returns its stored payload so the
// caller can execute the proposed action. The queue never executes payloads
// itself; that keeps approval failures and execution failures distinguishable.
func Approve(db *gorm.DB, id uint, notes string) (string, error) {
	req, err := resolve(db, id, StatusApproved, audit.ActionApprovalApproved, notes)
	if err != nil {
		return "", err
	}
	return req.Payload, nil
}

// Reject resolves a pending request without releasing its payload.
func Reject(db *gorm.DB, id uint, notes string) error {
	_, err := resolve(db, id, StatusRejected, audit.ActionApprovalRejected, notes)
	return err
}

// resolve applies the shared approve/reject path. The status check and write
// are a single conditional UPDATE on status = pending, so a concurrent
// resolver loses with AlreadyResolvedError.
func resolve(db *gorm.DB, id uint, newStatus, auditAction, notes string) (*models.ApprovalRequest, error) {
	var req models.ApprovalRequest
	if err := db.Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("approval: load request %d: %w", id, err)
	}

	if req.Status != StatusPending {
		return nil, &AlreadyResolvedError{ID: id, Status: req.Status}
	}

	now := time.Now()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		if err := markExpired(db, &req); err != nil {
			return nil, err
		}
		return nil, &ExpiredError{ID: id, ExpiresAt: *req.ExpiresAt}
	}

	resolvedBy := audit.TriggeredByUser
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ApprovalRequest{}).
			Where("id = ? AND status = ?", id, StatusPending).
			Updates(map[string]interface{}{
				"status":           newStatus,
				"resolved_by":      resolvedBy,
				"resolved_at":      now,
				"resolution_notes": notes,
			})
		if res.Error != nil {
			return fmt.Errorf("approval: resolve request %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			// A concurrent caller resolved it first.
			return &AlreadyResolvedError{ID: id, Status: "unknown"}
		}
		_, err := audit.Append(tx, audit.Entry{
			ListingID:   req.ListingID,
			Action:      auditAction,
			Description: fmt.Sprintf("%s %s request %d", newStatus, req.ActionType, id),
			Reasoning:   notes,
			Context:     models.Context{"approval_id": id, "action_type": req.ActionType},
			TriggeredBy: audit.TriggeredByUser,
		})
		return err
	})
	if err != nil {
		var resolved *AlreadyResolvedError
		if errors.As(err, &resolved) {
			// Re-read so the error carries the winner's status.
			var fresh models.ApprovalRequest
			if db.Where("id = ?", id).First(&fresh).Error == nil {
				resolved.Status = fresh.Status
			}
			return nil, resolved
		}
		return nil, err
	}

	req.Status = newStatus
	req.ResolvedBy = &resolvedBy
	req.ResolvedAt = &now
	req.ResolutionNotes = notes
	return &req, nil
}

// markExpired persists a lazy expiry observed at resolution time. The
// conditional UPDATE tolerates racing sweeps and resolvers.
func markExpired(db *gorm.DB, req *models.ApprovalRequest) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ApprovalRequest{}).
			Where("id = ? AND status = ?", req.ID, StatusPending).
			Update("status", StatusExpired)
		if res.Error != nil {
			return fmt.Errorf("approval: expire request %d: %w", req.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		_, err := audit.Append(tx, audit.Entry{
			ListingID:   req.ListingID,
			Action:      audit.ActionApprovalExpired,
			Description: fmt.Sprintf("%s request %d expired unresolved", req.ActionType, req.ID),
			Context:     models.Context{"approval_id": req.ID, "action_type": req.ActionType},
			TriggeredBy: audit.TriggeredBySystem,
		})
		return err
	})
}

// ExpireOverdue persists the expiry of every pending request whose deadline
// has passed and returns how many rows it updated. Lazy expiry already keeps
// the observable contract without this; it exists so a periodic sweep can
// tidy the table.
func ExpireOverdue(db *gorm.DB) (int64, error) {
	var overdue []models.ApprovalRequest
	if err := db.Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?",
		StatusPending, time.Now()).Find(&overdue).Error; err != nil {
		return 0, fmt.Errorf("approval: find overdue: %w", err)
	}

	var n int64
	for i := range overdue {
		if err := markExpired(db, &overdue[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Stats holds aggregate queue counts. Pending counts only non-expired rows;
// Expired includes pending rows whose deadline has lazily passed.
type Stats struct {
	Pending  int64
	Approved int64
	Rejected int64
	Expired  int64
}

// GetStats returns aggregate counts by effective status.
func GetStats(db *gorm.DB) (Stats, error) {
	var s Stats
	now := time.Now()

	counts := []struct {
		dest *int64
		cond *gorm.DB
	}{
		{&s.Pending, db.Model(&models.ApprovalRequest{}).
			Where("status = ?", StatusPending).
			Where("expires_at IS NULL OR expires_at > ?", now)},
		{&s.Approved, db.Model(&models.ApprovalRequest{}).
			Where("status = ?", StatusApproved)},
		{&s.Rejected, db.Model(&models.ApprovalRequest{}).
			Where("status = ?", StatusRejected)},
		{&s.Expired, db.Model(&models.ApprovalRequest{}).
			Where("status = ? OR (status = ? AND expires_at IS NOT NULL AND expires_at <= ?)",
				StatusExpired, StatusPending, now)},
	}
	for _, c := range counts {
		if err := c.cond.Count(c.dest).Error; err != nil {
			return Stats{}, fmt.Errorf("approval: stats: %w", err)
		}
	}
	return s, nil
}
