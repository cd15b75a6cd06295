package models

import "time"

// AuditEntry is an append-only record of a mutation. Rows are never updated
// or deleted; the audit package exposes no API to do so.
type AuditEntry struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ListingID   *uint  `gorm:"index"`
	Action      string `gorm:"size:48;not null;index"`
	FromState   *string `gorm:"size:24"`
	ToState     *string `gorm:"size:24"`
	Description string  `gorm:"type:text"`
	Reasoning   string  `gorm:"type:text"`
	Context     Context `gorm:"type:text"`
	TriggeredBy string  `gorm:"size:16;default:system"` // system, user, claude
	CreatedAt   time.Time
}
