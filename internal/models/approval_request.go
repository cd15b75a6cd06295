package models

import "time"

// ApprovalRequest is a proposed automated action held for a human decision.
// Rows are kept forever for audit; status only ever leaves pending once.
type ApprovalRequest struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ListingID   *uint  `gorm:"index"`
	ActionType  string `gorm:"size:48;not null;index"`
	Description string `gorm:"type:text"`
	Reasoning   string `gorm:"type:text"`

	// Payload is the opaque data the caller needs to perform the action if
	// approved. The queue stores and returns it, never interprets it.
	Payload string `gorm:"type:text"`

	CheckpointType *string  `gorm:"size:48"`
	ThresholdValue *float64

	Status          string `gorm:"size:16;default:pending;index"` // pending, approved, rejected, expired
	CreatedAt       time.Time
	ExpiresAt       *time.Time
	ResolvedBy      *string `gorm:"size:32"`
	ResolvedAt      *time.Time
	ResolutionNotes string `gorm:"type:text"`
}
