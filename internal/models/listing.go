package models

import "time"

// Listing is the core purchase-candidate entity in Carscout.
type Listing struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Source   string `gorm:"size:32;not null;uniqueIndex:idx_source_listing"`
	SourceID string `gorm:"size:128;not null;uniqueIndex:idx_source_listing"`

	Year        *int
	Make        *string `gorm:"size:64"`
	Model       *string `gorm:"size:64"`
	Trim        *string `gorm:"size:64"`
	Mileage     *int
	AskingPrice *float64
	SellerType  *string `gorm:"size:16"` // dealer, private
	City        *string `gorm:"size:128"`
	Region      *string `gorm:"size:128"`
	URL         *string `gorm:"size:512"`

	Status     string `gorm:"size:24;default:discovered;index"`
	InfoStatus string `gorm:"size:24"`

	NegotiatedPrice *float64
	PriceNegotiated bool `gorm:"default:false"`

	Score          *int
	RedFlags       StringList `gorm:"type:text"`
	ReadinessScore int        `gorm:"default:0"`

	CarfaxReceived  bool `gorm:"default:false"`
	CarfaxIncidents *int

	DiscoveredAt         time.Time
	AnalyzedAt           *time.Time
	ContactedAt          *time.Time
	LastSellerResponseAt *time.Time
	LastOurResponseAt    *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Conversation []ConversationMessage `gorm:"foreignKey:ListingID"`
}
