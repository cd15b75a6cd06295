package models

import "time"

// AnalysisResult stores an AI analysis verbatim. The engine extracts only
// Score and RedFlags for its own use; everything else stays opaque in Raw.
type AnalysisResult struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	ListingID uint `gorm:"index"`
	Score     *int
	RedFlags  StringList `gorm:"type:text"`
	Summary   string     `gorm:"type:text"`
	Raw       string     `gorm:"type:text"`
	CreatedAt time.Time
}
