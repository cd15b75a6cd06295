package models

import "time"

// ConversationMessage is one message in a listing's seller conversation.
type ConversationMessage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ListingID uint   `gorm:"index"`
	Direction string `gorm:"size:8;not null"`  // inbound, outbound
	Channel   string `gorm:"size:16;not null"` // email, sms
	Subject   string `gorm:"size:256"`
	Body      string `gorm:"type:text"`
	SentAt    time.Time
	CreatedAt time.Time
}
