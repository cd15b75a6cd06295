// Package ingest is the boundary where collaborator output enters the
// engine: scraped listing bundles, AI analysis results, and inbound or
// outbound seller messages.
package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/carscout/internal/audit"
	"github.com/zulandar/carscout/internal/lifecycle"
	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

// Bundle is a new-or-updated listing attribute set from the ingest
// collaborator. Nil fields are "not supplied", never "clear this".
type Bundle struct {
	Source   string
	SourceID string

	Year        *int
	Make        *string
	Model       *string
	Trim        *string
	Mileage     *int
	AskingPrice *float64
	SellerType  *string
	City        *string
	Region      *string
	URL         *string
}

// Upsert deduplicates on (source, source id). New listings start discovered
// with discovered_at stamped; existing listings merge with fill-null-only
// semantics, so enrichment never erases known attributes.
func Upsert(db *gorm.DB, b Bundle) (*models.Listing, error) {
	if b.Source == "" || b.SourceID == "" {
		return nil, fmt.Errorf("ingest: source and source id are required")
	}

	var listing models.Listing
	err := db.Where("source = ? AND source_id = ?", b.Source, b.SourceID).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return create(db, b)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: look up %s/%s: %w", b.Source, b.SourceID, err)
	}
	return merge(db, &listing, b)
}

func create(db *gorm.DB, b Bundle) (*models.Listing, error) {
	listing := models.Listing{
		Source:       b.Source,
		SourceID:     b.SourceID,
		Year:         b.Year,
		Make:         b.Make,
		Model:        b.Model,
		Trim:         b.Trim,
		Mileage:      b.Mileage,
		AskingPrice:  b.AskingPrice,
		SellerType:   b.SellerType,
		City:         b.City,
		Region:       b.Region,
		URL:          b.URL,
		Status:       string(lifecycle.StatusDiscovered),
		DiscoveredAt: time.Now(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&listing).Error; err != nil {
			return fmt.Errorf("ingest: create %s/%s: %w", b.Source, b.SourceID, err)
		}
		_, err := audit.Append(tx, audit.Entry{
			ListingID:   &listing.ID,
			Action:      audit.ActionListingIngested,
			Description: fmt.Sprintf("discovered listing %s/%s", b.Source, b.SourceID),
			TriggeredBy: audit.TriggeredBySystem,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func merge(db *gorm.DB, listing *models.Listing, b Bundle) (*models.Listing, error) {
	updates := map[string]interface{}{}
	if listing.Year == nil && b.Year != nil {
		updates["year"] = *b.Year
	}
	if listing.Make == nil && b.Make != nil {
		updates["make"] = *b.Make
	}
	if listing.Model == nil && b.Model != nil {
		updates["model"] = *b.Model
	}
	if listing.Trim == nil && b.Trim != nil {
		updates["trim"] = *b.Trim
	}
	if listing.Mileage == nil && b.Mileage != nil {
		updates["mileage"] = *b.Mileage
	}
	if listing.AskingPrice == nil && b.AskingPrice != nil {
		updates["asking_price"] = *b.AskingPrice
	}
	if listing.SellerType == nil && b.SellerType != nil {
		updates["seller_type"] = *b.SellerType
	}
	if listing.City == nil && b.City != nil {
		updates["city"] = *b.City
	}
	if listing.Region == nil && b.Region != nil {
		updates["region"] = *b.Region
	}
	if listing.URL == nil && b.URL != nil {
		updates["url"] = *b.URL
	}
	if len(updates) == 0 {
		return listing, nil
	}

	if err := db.Model(&models.Listing{}).Where("id = ?", listing.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("ingest: enrich listing %d: %w", listing.ID, err)
	}

	var fresh models.Listing
	if err := db.Where("id = ?", listing.ID).First(&fresh).Error; err != nil {
		return nil, fmt.Errorf("ingest: reload listing %d: %w", listing.ID, err)
	}
	return &fresh, nil
}

// AnalysisInput is the opaque result of the AI analysis collaborator. Raw is
// stored verbatim; only Score and RedFlags are extracted for the engine.
type AnalysisInput struct {
	Score    *int
	RedFlags []string
	Summary  string
	Raw      string
}

// AttachAnalysis stores an analysis result and copies score and red flags
// onto the listing. It does not transition the listing; the caller reports
// "analysis completed" to the state machine separately.
func AttachAnalysis(db *gorm.DB, listingID uint, in AnalysisInput) (*models.AnalysisResult, error) {
	var count int64
	if err := db.Model(&models.Listing{}).Where("id = ?", listingID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("ingest: check listing %d: %w", listingID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("ingest: listing not found: %d", listingID)
	}

	result := models.AnalysisResult{
		ListingID: listingID,
		Score:     in.Score,
		RedFlags:  models.StringList(in.RedFlags),
		Summary:   in.Summary,
		Raw:       in.Raw,
		CreatedAt: time.Now(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&result).Error; err != nil {
			return fmt.Errorf("ingest: store analysis for %d: %w", listingID, err)
		}
		updates := map[string]interface{}{
			"red_flags": models.StringList(in.RedFlags),
		}
		if in.Score != nil {
			updates["score"] = *in.Score
		}
		if err := tx.Model(&models.Listing{}).Where("id = ?", listingID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("ingest: apply analysis to %d: %w", listingID, err)
		}
		_, err := audit.Append(tx, audit.Entry{
			ListingID:   &listingID,
			Action:      audit.ActionAnalysisAttached,
			Description: fmt.Sprintf("analysis attached to listing %d", listingID),
			Context:     models.Context{"red_flags": len(in.RedFlags)},
			TriggeredBy: audit.TriggeredByClaude,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Message is an inbound or outbound conversation event from the messaging
// collaborator.
type Message struct {
	Direction string // inbound, outbound
	Channel   string // email, sms
	Subject   string
	Body      string
	SentAt    time.Time
}

// RecordMessage appends a message to the listing's conversation history and
// stamps the matching last-response timestamp. An inbound message on a
// listing that is awaiting_response triggers the negotiating transition; a
// state-machine rejection there is tolerated (the message is still recorded).
func RecordMessage(db *gorm.DB, listingID uint, m Message) (*models.ConversationMessage, error) {
	if m.Direction != "inbound" && m.Direction != "outbound" {
		return nil, fmt.Errorf("ingest: direction must be inbound or outbound, got %q", m.Direction)
	}

	var listing models.Listing
	if err := db.Where("id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ingest: listing not found: %d", listingID)
		}
		return nil, fmt.Errorf("ingest: load listing %d: %w", listingID, err)
	}

	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	row := models.ConversationMessage{
		ListingID: listingID,
		Direction: m.Direction,
		Channel:   m.Channel,
		Subject:   m.Subject,
		Body:      m.Body,
		SentAt:    m.SentAt,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("ingest: record message for %d: %w", listingID, err)
		}
		stamp := "last_our_response_at"
		if m.Direction == "inbound" {
			stamp = "last_seller_response_at"
		}
		if err := tx.Model(&models.Listing{}).Where("id = ?", listingID).
			Update(stamp, m.SentAt).Error; err != nil {
			return fmt.Errorf("ingest: stamp %s for %d: %w", stamp, listingID, err)
		}
		_, err := audit.Append(tx, audit.Entry{
			ListingID:   &listingID,
			Action:      audit.ActionMessageRecorded,
			Description: fmt.Sprintf("%s %s message recorded for listing %d", m.Direction, m.Channel, listingID),
			TriggeredBy: audit.TriggeredBySystem,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if m.Direction == "inbound" && listing.Status == string(lifecycle.StatusAwaitingResponse) {
		_, err := lifecycle.Transition(db, listingID, lifecycle.StatusNegotiating, lifecycle.Opts{
			TriggeredBy: audit.TriggeredBySystem,
			Reasoning:   "seller responded",
		})
		var rejected *lifecycle.RejectionError
		if err != nil && !errors.As(err, &rejected) {
			return nil, err
		}
	}

	return &row, nil
}
