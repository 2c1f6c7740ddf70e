package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses (canonical, lower-cased from the provider's StandardStatus)
const (
	ListingStatusActive  = "active"
	ListingStatusPending = "pending"
	ListingStatusClosed  = "closed"
)

// Listing is the canonical property record. Rows sourced from the MLS feed
// carry IsExternal=true and are keyed by ExternalID; manually authored rows
// are never written by the sync engine.
type Listing struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ExternalID  string    `json:"external_id" db:"external_id"`   // MLS listing id, unique
	ExternalKey string    `json:"external_key" db:"external_key"` // provider key for media/detail lookups

	Title           string `json:"title" db:"title"`
	Price           int    `json:"price" db:"price"`
	Address         string `json:"address" db:"address"`
	City            string `json:"city" db:"city"`
	State           string `json:"state" db:"state"`
	PostalCode      string `json:"postal_code" db:"postal_code"`
	Beds            int    `json:"beds" db:"beds"`
	Baths           int    `json:"baths" db:"baths"`
	SqFt            int    `json:"sqft" db:"sqft"`
	YearBuilt       int    `json:"year_built" db:"year_built"`
	PropertyType    string `json:"property_type" db:"property_type"`
	PropertySubType string `json:"property_sub_type" db:"property_sub_type"`
	Description     string `json:"description" db:"description"`

	Status              string     `json:"status" db:"status"`
	SourceStatus        string     `json:"source_status" db:"source_status"` // provider's raw status
	OriginalListPrice   int        `json:"original_list_price" db:"original_list_price"`
	DaysOnMarket        int        `json:"days_on_market" db:"days_on_market"`
	ListingContractDate *time.Time `json:"listing_contract_date" db:"listing_contract_date"`
	ModifiedAt          *time.Time `json:"modified_at" db:"modified_at"` // provider modification time
	PhotoCount          int        `json:"photo_count" db:"photo_count"`
	VirtualTourURL      string     `json:"virtual_tour_url" db:"virtual_tour_url"`

	// Populated only by the media sync pass, ordered by provider sequence.
	Images []string `json:"images" db:"images"`

	Featured   bool `json:"featured" db:"featured"`
	Luxury     bool `json:"luxury" db:"luxury"`
	IsExternal bool `json:"is_external" db:"is_external"`

	LastSyncedAt *time.Time `json:"last_synced_at" db:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Media asset types as delivered by the provider's Media resource
const (
	MediaTypePhoto       = "Photo"
	MediaTypeVirtualTour = "VirtualTour"
	MediaTypeVideo       = "Video"
)

// Media mirror statuses
const (
	MirrorStatusPending  = "pending"
	MirrorStatusStored   = "stored"
	MirrorStatusFailed   = "failed"
	MirrorStatusSkipped  = "skipped"
)

// Media is an ordered asset attached to a listing.
type Media struct {
	ID         uuid.UUID `json:"id" db:"id"`
	MediaKey   string    `json:"media_key" db:"media_key"`     // provider asset key, unique
	ListingKey string    `json:"listing_key" db:"listing_key"` // owning listing's external key
	MlsID      string    `json:"mls_id" db:"mls_id"`           // owning listing's external id (denormalized)

	URL              string     `json:"url" db:"url"`
	MediaType        string     `json:"media_type" db:"media_type"`
	ShortDescription string     `json:"short_description" db:"short_description"`
	LongDescription  string     `json:"long_description" db:"long_description"`
	Sequence         int        `json:"sequence" db:"sequence"` // provider display order
	ModifiedAt       *time.Time `json:"modified_at" db:"modified_at"`

	// Set by the mirror worker when the asset is copied to blob storage.
	StoredKey     *string `json:"stored_key" db:"stored_key"`
	MirrorStatus  string  `json:"mirror_status" db:"mirror_status"`
	MirrorAttempts int    `json:"mirror_attempts" db:"mirror_attempts"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
