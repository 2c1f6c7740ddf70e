package reso

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"mls_sync/models"
)

// LuxuryPriceThreshold is the list price above which a listing is flagged
// luxury.
const LuxuryPriceThreshold = 750000

// ConvertListing maps a remote record into canonical listing fields. The
// mapping is total: absent remote fields map to zero values, except the
// state, which falls back to the configured home state. Images are left
// empty here; the media sync pass owns that field.
func (c *Client) ConvertListing(r *models.RemoteListing) *models.Listing {
	state := r.StateOrProvince
	if state == "" {
		state = c.homeState
	}

	return &models.Listing{
		ID:          uuid.New(),
		ExternalID:  r.ListingID,
		ExternalKey: r.ListingKey,

		Title:           buildTitle(r.BedroomsTotal, r.BathroomsTotalInteger, r.City),
		Price:           int(r.ListPrice),
		Address:         buildAddress(r.StreetNumber, r.StreetName),
		City:            r.City,
		State:           state,
		PostalCode:      r.PostalCode,
		Beds:            r.BedroomsTotal,
		Baths:           r.BathroomsTotalInteger,
		SqFt:            r.LivingArea,
		YearBuilt:       r.YearBuilt,
		PropertyType:    r.PropertyType,
		PropertySubType: r.PropertySubType,
		Description:     r.PublicRemarks,

		Status:              strings.ToLower(r.StandardStatus),
		SourceStatus:        r.StandardStatus,
		OriginalListPrice:   int(r.OriginalListPrice),
		DaysOnMarket:        r.DaysOnMarket,
		ListingContractDate: parseDate(r.ListingContractDate),
		ModifiedAt:          parseTimestamp(r.ModificationTimestamp),
		PhotoCount:          r.PhotoCount,
		VirtualTourURL:      r.VirtualTourURL,

		Luxury:     int(r.ListPrice) > LuxuryPriceThreshold,
		IsExternal: true,
	}
}

// ConvertMedia maps a remote media record field for field. MlsID is left
// blank: the remote record carries only the listing key, so the caller
// attaches the owning external id.
func (c *Client) ConvertMedia(r *models.RemoteMedia) *models.Media {
	return &models.Media{
		ID:               uuid.New(),
		MediaKey:         r.MediaKey,
		ListingKey:       r.ResourceRecordKey,
		URL:              r.MediaURL,
		MediaType:        r.MediaCategory,
		ShortDescription: r.ShortDescription,
		LongDescription:  r.LongDescription,
		Sequence:         r.Order,
		ModifiedAt:       parseTimestamp(r.ModificationTimestamp),
		MirrorStatus:     models.MirrorStatusPending,
	}
}

func buildAddress(streetNumber, streetName string) string {
	var parts []string
	if streetNumber != "" {
		parts = append(parts, streetNumber)
	}
	if streetName != "" {
		parts = append(parts, streetName)
	}
	return strings.Join(parts, " ")
}

func buildTitle(beds, baths int, city string) string {
	title := fmt.Sprintf("%d Bed, %d Bath Home", beds, baths)
	if city != "" {
		title += " in " + city
	}
	return title
}

// parseTimestamp handles the timestamp shapes seen across feeds: RFC3339
// with or without fractional seconds, and zone-less local timestamps.
func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return parseTimestamp(s)
}
