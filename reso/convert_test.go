package reso

import (
	"testing"
	"time"

	"mls_sync/config"
	"mls_sync/models"
)

func testClient() *Client {
	return NewClient(config.FeedConfig{HomeState: "NE"}, nil)
}

func TestConvertListing_FieldMapping(t *testing.T) {
	c := testClient()
	remote := &models.RemoteListing{
		ListingID:             "22520502",
		ListingKey:            "228504682",
		ListPrice:             425000,
		StreetNumber:          "1824",
		StreetName:            "S 187th Circle",
		City:                  "Omaha",
		StateOrProvince:       "NE",
		PostalCode:            "68130",
		BedroomsTotal:         4,
		BathroomsTotalInteger: 3,
		LivingArea:            2650,
		YearBuilt:             2004,
		PropertyType:          "Residential",
		StandardStatus:        "Active",
		PublicRemarks:         "Move-in ready two story.",
		ModificationTimestamp: "2024-03-11T09:30:00Z",
	}

	l := c.ConvertListing(remote)

	if l.ExternalID != "22520502" || l.ExternalKey != "228504682" {
		t.Fatalf("external identity not carried over: %+v", l)
	}
	if l.Title != "4 Bed, 3 Bath Home in Omaha" {
		t.Fatalf("unexpected title %q", l.Title)
	}
	if l.Address != "1824 S 187th Circle" {
		t.Fatalf("unexpected address %q", l.Address)
	}
	if l.Price != 425000 {
		t.Fatalf("unexpected price %d", l.Price)
	}
	if l.Status != "active" {
		t.Fatalf("expected lowercase status, got %q", l.Status)
	}
	if l.SourceStatus != "Active" {
		t.Fatalf("expected raw provider status preserved, got %q", l.SourceStatus)
	}
	if !l.IsExternal {
		t.Fatal("converted listings must be marked external")
	}
	if len(l.Images) != 0 {
		t.Fatalf("images belong to the media pass, got %v", l.Images)
	}
	if l.ModifiedAt == nil || !l.ModifiedAt.Equal(time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected modification time %v", l.ModifiedAt)
	}
}

func TestConvertListing_LuxuryThreshold(t *testing.T) {
	c := testClient()

	at := c.ConvertListing(&models.RemoteListing{ListPrice: 750000})
	if at.Luxury {
		t.Fatal("price at the threshold should not be luxury")
	}

	above := c.ConvertListing(&models.RemoteListing{ListPrice: 750001})
	if !above.Luxury {
		t.Fatal("price above the threshold should be luxury")
	}
}

func TestConvertListing_StateFallsBackToHomeState(t *testing.T) {
	c := testClient()

	l := c.ConvertListing(&models.RemoteListing{ListingID: "1"})
	if l.State != "NE" {
		t.Fatalf("expected home state fallback, got %q", l.State)
	}

	l = c.ConvertListing(&models.RemoteListing{ListingID: "2", StateOrProvince: "IA"})
	if l.State != "IA" {
		t.Fatalf("expected provider state, got %q", l.State)
	}
}

func TestConvertListing_AddressSkipsAbsentParts(t *testing.T) {
	c := testClient()

	l := c.ConvertListing(&models.RemoteListing{StreetName: "Main Street"})
	if l.Address != "Main Street" {
		t.Fatalf("unexpected address %q", l.Address)
	}

	l = c.ConvertListing(&models.RemoteListing{})
	if l.Address != "" {
		t.Fatalf("expected empty address, got %q", l.Address)
	}
	if l.Title != "0 Bed, 0 Bath Home" {
		t.Fatalf("expected title without city suffix, got %q", l.Title)
	}
}

func TestConvertMedia(t *testing.T) {
	c := testClient()
	remote := &models.RemoteMedia{
		MediaKey:              "M100-2",
		ResourceRecordKey:     "228504682",
		MediaURL:              "https://cdn.example.com/2.jpg",
		MediaCategory:         "Photo",
		ShortDescription:      "Kitchen",
		Order:                 2,
		ModificationTimestamp: "2024-03-11T09:30:00Z",
	}

	m := c.ConvertMedia(remote)

	if m.MediaKey != "M100-2" || m.ListingKey != "228504682" {
		t.Fatalf("identity fields not carried over: %+v", m)
	}
	if m.MlsID != "" {
		t.Fatalf("MlsID is attached by the caller, got %q", m.MlsID)
	}
	if m.Sequence != 2 {
		t.Fatalf("unexpected sequence %d", m.Sequence)
	}
	if m.MirrorStatus != models.MirrorStatusPending {
		t.Fatalf("new media should start pending, got %q", m.MirrorStatus)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want *time.Time
	}{
		{"", nil},
		{"not-a-time", nil},
		{"2024-03-11T09:30:00Z", timePtr(time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC))},
		{"2024-03-11T09:30:00", timePtr(time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC))},
	}
	for _, tc := range cases {
		got := parseTimestamp(tc.in)
		if (got == nil) != (tc.want == nil) {
			t.Fatalf("parseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if got != nil && !got.Equal(*tc.want) {
			t.Fatalf("parseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got := parseDate("2024-02-15")
	if got == nil || !got.Equal(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("parseDate = %v", got)
	}
	if parseDate("") != nil {
		t.Fatal("empty date should be nil")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
