package reso

import "mls_sync/models"

// The sample dataset stands in for the feed whenever it is unconfigured or
// unreachable. Ids and keys are stable so repeated runs reconcile against
// the same rows.

// SampleListings returns the fixed three-record fallback dataset.
func SampleListings() []models.RemoteListing {
	return []models.RemoteListing{
		{
			ListingID:             "22520502",
			ListingKey:            "228504682",
			ListPrice:             425000,
			OriginalListPrice:     439000,
			StreetNumber:          "1824",
			StreetName:            "S 58th Street",
			City:                  "Omaha",
			StateOrProvince:       "NE",
			PostalCode:            "68106",
			BedroomsTotal:         4,
			BathroomsTotalInteger: 3,
			LivingArea:            2450,
			YearBuilt:             1998,
			PropertyType:          "Residential",
			PropertySubType:       "Single Family Residence",
			PublicRemarks:         "Beautifully updated two-story on a quiet tree-lined street. New roof in 2023, finished basement, and a fenced backyard with mature landscaping.",
			StandardStatus:        "Active",
			DaysOnMarket:          12,
			ListingContractDate:   "2025-07-28",
			ModificationTimestamp: "2025-08-09T14:32:18Z",
			PhotoCount:            3,
		},
		{
			ListingID:             "22520385",
			ListingKey:            "228501947",
			ListPrice:             879900,
			OriginalListPrice:     879900,
			StreetNumber:          "17410",
			StreetName:            "Shadow Ridge Drive",
			City:                  "Elkhorn",
			StateOrProvince:       "NE",
			PostalCode:            "68022",
			BedroomsTotal:         5,
			BathroomsTotalInteger: 4,
			LivingArea:            4120,
			YearBuilt:             2019,
			PropertyType:          "Residential",
			PropertySubType:       "Single Family Residence",
			PublicRemarks:         "Custom ranch with walkout lower level backing to the golf course. Chef's kitchen, quartz throughout, and a covered composite deck.",
			StandardStatus:        "Active",
			DaysOnMarket:          5,
			ListingContractDate:   "2025-08-04",
			ModificationTimestamp: "2025-08-09T09:15:02Z",
			PhotoCount:            2,
			VirtualTourURL:        "https://tours.example.com/228501947",
		},
		{
			ListingID:             "22520377",
			ListingKey:            "228501810",
			ListPrice:             235000,
			OriginalListPrice:     250000,
			StreetNumber:          "4522",
			StreetName:            "Pine Street",
			City:                  "Omaha",
			StateOrProvince:       "NE",
			PostalCode:            "68105",
			BedroomsTotal:         2,
			BathroomsTotalInteger: 1,
			LivingArea:            1080,
			YearBuilt:             1952,
			PropertyType:          "Residential",
			PropertySubType:       "Single Family Residence",
			PublicRemarks:         "Charming mid-century bungalow close to the medical center. Hardwood floors under carpet, newer furnace, oversized one-car garage.",
			StandardStatus:        "Pending",
			DaysOnMarket:          31,
			ListingContractDate:   "2025-07-09",
			ModificationTimestamp: "2025-08-08T17:48:55Z",
			PhotoCount:            2,
		},
	}
}

func sampleListingByKey(key string) *models.RemoteListing {
	for _, l := range SampleListings() {
		if l.ListingKey == key {
			return &l
		}
	}
	return nil
}

// SampleMedia returns fallback media for a sample listing key.
func SampleMedia(listingKey string) []models.RemoteMedia {
	media := map[string][]models.RemoteMedia{
		"228504682": {
			{MediaKey: "228504682-1", ResourceRecordKey: "228504682", MediaURL: "https://photos.example.com/228504682/front.jpg", MediaCategory: "Photo", ShortDescription: "Front exterior", Order: 0, ModificationTimestamp: "2025-08-09T14:32:18Z"},
			{MediaKey: "228504682-2", ResourceRecordKey: "228504682", MediaURL: "https://photos.example.com/228504682/kitchen.jpg", MediaCategory: "Photo", ShortDescription: "Kitchen", Order: 1, ModificationTimestamp: "2025-08-09T14:32:18Z"},
			{MediaKey: "228504682-3", ResourceRecordKey: "228504682", MediaURL: "https://photos.example.com/228504682/backyard.jpg", MediaCategory: "Photo", ShortDescription: "Backyard", Order: 2, ModificationTimestamp: "2025-08-09T14:32:18Z"},
		},
		"228501947": {
			{MediaKey: "228501947-1", ResourceRecordKey: "228501947", MediaURL: "https://photos.example.com/228501947/front.jpg", MediaCategory: "Photo", ShortDescription: "Front exterior", Order: 0, ModificationTimestamp: "2025-08-09T09:15:02Z"},
			{MediaKey: "228501947-2", ResourceRecordKey: "228501947", MediaURL: "https://photos.example.com/228501947/deck.jpg", MediaCategory: "Photo", ShortDescription: "Covered deck", Order: 1, ModificationTimestamp: "2025-08-09T09:15:02Z"},
			{MediaKey: "228501947-t", ResourceRecordKey: "228501947", MediaURL: "https://tours.example.com/228501947", MediaCategory: "VirtualTour", Order: 2, ModificationTimestamp: "2025-08-09T09:15:02Z"},
		},
		"228501810": {
			{MediaKey: "228501810-1", ResourceRecordKey: "228501810", MediaURL: "https://photos.example.com/228501810/front.jpg", MediaCategory: "Photo", ShortDescription: "Front exterior", Order: 0, ModificationTimestamp: "2025-08-08T17:48:55Z"},
			{MediaKey: "228501810-2", ResourceRecordKey: "228501810", MediaURL: "https://photos.example.com/228501810/living.jpg", MediaCategory: "Photo", ShortDescription: "Living room", Order: 1, ModificationTimestamp: "2025-08-08T17:48:55Z"},
		},
	}
	return media[listingKey]
}
