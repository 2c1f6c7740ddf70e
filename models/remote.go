package models

// RemoteListing is a Property record as returned by the RESO Web API.
// Field names follow the RESO Data Dictionary; only the fields the sync
// engine consumes are mapped.
type RemoteListing struct {
	ListingID             string  `json:"ListingId"`
	ListingKey            string  `json:"ListingKey"`
	ListPrice             float64 `json:"ListPrice"`
	OriginalListPrice     float64 `json:"OriginalListPrice"`
	StreetNumber          string  `json:"StreetNumber"`
	StreetName            string  `json:"StreetName"`
	City                  string  `json:"City"`
	StateOrProvince       string  `json:"StateOrProvince"`
	PostalCode            string  `json:"PostalCode"`
	BedroomsTotal         int     `json:"BedroomsTotal"`
	BathroomsTotalInteger int     `json:"BathroomsTotalInteger"`
	LivingArea            int     `json:"LivingArea"`
	YearBuilt             int     `json:"YearBuilt"`
	PropertyType          string  `json:"PropertyType"`
	PropertySubType       string  `json:"PropertySubType"`
	PublicRemarks         string  `json:"PublicRemarks"`
	StandardStatus        string  `json:"StandardStatus"`
	DaysOnMarket          int     `json:"DaysOnMarket"`
	ListingContractDate   string  `json:"ListingContractDate"`
	ModificationTimestamp string  `json:"ModificationTimestamp"`
	PhotoCount            int     `json:"PhotosCount"`
	VirtualTourURL        string  `json:"VirtualTourURLUnbranded"`
}

// RemoteMedia is a Media record as returned by the RESO Web API. It carries
// the owning listing's key but not its id.
type RemoteMedia struct {
	MediaKey              string `json:"MediaKey"`
	ResourceRecordKey     string `json:"ResourceRecordKey"`
	MediaURL              string `json:"MediaURL"`
	MediaCategory         string `json:"MediaCategory"`
	ShortDescription      string `json:"ShortDescription"`
	LongDescription       string `json:"LongDescription"`
	Order                 int    `json:"Order"`
	ModificationTimestamp string `json:"ModificationTimestamp"`
}

// ListingQuery is a structured search request against the feed. Zero values
// mean "no clause"; Statuses defaults to Active when empty.
type ListingQuery struct {
	City         string
	State        string
	PostalCode   string
	MinPrice     int
	MaxPrice     int
	MinBeds      int
	MinBaths     int
	PropertyType string
	Statuses     []string
	Limit        int
	Skip         int
}

// Connectivity is a point-in-time probe result for the feed. It is returned
// per call rather than cached, so status reporting never goes stale.
type Connectivity struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Detail     string `json:"detail,omitempty"`
}
