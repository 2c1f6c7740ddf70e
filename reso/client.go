package reso

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mls_sync/config"
	"mls_sync/models"
)

const defaultSearchLimit = 50

// Client talks to a RESO Web API feed. When no base URL is configured, or
// when the feed misbehaves, every fetch degrades to the built-in sample
// dataset so the sync pipeline stays exercisable without live credentials.
type Client struct {
	baseURL    string
	homeState  string
	defaults   queryDefaults
	httpClient *http.Client
}

// queryDefaults come from the feed profile and fill in search fields the
// caller left empty.
type queryDefaults struct {
	statuses     []string
	propertyType string
	city         string
}

func NewClient(cfg config.FeedConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		homeState: cfg.HomeState,
		defaults: queryDefaults{
			statuses:     cfg.Statuses,
			propertyType: cfg.PropertyType,
			city:         cfg.City,
		},
		httpClient: httpClient,
	}
}

// applyDefaults fills empty query fields from the feed profile. Statuses
// fall back to the marketable ones so a bare query never pulls closed
// inventory.
func (c *Client) applyDefaults(q models.ListingQuery) models.ListingQuery {
	if len(q.Statuses) == 0 {
		q.Statuses = c.defaults.statuses
	}
	if len(q.Statuses) == 0 {
		q.Statuses = []string{"Active", "Pending"}
	}
	if q.City == "" {
		q.City = c.defaults.city
	}
	if q.PropertyType == "" {
		q.PropertyType = c.defaults.propertyType
	}
	return q
}

// odataEnvelope is the standard RESO response wrapper.
type odataEnvelope[T any] struct {
	Value []T `json:"value"`
}

// Search fetches up to q.Limit listings ordered by provider modification
// time, newest first. Feed errors are logged and answered with sample data,
// never surfaced to the caller.
func (c *Client) Search(ctx context.Context, q models.ListingQuery) ([]models.RemoteListing, error) {
	if c.baseURL == "" {
		log.Println("Feed not configured, using sample listings")
		return SampleListings(), nil
	}

	q = c.applyDefaults(q)

	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	params.Set("$filter", BuildFilter(q))
	params.Set("$orderby", "ModificationTimestamp desc")
	params.Set("$top", strconv.Itoa(limit))
	if q.Skip > 0 {
		params.Set("$skip", strconv.Itoa(q.Skip))
	}

	var envelope odataEnvelope[models.RemoteListing]
	if err := c.get(ctx, "/Property?"+params.Encode(), &envelope); err != nil {
		log.Printf("Warning: feed search failed, using sample listings: %v", err)
		return SampleListings(), nil
	}

	return envelope.Value, nil
}

// GetByKey looks up a single listing by its provider key. A missing record
// is nil, not an error.
func (c *Client) GetByKey(ctx context.Context, key string) (*models.RemoteListing, error) {
	if c.baseURL == "" {
		return sampleListingByKey(key), nil
	}

	var listing models.RemoteListing
	err := c.get(ctx, fmt.Sprintf("/Property('%s')", escapeODataString(key)), &listing)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Warning: feed lookup failed for %s, falling back to sample data: %v", key, err)
		return sampleListingByKey(key), nil
	}
	if listing.ListingKey == "" {
		return nil, nil
	}
	return &listing, nil
}

// GetMedia fetches media records for a listing key, ordered by the provider
// sequence field. Errors degrade to an empty list.
func (c *Client) GetMedia(ctx context.Context, listingKey string) ([]models.RemoteMedia, error) {
	if c.baseURL == "" {
		return SampleMedia(listingKey), nil
	}

	params := url.Values{}
	params.Set("$filter", fmt.Sprintf("ResourceRecordKey eq '%s'", escapeODataString(listingKey)))
	params.Set("$orderby", "Order")

	var envelope odataEnvelope[models.RemoteMedia]
	if err := c.get(ctx, "/Media?"+params.Encode(), &envelope); err != nil {
		log.Printf("Warning: media fetch failed for %s: %v", listingKey, err)
		return nil, nil
	}

	return envelope.Value, nil
}

// Connectivity probes the feed's service root. The result is computed fresh
// on every call; nothing is cached on the client.
func (c *Client) Connectivity(ctx context.Context) models.Connectivity {
	if c.baseURL == "" {
		return models.Connectivity{Configured: false, Detail: "no feed base URL configured; sample data in use"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return models.Connectivity{Configured: true, Detail: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Connectivity{Configured: true, Detail: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return models.Connectivity{Configured: true, Detail: fmt.Sprintf("feed returned %d", resp.StatusCode)}
	}
	return models.Connectivity{Configured: true, Connected: true}
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("feed status %d: %s", e.code, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
