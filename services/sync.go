package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"mls_sync/models"
	"mls_sync/storage"
)

const (
	SyncTypeProperties = "properties"
	SyncTypeListing    = "listing"

	recentRunsLimit = 10
)

// ListingSource is the feed-facing contract the orchestrator drives.
// reso.Client is the production implementation.
type ListingSource interface {
	Search(ctx context.Context, q models.ListingQuery) ([]models.RemoteListing, error)
	GetByKey(ctx context.Context, key string) (*models.RemoteListing, error)
	GetMedia(ctx context.Context, listingKey string) ([]models.RemoteMedia, error)
	ConvertListing(r *models.RemoteListing) *models.Listing
	ConvertMedia(r *models.RemoteMedia) *models.Media
	Connectivity(ctx context.Context) models.Connectivity
}

type SyncStats struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
}

// SyncResult is the structured outcome handed to callers; the engine never
// lets an error escape as a raw failure.
type SyncResult struct {
	Type    string    `json:"type"`
	Success bool      `json:"success"`
	Stats   SyncStats `json:"stats"`
	Error   string    `json:"error,omitempty"`
}

// FullSyncResult holds one tagged entry per sync kind. The slice shape is
// deliberate: future sync kinds append as siblings.
type FullSyncResult struct {
	Success bool         `json:"success"`
	Results []SyncResult `json:"results"`
}

type SyncStatus struct {
	LastRun      *models.SyncRun     `json:"last_run"`
	RecentRuns   []models.SyncRun    `json:"recent_runs"`
	Connectivity models.Connectivity `json:"connectivity"`
}

// SyncService reconciles the remote feed into local storage, one listing at
// a time, and audits every batch run as a SyncRun row.
type SyncService struct {
	store     storage.Store
	source    ListingSource
	batchSize int

	// One slot per sync type; an overlapping invocation is rejected rather
	// than interleaved.
	guardsMu sync.Mutex
	guards   map[string]*sync.Mutex
}

func NewSyncService(store storage.Store, source ListingSource, batchSize int) *SyncService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncService{
		store:     store,
		source:    source,
		batchSize: batchSize,
		guards:    make(map[string]*sync.Mutex),
	}
}

func (s *SyncService) guard(syncType string) *sync.Mutex {
	s.guardsMu.Lock()
	defer s.guardsMu.Unlock()
	g, ok := s.guards[syncType]
	if !ok {
		g = &sync.Mutex{}
		s.guards[syncType] = g
	}
	return g
}

// SyncListings runs one full reconciliation pass over up to limit remote
// listings. Per-record failures are logged and skipped; only a failure that
// prevents the run from starting or completing finalizes it as an error.
func (s *SyncService) SyncListings(ctx context.Context, limit int) SyncResult {
	if limit <= 0 {
		limit = s.batchSize
	}
	result := SyncResult{Type: SyncTypeProperties}

	g := s.guard(SyncTypeProperties)
	if !g.TryLock() {
		result.Error = "a properties sync is already running"
		return result
	}
	defer g.Unlock()

	run := &models.SyncRun{
		SyncType:  SyncTypeProperties,
		Status:    models.RunStatusInProgress,
		StartedAt: time.Now(),
	}
	if err := s.store.CreateSyncRun(ctx, run); err != nil {
		result.Error = fmt.Sprintf("create sync run: %v", err)
		return result
	}

	// Status, city and property-type defaults come from the feed profile.
	remotes, err := s.source.Search(ctx, models.ListingQuery{Limit: limit})
	if err != nil {
		s.finalize(ctx, run, models.RunStatusError, result.Stats, fmt.Sprintf("search: %v", err))
		result.Error = fmt.Sprintf("search: %v", err)
		return result
	}

	log.Printf("Sync run %d: %d remote listings", run.ID, len(remotes))

	for i := range remotes {
		result.Stats.Processed++
		if err := s.reconcileListing(ctx, &remotes[i], &result.Stats); err != nil {
			log.Printf("Warning: failed to sync listing %s: %v", remotes[i].ListingID, err)
		}
	}

	s.finalize(ctx, run, models.RunStatusSuccess, result.Stats, "")
	result.Success = true

	log.Printf("Sync run %d complete: %d processed, %d created, %d updated",
		run.ID, result.Stats.Processed, result.Stats.Created, result.Stats.Updated)

	return result
}

func (s *SyncService) reconcileListing(ctx context.Context, remote *models.RemoteListing, stats *SyncStats) error {
	existing, err := s.store.GetListingByExternalID(ctx, remote.ListingID)
	if err != nil {
		return fmt.Errorf("get listing: %w", err)
	}

	if existing != nil && !existing.IsExternal {
		// Manually authored row colliding on external id; conversion never
		// touches it.
		log.Printf("Skipping manually authored listing %s", remote.ListingID)
		return nil
	}

	conv := s.source.ConvertListing(remote)
	now := time.Now()
	conv.LastSyncedAt = &now

	var listingID uuid.UUID
	if existing == nil {
		if err := s.store.CreateListing(ctx, conv); err != nil {
			return fmt.Errorf("create listing: %w", err)
		}
		stats.Created++
		listingID = conv.ID
	} else {
		conv.ID = existing.ID
		if err := s.store.UpdateListing(ctx, conv); err != nil {
			return fmt.Errorf("update listing: %w", err)
		}
		stats.Updated++
		listingID = existing.ID
	}

	s.syncMediaForListing(ctx, listingID, remote.ListingKey, remote.ListingID)
	return nil
}

// syncMediaForListing reconciles the media rows for one listing and then
// re-projects the ordered photo URLs onto the listing's images array. It is
// best-effort throughout: nothing here aborts the property pass.
func (s *SyncService) syncMediaForListing(ctx context.Context, listingID uuid.UUID, listingKey, externalID string) {
	remoteMedia, err := s.source.GetMedia(ctx, listingKey)
	if err != nil {
		log.Printf("Warning: media fetch failed for %s: %v", listingKey, err)
		return
	}

	for i := range remoteMedia {
		if err := s.reconcileMedia(ctx, &remoteMedia[i], externalID); err != nil {
			log.Printf("Warning: failed to sync media %s: %v", remoteMedia[i].MediaKey, err)
		}
	}

	photos := make([]models.RemoteMedia, 0, len(remoteMedia))
	for _, m := range remoteMedia {
		if m.MediaCategory == models.MediaTypePhoto {
			photos = append(photos, m)
		}
	}
	if len(photos) == 0 {
		return
	}

	sort.SliceStable(photos, func(i, j int) bool { return photos[i].Order < photos[j].Order })

	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		urls = append(urls, p.MediaURL)
	}

	if err := s.store.UpdateListingImages(ctx, listingID, urls); err != nil {
		log.Printf("Warning: failed to update images for %s: %v", externalID, err)
	}
}

func (s *SyncService) reconcileMedia(ctx context.Context, remote *models.RemoteMedia, externalID string) error {
	existing, err := s.store.GetMediaByKey(ctx, remote.MediaKey)
	if err != nil {
		return fmt.Errorf("get media: %w", err)
	}

	conv := s.source.ConvertMedia(remote)
	conv.MlsID = externalID // the remote record only carries the listing key

	if existing == nil {
		if err := s.store.CreateMedia(ctx, conv); err != nil {
			return fmt.Errorf("create media: %w", err)
		}
		return nil
	}

	conv.ID = existing.ID
	if err := s.store.UpdateMedia(ctx, conv); err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	return nil
}

// FullSync runs every configured sync kind and aggregates their outcomes.
// The connectivity probe is purely informational; a dead feed still syncs
// from sample data.
func (s *SyncService) FullSync(ctx context.Context) FullSyncResult {
	conn := s.source.Connectivity(ctx)
	if !conn.Connected {
		log.Printf("Feed not reachable (%s); sample data will likely be used", conn.Detail)
	}

	results := []SyncResult{
		s.SyncListings(ctx, s.batchSize),
	}

	success := true
	for _, r := range results {
		success = success && r.Success
	}

	return FullSyncResult{Success: success, Results: results}
}

// SyncOne refreshes a single listing by its provider key, outside the
// audited batch flow.
func (s *SyncService) SyncOne(ctx context.Context, key string) SyncResult {
	result := SyncResult{Type: SyncTypeListing}

	remote, err := s.source.GetByKey(ctx, key)
	if err != nil {
		result.Error = fmt.Sprintf("lookup %s: %v", key, err)
		return result
	}
	if remote == nil {
		result.Error = fmt.Sprintf("listing %s not found", key)
		return result
	}

	result.Stats.Processed++
	if err := s.reconcileListing(ctx, remote, &result.Stats); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	return result
}

// LastSyncStatus reports the most recent runs plus a fresh connectivity
// probe. Read-only.
func (s *SyncService) LastSyncStatus(ctx context.Context) (*SyncStatus, error) {
	runs, err := s.store.GetRecentSyncRuns(ctx, recentRunsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}

	status := &SyncStatus{
		RecentRuns:   runs,
		Connectivity: s.source.Connectivity(ctx),
	}
	if len(runs) > 0 {
		status.LastRun = &runs[0]
	}
	return status, nil
}

// finalize transitions a run to its terminal status exactly once.
func (s *SyncService) finalize(ctx context.Context, run *models.SyncRun, status models.RunStatus, stats SyncStats, errMsg string) {
	now := time.Now()
	run.Status = status
	run.RecordsProcessed = stats.Processed
	run.RecordsCreated = stats.Created
	run.RecordsUpdated = stats.Updated
	run.ErrorMessage = errMsg
	run.CompletedAt = &now

	if err := s.store.UpdateSyncRun(ctx, run); err != nil {
		log.Printf("Warning: failed to finalize sync run %d: %v", run.ID, err)
	}
}
