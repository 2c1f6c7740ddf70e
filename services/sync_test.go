package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mls_sync/config"
	"mls_sync/models"
	"mls_sync/reso"
)

// fakeSource serves canned remote records and delegates conversion to the
// real converter so field mapping stays consistent with production.
type fakeSource struct {
	*reso.Client

	listings  []models.RemoteListing
	searchErr error
	media     map[string][]models.RemoteMedia

	searchStarted chan struct{}
	searchRelease chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		Client: reso.NewClient(config.FeedConfig{HomeState: "NE"}, nil),
		media:  make(map[string][]models.RemoteMedia),
	}
}

func (f *fakeSource) Search(ctx context.Context, q models.ListingQuery) ([]models.RemoteListing, error) {
	if f.searchStarted != nil {
		f.searchStarted <- struct{}{}
		<-f.searchRelease
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.listings, nil
}

func (f *fakeSource) GetByKey(ctx context.Context, key string) (*models.RemoteListing, error) {
	for i := range f.listings {
		if f.listings[i].ListingKey == key {
			return &f.listings[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetMedia(ctx context.Context, listingKey string) ([]models.RemoteMedia, error) {
	return f.media[listingKey], nil
}

func (f *fakeSource) Connectivity(ctx context.Context) models.Connectivity {
	return models.Connectivity{Configured: true, Connected: true}
}

// fakeStore is an in-memory Store with per-record error injection.
type fakeStore struct {
	listings map[string]*models.Listing // keyed by external id
	media    map[string]*models.Media   // keyed by media key
	images   map[uuid.UUID][]string
	runs     []*models.SyncRun

	failCreateFor map[string]bool // external ids whose create fails
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings:      make(map[string]*models.Listing),
		media:         make(map[string]*models.Media),
		images:        make(map[uuid.UUID][]string),
		failCreateFor: make(map[string]bool),
	}
}

func (s *fakeStore) GetListingByExternalID(ctx context.Context, externalID string) (*models.Listing, error) {
	l, ok := s.listings[externalID]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (s *fakeStore) CreateListing(ctx context.Context, l *models.Listing) error {
	if s.failCreateFor[l.ExternalID] {
		return errors.New("injected create failure")
	}
	cp := *l
	s.listings[l.ExternalID] = &cp
	return nil
}

func (s *fakeStore) UpdateListing(ctx context.Context, l *models.Listing) error {
	cp := *l
	s.listings[l.ExternalID] = &cp
	return nil
}

func (s *fakeStore) UpdateListingImages(ctx context.Context, id uuid.UUID, images []string) error {
	s.images[id] = images
	return nil
}

func (s *fakeStore) GetMediaByKey(ctx context.Context, mediaKey string) (*models.Media, error) {
	m, ok := s.media[mediaKey]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) CreateMedia(ctx context.Context, m *models.Media) error {
	cp := *m
	s.media[m.MediaKey] = &cp
	return nil
}

func (s *fakeStore) UpdateMedia(ctx context.Context, m *models.Media) error {
	cp := *m
	s.media[m.MediaKey] = &cp
	return nil
}

func (s *fakeStore) GetPendingMedia(ctx context.Context, limit int) ([]models.Media, error) {
	return nil, nil
}

func (s *fakeStore) UpdateMediaMirror(ctx context.Context, id uuid.UUID, status string, storedKey *string, attempts int) error {
	return nil
}

func (s *fakeStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	run.ID = int64(len(s.runs) + 1)
	cp := *run
	s.runs = append(s.runs, &cp)
	return nil
}

func (s *fakeStore) UpdateSyncRun(ctx context.Context, run *models.SyncRun) error {
	for i, r := range s.runs {
		if r.ID == run.ID {
			cp := *run
			s.runs[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("run %d not found", run.ID)
}

func (s *fakeStore) GetRecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	out := make([]models.SyncRun, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.runs[i])
	}
	return out, nil
}

func (s *fakeStore) Close() error { return nil }

func remoteListing(id, key string) models.RemoteListing {
	return models.RemoteListing{
		ListingID:      id,
		ListingKey:     key,
		ListPrice:      300000,
		City:           "Omaha",
		StandardStatus: "Active",
		BedroomsTotal:  3,
	}
}

func TestSyncListings_CreateThenUpdateIdempotent(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.listings = []models.RemoteListing{
		remoteListing("101", "K101"),
		remoteListing("102", "K102"),
		remoteListing("103", "K103"),
	}
	svc := NewSyncService(store, source, 50)

	first := svc.SyncListings(context.Background(), 0)
	require.True(t, first.Success)
	assert.Equal(t, SyncStats{Processed: 3, Created: 3, Updated: 0}, first.Stats)

	second := svc.SyncListings(context.Background(), 0)
	require.True(t, second.Success)
	assert.Equal(t, SyncStats{Processed: 3, Created: 0, Updated: 3}, second.Stats)

	assert.Len(t, store.listings, 3)
}

func TestSyncListings_FaultIsolation(t *testing.T) {
	store := newFakeStore()
	store.failCreateFor["103"] = true
	source := newFakeSource()
	for i := 101; i <= 105; i++ {
		source.listings = append(source.listings, remoteListing(
			fmt.Sprintf("%d", i), fmt.Sprintf("K%d", i)))
	}
	svc := NewSyncService(store, source, 50)

	result := svc.SyncListings(context.Background(), 0)

	// One record fails but the run still completes cleanly.
	require.True(t, result.Success)
	assert.Equal(t, SyncStats{Processed: 5, Created: 4, Updated: 0}, result.Stats)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, models.RunStatusSuccess, run.Status)
	assert.Equal(t, 5, run.RecordsProcessed)
	assert.Equal(t, 4, run.RecordsCreated)
}

func TestSyncListings_SearchErrorFinalizesRun(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.searchErr = errors.New("feed unreachable")
	svc := NewSyncService(store, source, 50)

	result := svc.SyncListings(context.Background(), 0)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "feed unreachable")

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, models.RunStatusError, run.Status)
	assert.Contains(t, run.ErrorMessage, "feed unreachable")
	require.NotNil(t, run.CompletedAt)
	assert.False(t, run.CompletedAt.Before(run.StartedAt))
}

func TestSyncListings_RunRowLifecycle(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.listings = []models.RemoteListing{remoteListing("101", "K101")}
	svc := NewSyncService(store, source, 50)

	svc.SyncListings(context.Background(), 0)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, SyncTypeProperties, run.SyncType)
	assert.Equal(t, models.RunStatusSuccess, run.Status)
	assert.Equal(t, 1, run.RecordsProcessed)
	assert.Equal(t, 1, run.RecordsCreated)
	assert.Empty(t, run.ErrorMessage)
	require.NotNil(t, run.CompletedAt)
}

func TestSyncListings_RejectsOverlappingRun(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.listings = []models.RemoteListing{remoteListing("101", "K101")}
	source.searchStarted = make(chan struct{})
	source.searchRelease = make(chan struct{})
	svc := NewSyncService(store, source, 50)

	done := make(chan SyncResult)
	go func() {
		done <- svc.SyncListings(context.Background(), 0)
	}()
	<-source.searchStarted // first run is now inside its pass

	rejected := svc.SyncListings(context.Background(), 0)
	assert.False(t, rejected.Success)
	assert.Contains(t, rejected.Error, "already running")
	assert.Zero(t, rejected.Stats.Processed)

	close(source.searchRelease)
	first := <-done
	assert.True(t, first.Success)

	// Only the winning run leaves an audit row.
	assert.Len(t, store.runs, 1)
}

func TestSyncListings_SkipsManuallyAuthoredListing(t *testing.T) {
	store := newFakeStore()
	manual := &models.Listing{
		ID:         uuid.New(),
		ExternalID: "101",
		Title:      "Hand-entered listing",
		IsExternal: false,
	}
	store.listings["101"] = manual

	source := newFakeSource()
	source.listings = []models.RemoteListing{remoteListing("101", "K101")}
	svc := NewSyncService(store, source, 50)

	result := svc.SyncListings(context.Background(), 0)

	require.True(t, result.Success)
	assert.Equal(t, SyncStats{Processed: 1, Created: 0, Updated: 0}, result.Stats)
	assert.Equal(t, "Hand-entered listing", store.listings["101"].Title)
}

func TestSyncListings_MediaReprojection(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.listings = []models.RemoteListing{remoteListing("101", "K101")}
	source.media["K101"] = []models.RemoteMedia{
		{MediaKey: "M3", ResourceRecordKey: "K101", MediaURL: "https://cdn.example.com/3.jpg", MediaCategory: "Photo", Order: 2},
		{MediaKey: "M1", ResourceRecordKey: "K101", MediaURL: "https://cdn.example.com/1.jpg", MediaCategory: "Photo", Order: 0},
		{MediaKey: "MT", ResourceRecordKey: "K101", MediaURL: "https://tours.example.com/t", MediaCategory: "VirtualTour", Order: 5},
		{MediaKey: "M2", ResourceRecordKey: "K101", MediaURL: "https://cdn.example.com/2.jpg", MediaCategory: "Photo", Order: 1},
	}
	svc := NewSyncService(store, source, 50)

	result := svc.SyncListings(context.Background(), 0)
	require.True(t, result.Success)

	// All media rows persisted and tagged with the owning external id.
	require.Len(t, store.media, 4)
	for _, m := range store.media {
		assert.Equal(t, "101", m.MlsID)
		assert.Equal(t, "K101", m.ListingKey)
	}

	// Images carry only photos, ordered by provider sequence.
	listing := store.listings["101"]
	require.NotNil(t, listing)
	images := store.images[listing.ID]
	assert.Equal(t, []string{
		"https://cdn.example.com/1.jpg",
		"https://cdn.example.com/2.jpg",
		"https://cdn.example.com/3.jpg",
	}, images)

	// A second pass updates in place rather than duplicating.
	svc.SyncListings(context.Background(), 0)
	assert.Len(t, store.media, 4)
}

func TestFullSync_TagsResults(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.listings = []models.RemoteListing{remoteListing("101", "K101")}
	svc := NewSyncService(store, source, 50)

	full := svc.FullSync(context.Background())

	require.True(t, full.Success)
	require.Len(t, full.Results, 1)
	assert.Equal(t, SyncTypeProperties, full.Results[0].Type)
	assert.True(t, full.Results[0].Success)
}

func TestFullSync_FailureFlowsToAggregate(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.searchErr = errors.New("boom")
	svc := NewSyncService(store, source, 50)

	full := svc.FullSync(context.Background())

	assert.False(t, full.Success)
	require.Len(t, full.Results, 1)
	assert.False(t, full.Results[0].Success)
}

func TestSyncOne(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.listings = []models.RemoteListing{remoteListing("101", "K101")}
	svc := NewSyncService(store, source, 50)

	result := svc.SyncOne(context.Background(), "K101")
	require.True(t, result.Success)
	assert.Equal(t, SyncTypeListing, result.Type)
	assert.Equal(t, SyncStats{Processed: 1, Created: 1, Updated: 0}, result.Stats)

	missing := svc.SyncOne(context.Background(), "K999")
	assert.False(t, missing.Success)
	assert.Contains(t, missing.Error, "not found")

	// Single-listing refreshes do not write audit rows.
	assert.Empty(t, store.runs)
}

func TestLastSyncStatus(t *testing.T) {
	store := newFakeStore()
	source := newFakeSource()
	source.listings = []models.RemoteListing{remoteListing("101", "K101")}
	svc := NewSyncService(store, source, 50)

	svc.SyncListings(context.Background(), 0)
	svc.SyncListings(context.Background(), 0)

	status, err := svc.LastSyncStatus(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, int64(2), status.LastRun.ID)
	assert.Len(t, status.RecentRuns, 2)
	assert.True(t, status.Connectivity.Connected)

	ids := make([]int64, 0, len(status.RecentRuns))
	for _, r := range status.RecentRuns {
		ids = append(ids, r.ID)
	}
	assert.True(t, sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i] > ids[j] }))
}
