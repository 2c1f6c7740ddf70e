package storage

import (
	"context"

	"github.com/google/uuid"
	"mls_sync/models"
)

// Store is the repository contract the sync engine runs against. Lookups
// return nil (not an error) when no row matches. PostgresStore is the
// production implementation; SQLiteStore backs credential-less local runs.
type Store interface {
	GetListingByExternalID(ctx context.Context, externalID string) (*models.Listing, error)
	CreateListing(ctx context.Context, l *models.Listing) error
	UpdateListing(ctx context.Context, l *models.Listing) error
	UpdateListingImages(ctx context.Context, id uuid.UUID, images []string) error

	GetMediaByKey(ctx context.Context, mediaKey string) (*models.Media, error)
	CreateMedia(ctx context.Context, m *models.Media) error
	UpdateMedia(ctx context.Context, m *models.Media) error
	GetPendingMedia(ctx context.Context, limit int) ([]models.Media, error)
	UpdateMediaMirror(ctx context.Context, id uuid.UUID, status string, storedKey *string, attempts int) error

	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	UpdateSyncRun(ctx context.Context, run *models.SyncRun) error
	GetRecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)

	Close() error
}
