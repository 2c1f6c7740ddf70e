package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"mls_sync/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// =============================================================================
// Listings
// =============================================================================

const listingColumns = `id, external_id, external_key, title, price, address, city, state,
	postal_code, beds, baths, sqft, year_built, property_type, property_sub_type,
	description, status, source_status, original_list_price, days_on_market,
	listing_contract_date, modified_at, photo_count, virtual_tour_url, images,
	featured, luxury, is_external, last_synced_at, created_at, updated_at`

func (s *PostgresStore) GetListingByExternalID(ctx context.Context, externalID string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE external_id = $1`

	var l models.Listing
	err := s.pool.QueryRow(ctx, query, externalID).Scan(
		&l.ID, &l.ExternalID, &l.ExternalKey, &l.Title, &l.Price, &l.Address, &l.City, &l.State,
		&l.PostalCode, &l.Beds, &l.Baths, &l.SqFt, &l.YearBuilt, &l.PropertyType, &l.PropertySubType,
		&l.Description, &l.Status, &l.SourceStatus, &l.OriginalListPrice, &l.DaysOnMarket,
		&l.ListingContractDate, &l.ModifiedAt, &l.PhotoCount, &l.VirtualTourURL, &l.Images,
		&l.Featured, &l.Luxury, &l.IsExternal, &l.LastSyncedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) CreateListing(ctx context.Context, l *models.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, NOW(), NOW()
		)
		RETURNING id, created_at, updated_at`

	return s.pool.QueryRow(ctx, query,
		l.ID, l.ExternalID, l.ExternalKey, l.Title, l.Price, l.Address, l.City, l.State,
		l.PostalCode, l.Beds, l.Baths, l.SqFt, l.YearBuilt, l.PropertyType, l.PropertySubType,
		l.Description, l.Status, l.SourceStatus, l.OriginalListPrice, l.DaysOnMarket,
		l.ListingContractDate, l.ModifiedAt, l.PhotoCount, l.VirtualTourURL, l.Images,
		l.Featured, l.Luxury, l.IsExternal, l.LastSyncedAt,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// UpdateListing rewrites the feed-owned columns of an existing row. Locally
// derived fields (featured, architectural styles) and the denormalized
// images array are left untouched.
func (s *PostgresStore) UpdateListing(ctx context.Context, l *models.Listing) error {
	query := `
		UPDATE listings SET
			external_key = $2, title = $3, price = $4, address = $5, city = $6, state = $7,
			postal_code = $8, beds = $9, baths = $10, sqft = $11, year_built = $12,
			property_type = $13, property_sub_type = $14, description = $15, status = $16,
			source_status = $17, original_list_price = $18, days_on_market = $19,
			listing_contract_date = $20, modified_at = $21, photo_count = $22,
			virtual_tour_url = $23, luxury = $24, is_external = $25, last_synced_at = $26,
			updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		l.ID, l.ExternalKey, l.Title, l.Price, l.Address, l.City, l.State,
		l.PostalCode, l.Beds, l.Baths, l.SqFt, l.YearBuilt,
		l.PropertyType, l.PropertySubType, l.Description, l.Status,
		l.SourceStatus, l.OriginalListPrice, l.DaysOnMarket,
		l.ListingContractDate, l.ModifiedAt, l.PhotoCount,
		l.VirtualTourURL, l.Luxury, l.IsExternal, l.LastSyncedAt,
	)
	return err
}

func (s *PostgresStore) UpdateListingImages(ctx context.Context, id uuid.UUID, images []string) error {
	query := `UPDATE listings SET images = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, images)
	return err
}

// =============================================================================
// Media
// =============================================================================

const mediaColumns = `id, media_key, listing_key, mls_id, url, media_type,
	short_description, long_description, sequence, modified_at, stored_key,
	mirror_status, mirror_attempts, created_at, updated_at`

func (s *PostgresStore) GetMediaByKey(ctx context.Context, mediaKey string) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE media_key = $1`

	var m models.Media
	err := s.pool.QueryRow(ctx, query, mediaKey).Scan(
		&m.ID, &m.MediaKey, &m.ListingKey, &m.MlsID, &m.URL, &m.MediaType,
		&m.ShortDescription, &m.LongDescription, &m.Sequence, &m.ModifiedAt, &m.StoredKey,
		&m.MirrorStatus, &m.MirrorAttempts, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresStore) CreateMedia(ctx context.Context, m *models.Media) error {
	query := `
		INSERT INTO media (` + mediaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	return s.pool.QueryRow(ctx, query,
		m.ID, m.MediaKey, m.ListingKey, m.MlsID, m.URL, m.MediaType,
		m.ShortDescription, m.LongDescription, m.Sequence, m.ModifiedAt, m.StoredKey,
		m.MirrorStatus, m.MirrorAttempts,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (s *PostgresStore) UpdateMedia(ctx context.Context, m *models.Media) error {
	query := `
		UPDATE media SET
			listing_key = $2, mls_id = $3, url = $4, media_type = $5,
			short_description = $6, long_description = $7, sequence = $8,
			modified_at = $9, updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		m.ID, m.ListingKey, m.MlsID, m.URL, m.MediaType,
		m.ShortDescription, m.LongDescription, m.Sequence, m.ModifiedAt,
	)
	return err
}

func (s *PostgresStore) GetPendingMedia(ctx context.Context, limit int) ([]models.Media, error) {
	query := `
		SELECT ` + mediaColumns + `
		FROM media
		WHERE mirror_status = 'pending' AND mirror_attempts < 3
		ORDER BY created_at
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []models.Media
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(
			&m.ID, &m.MediaKey, &m.ListingKey, &m.MlsID, &m.URL, &m.MediaType,
			&m.ShortDescription, &m.LongDescription, &m.Sequence, &m.ModifiedAt, &m.StoredKey,
			&m.MirrorStatus, &m.MirrorAttempts, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (s *PostgresStore) UpdateMediaMirror(ctx context.Context, id uuid.UUID, status string, storedKey *string, attempts int) error {
	query := `
		UPDATE media SET
			mirror_status = $2, stored_key = COALESCE($3, stored_key),
			mirror_attempts = $4, updated_at = NOW()
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status, storedKey, attempts)
	return err
}

// =============================================================================
// Sync Runs
// =============================================================================

func (s *PostgresStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	query := `
		INSERT INTO sync_runs (sync_type, status, records_processed, records_created,
			records_updated, error_message, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		run.SyncType, run.Status, run.RecordsProcessed, run.RecordsCreated,
		run.RecordsUpdated, run.ErrorMessage, run.StartedAt, run.CompletedAt,
	).Scan(&run.ID)
}

func (s *PostgresStore) UpdateSyncRun(ctx context.Context, run *models.SyncRun) error {
	query := `
		UPDATE sync_runs SET
			status = $2, records_processed = $3, records_created = $4,
			records_updated = $5, error_message = $6, completed_at = $7
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.Status, run.RecordsProcessed, run.RecordsCreated,
		run.RecordsUpdated, run.ErrorMessage, run.CompletedAt,
	)
	return err
}

func (s *PostgresStore) GetRecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	query := `
		SELECT id, sync_type, status, records_processed, records_created,
			records_updated, error_message, started_at, completed_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		var r models.SyncRun
		if err := rows.Scan(
			&r.ID, &r.SyncType, &r.Status, &r.RecordsProcessed, &r.RecordsCreated,
			&r.RecordsUpdated, &r.ErrorMessage, &r.StartedAt, &r.CompletedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
