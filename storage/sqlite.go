package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"mls_sync/models"
)

// SQLiteStore implements Store against a local file so the whole pipeline
// runs without Postgres credentials, the same way the feed client falls back
// to sample data.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		external_id TEXT UNIQUE,
		external_key TEXT,
		title TEXT,
		price INTEGER,
		address TEXT,
		city TEXT,
		state TEXT,
		postal_code TEXT,
		beds INTEGER,
		baths INTEGER,
		sqft INTEGER,
		year_built INTEGER,
		property_type TEXT,
		property_sub_type TEXT,
		description TEXT,
		status TEXT,
		source_status TEXT,
		original_list_price INTEGER,
		days_on_market INTEGER,
		listing_contract_date DATETIME,
		modified_at DATETIME,
		photo_count INTEGER,
		virtual_tour_url TEXT,
		images JSON,
		featured BOOLEAN DEFAULT FALSE,
		luxury BOOLEAN DEFAULT FALSE,
		is_external BOOLEAN DEFAULT FALSE,
		last_synced_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS media (
		id TEXT PRIMARY KEY,
		media_key TEXT UNIQUE,
		listing_key TEXT,
		mls_id TEXT,
		url TEXT,
		media_type TEXT,
		short_description TEXT,
		long_description TEXT,
		sequence INTEGER,
		modified_at DATETIME,
		stored_key TEXT,
		mirror_status TEXT DEFAULT 'pending',
		mirror_attempts INTEGER DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id INTEGER PRIMARY KEY,
		sync_type TEXT,
		status TEXT,
		records_processed INTEGER DEFAULT 0,
		records_created INTEGER DEFAULT 0,
		records_updated INTEGER DEFAULT 0,
		error_message TEXT DEFAULT '',
		started_at DATETIME,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_media_listing_key ON media(listing_key);
	CREATE INDEX IF NOT EXISTS idx_media_mirror ON media(mirror_status, mirror_attempts);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON sync_runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// Listings
// =============================================================================

func (s *SQLiteStore) GetListingByExternalID(ctx context.Context, externalID string) (*models.Listing, error) {
	query := `
		SELECT id, external_id, external_key, title, price, address, city, state,
			postal_code, beds, baths, sqft, year_built, property_type, property_sub_type,
			description, status, source_status, original_list_price, days_on_market,
			listing_contract_date, modified_at, photo_count, virtual_tour_url, images,
			featured, luxury, is_external, last_synced_at, created_at, updated_at
		FROM listings WHERE external_id = ?`

	var l models.Listing
	var id, imagesJSON string
	var contractDate, modifiedAt, lastSyncedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, externalID).Scan(
		&id, &l.ExternalID, &l.ExternalKey, &l.Title, &l.Price, &l.Address, &l.City, &l.State,
		&l.PostalCode, &l.Beds, &l.Baths, &l.SqFt, &l.YearBuilt, &l.PropertyType, &l.PropertySubType,
		&l.Description, &l.Status, &l.SourceStatus, &l.OriginalListPrice, &l.DaysOnMarket,
		&contractDate, &modifiedAt, &l.PhotoCount, &l.VirtualTourURL, &imagesJSON,
		&l.Featured, &l.Luxury, &l.IsExternal, &lastSyncedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.ID, _ = uuid.Parse(id)
	l.ListingContractDate = nullableTime(contractDate)
	l.ModifiedAt = nullableTime(modifiedAt)
	l.LastSyncedAt = nullableTime(lastSyncedAt)
	if imagesJSON != "" {
		json.Unmarshal([]byte(imagesJSON), &l.Images)
	}
	return &l, nil
}

func (s *SQLiteStore) CreateListing(ctx context.Context, l *models.Listing) error {
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	query := `
		INSERT INTO listings (id, external_id, external_key, title, price, address, city, state,
			postal_code, beds, baths, sqft, year_built, property_type, property_sub_type,
			description, status, source_status, original_list_price, days_on_market,
			listing_contract_date, modified_at, photo_count, virtual_tour_url, images,
			featured, luxury, is_external, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		l.ID.String(), l.ExternalID, l.ExternalKey, l.Title, l.Price, l.Address, l.City, l.State,
		l.PostalCode, l.Beds, l.Baths, l.SqFt, l.YearBuilt, l.PropertyType, l.PropertySubType,
		l.Description, l.Status, l.SourceStatus, l.OriginalListPrice, l.DaysOnMarket,
		timeArg(l.ListingContractDate), timeArg(l.ModifiedAt), l.PhotoCount, l.VirtualTourURL,
		imagesJSON(l.Images), l.Featured, l.Luxury, l.IsExternal, timeArg(l.LastSyncedAt),
		l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) UpdateListing(ctx context.Context, l *models.Listing) error {
	query := `
		UPDATE listings SET
			external_key = ?, title = ?, price = ?, address = ?, city = ?, state = ?,
			postal_code = ?, beds = ?, baths = ?, sqft = ?, year_built = ?,
			property_type = ?, property_sub_type = ?, description = ?, status = ?,
			source_status = ?, original_list_price = ?, days_on_market = ?,
			listing_contract_date = ?, modified_at = ?, photo_count = ?,
			virtual_tour_url = ?, luxury = ?, is_external = ?, last_synced_at = ?,
			updated_at = ?
		WHERE id = ?`

	_, err := s.db.ExecContext(ctx, query,
		l.ExternalKey, l.Title, l.Price, l.Address, l.City, l.State,
		l.PostalCode, l.Beds, l.Baths, l.SqFt, l.YearBuilt,
		l.PropertyType, l.PropertySubType, l.Description, l.Status,
		l.SourceStatus, l.OriginalListPrice, l.DaysOnMarket,
		timeArg(l.ListingContractDate), timeArg(l.ModifiedAt), l.PhotoCount,
		l.VirtualTourURL, l.Luxury, l.IsExternal, timeArg(l.LastSyncedAt),
		time.Now(), l.ID.String(),
	)
	return err
}

func (s *SQLiteStore) UpdateListingImages(ctx context.Context, id uuid.UUID, images []string) error {
	query := `UPDATE listings SET images = ?, updated_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, imagesJSON(images), time.Now(), id.String())
	return err
}

// =============================================================================
// Media
// =============================================================================

func (s *SQLiteStore) GetMediaByKey(ctx context.Context, mediaKey string) (*models.Media, error) {
	query := `
		SELECT id, media_key, listing_key, mls_id, url, media_type,
			short_description, long_description, sequence, modified_at, stored_key,
			mirror_status, mirror_attempts, created_at, updated_at
		FROM media WHERE media_key = ?`

	m, err := s.scanMedia(s.db.QueryRowContext(ctx, query, mediaKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SQLiteStore) CreateMedia(ctx context.Context, m *models.Media) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `
		INSERT INTO media (id, media_key, listing_key, mls_id, url, media_type,
			short_description, long_description, sequence, modified_at, stored_key,
			mirror_status, mirror_attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		m.ID.String(), m.MediaKey, m.ListingKey, m.MlsID, m.URL, m.MediaType,
		m.ShortDescription, m.LongDescription, m.Sequence, timeArg(m.ModifiedAt), m.StoredKey,
		m.MirrorStatus, m.MirrorAttempts, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) UpdateMedia(ctx context.Context, m *models.Media) error {
	query := `
		UPDATE media SET
			listing_key = ?, mls_id = ?, url = ?, media_type = ?,
			short_description = ?, long_description = ?, sequence = ?,
			modified_at = ?, updated_at = ?
		WHERE id = ?`

	_, err := s.db.ExecContext(ctx, query,
		m.ListingKey, m.MlsID, m.URL, m.MediaType,
		m.ShortDescription, m.LongDescription, m.Sequence,
		timeArg(m.ModifiedAt), time.Now(), m.ID.String(),
	)
	return err
}

func (s *SQLiteStore) GetPendingMedia(ctx context.Context, limit int) ([]models.Media, error) {
	query := `
		SELECT id, media_key, listing_key, mls_id, url, media_type,
			short_description, long_description, sequence, modified_at, stored_key,
			mirror_status, mirror_attempts, created_at, updated_at
		FROM media
		WHERE mirror_status = 'pending' AND mirror_attempts < 3
		ORDER BY created_at
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []models.Media
	for rows.Next() {
		m, err := s.scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, *m)
	}
	return media, rows.Err()
}

func (s *SQLiteStore) UpdateMediaMirror(ctx context.Context, id uuid.UUID, status string, storedKey *string, attempts int) error {
	query := `
		UPDATE media SET
			mirror_status = ?, stored_key = COALESCE(?, stored_key),
			mirror_attempts = ?, updated_at = ?
		WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, status, storedKey, attempts, time.Now(), id.String())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanMedia(row rowScanner) (*models.Media, error) {
	var m models.Media
	var id string
	var modifiedAt sql.NullTime
	var storedKey sql.NullString
	err := row.Scan(
		&id, &m.MediaKey, &m.ListingKey, &m.MlsID, &m.URL, &m.MediaType,
		&m.ShortDescription, &m.LongDescription, &m.Sequence, &modifiedAt, &storedKey,
		&m.MirrorStatus, &m.MirrorAttempts, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.ID, _ = uuid.Parse(id)
	m.ModifiedAt = nullableTime(modifiedAt)
	if storedKey.Valid {
		m.StoredKey = &storedKey.String
	}
	return &m, nil
}

// =============================================================================
// Sync Runs
// =============================================================================

func (s *SQLiteStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	query := `
		INSERT INTO sync_runs (sync_type, status, records_processed, records_created,
			records_updated, error_message, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		run.SyncType, string(run.Status), run.RecordsProcessed, run.RecordsCreated,
		run.RecordsUpdated, run.ErrorMessage, run.StartedAt, timeArg(run.CompletedAt),
	)
	if err != nil {
		return err
	}

	run.ID, err = result.LastInsertId()
	return err
}

func (s *SQLiteStore) UpdateSyncRun(ctx context.Context, run *models.SyncRun) error {
	query := `
		UPDATE sync_runs SET
			status = ?, records_processed = ?, records_created = ?,
			records_updated = ?, error_message = ?, completed_at = ?
		WHERE id = ?`

	_, err := s.db.ExecContext(ctx, query,
		string(run.Status), run.RecordsProcessed, run.RecordsCreated,
		run.RecordsUpdated, run.ErrorMessage, timeArg(run.CompletedAt), run.ID,
	)
	return err
}

func (s *SQLiteStore) GetRecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	query := `
		SELECT id, sync_type, status, records_processed, records_created,
			records_updated, error_message, started_at, completed_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		var r models.SyncRun
		var status string
		var completedAt sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.SyncType, &status, &r.RecordsProcessed, &r.RecordsCreated,
			&r.RecordsUpdated, &r.ErrorMessage, &r.StartedAt, &completedAt,
		); err != nil {
			return nil, err
		}
		r.Status = models.RunStatus(status)
		r.CompletedAt = nullableTime(completedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// Helpers
// =============================================================================

func imagesJSON(images []string) string {
	if images == nil {
		images = []string{}
	}
	data, _ := json.Marshal(images)
	return string(data)
}

// timeArg keeps nil *time.Time as SQL NULL instead of a zero timestamp.
func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
