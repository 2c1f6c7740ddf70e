package workers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mls_sync/models"
	"mls_sync/storage"
)

type recordingUploader struct {
	keys         []string
	contentTypes []string
}

func (u *recordingUploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	io.Copy(io.Discard, data)
	u.keys = append(u.keys, key)
	u.contentTypes = append(u.contentTypes, contentType)
	return nil
}

func newWorkerStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedMedia(t *testing.T, store *storage.SQLiteStore, url, mediaType string) *models.Media {
	t.Helper()
	m := &models.Media{
		ID:           uuid.New(),
		MediaKey:     fmt.Sprintf("M-%s", uuid.New().String()[:8]),
		URL:          url,
		MediaType:    mediaType,
		MirrorStatus: models.MirrorStatusPending,
	}
	require.NoError(t, store.CreateMedia(context.Background(), m))
	return m
}

func TestProcessBatch_StoresPhotoUnderContentHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("fake image bytes"))
	}))
	defer srv.Close()

	store := newWorkerStore(t)
	m := seedMedia(t, store, srv.URL+"/photo.jpg", models.MediaTypePhoto)

	uploader := &recordingUploader{}
	worker := NewMirrorWorker(store, uploader, srv.Client())
	worker.processBatch(context.Background(), 10)

	require.Len(t, uploader.keys, 1)
	assert.True(t, strings.HasPrefix(uploader.keys[0], "listings/"))
	assert.True(t, strings.HasSuffix(uploader.keys[0], ".jpg"))
	assert.Equal(t, "image/jpeg", uploader.contentTypes[0])

	got, err := store.GetMediaByKey(context.Background(), m.MediaKey)
	require.NoError(t, err)
	assert.Equal(t, models.MirrorStatusStored, got.MirrorStatus)
	require.NotNil(t, got.StoredKey)
	assert.Equal(t, uploader.keys[0], *got.StoredKey)
}

func TestProcessBatch_SkipsNonPhotoMedia(t *testing.T) {
	store := newWorkerStore(t)
	m := seedMedia(t, store, "https://tours.example.com/t", models.MediaTypeVirtualTour)

	uploader := &recordingUploader{}
	worker := NewMirrorWorker(store, uploader, nil)
	worker.processBatch(context.Background(), 10)

	assert.Empty(t, uploader.keys)
	got, err := store.GetMediaByKey(context.Background(), m.MediaKey)
	require.NoError(t, err)
	assert.Equal(t, models.MirrorStatusSkipped, got.MirrorStatus)
}

func TestProcessBatch_FailureCountsAttemptAndEventuallyGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := newWorkerStore(t)
	m := seedMedia(t, store, srv.URL+"/missing.jpg", models.MediaTypePhoto)

	worker := NewMirrorWorker(store, &recordingUploader{}, srv.Client())

	for attempt := 1; attempt <= 3; attempt++ {
		worker.processBatch(context.Background(), 10)
		got, err := store.GetMediaByKey(context.Background(), m.MediaKey)
		require.NoError(t, err)
		assert.Equal(t, attempt, got.MirrorAttempts)
		if attempt < 3 {
			assert.Equal(t, models.MirrorStatusPending, got.MirrorStatus)
		} else {
			assert.Equal(t, models.MirrorStatusFailed, got.MirrorStatus)
		}
	}

	// Nothing left to retry once the row is marked failed.
	pending, err := store.GetPendingMedia(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGuessExtension(t *testing.T) {
	cases := []struct {
		url         string
		contentType string
		want        string
	}{
		{"https://cdn.example.com/a.png", "", ".png"},
		{"https://cdn.example.com/a.JPG", "", ".jpg"},
		{"https://cdn.example.com/asset", "image/webp", ".webp"},
		{"https://cdn.example.com/asset", "", ".jpg"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, guessExtension(tc.url, tc.contentType), tc.url)
	}
}
