package workers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"mls_sync/models"
	"mls_sync/storage"
)

// Uploader copies a media asset into blob storage.
type Uploader interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
}

// MirrorWorker copies pending listing photos into S3-compatible storage in
// the background. It never touches sync counters; listing rows keep the
// provider URLs and the mirror only records a stored key alongside.
type MirrorWorker struct {
	store      storage.Store
	uploader   Uploader
	httpClient *http.Client
	triggerCh  chan struct{}
}

func NewMirrorWorker(store storage.Store, uploader Uploader, httpClient *http.Client) *MirrorWorker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &MirrorWorker{
		store:      store,
		uploader:   uploader,
		httpClient: httpClient,
		triggerCh:  make(chan struct{}, 1),
	}
}

// Trigger requests an immediate batch outside the regular interval.
func (w *MirrorWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *MirrorWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Mirror worker stopping")
			return
		case <-w.triggerCh:
			w.processBatch(ctx, batchSize)
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *MirrorWorker) processBatch(ctx context.Context, batchSize int) {
	media, err := w.store.GetPendingMedia(ctx, batchSize)
	if err != nil {
		log.Printf("Mirror worker: query error: %v", err)
		return
	}
	if len(media) == 0 {
		return
	}

	log.Printf("Mirror worker: processing %d assets", len(media))

	var stored, failed int
	for i := range media {
		m := &media[i]

		if m.MediaType != models.MediaTypePhoto {
			w.store.UpdateMediaMirror(ctx, m.ID, models.MirrorStatusSkipped, nil, m.MirrorAttempts)
			continue
		}

		key, err := w.mirror(ctx, m)
		if err != nil {
			log.Printf("Mirror worker: failed %s: %v", m.URL, err)
			failed++

			attempts := m.MirrorAttempts + 1
			status := models.MirrorStatusPending
			if attempts >= 3 {
				status = models.MirrorStatusFailed
			}
			w.store.UpdateMediaMirror(ctx, m.ID, status, nil, attempts)
			continue
		}

		if err := w.store.UpdateMediaMirror(ctx, m.ID, models.MirrorStatusStored, &key, m.MirrorAttempts); err != nil {
			log.Printf("Mirror worker: failed to record %s: %v", m.MediaKey, err)
			failed++
			continue
		}
		stored++

		// Spread downloads out a little; provider CDNs rate limit.
		time.Sleep(200 * time.Millisecond)
	}

	if stored > 0 || failed > 0 {
		log.Printf("Mirror worker: stored %d, failed %d", stored, failed)
	}
}

// mirror downloads one asset and uploads it under a content-addressed key.
func (w *MirrorWorker) mirror(ctx context.Context, m *models.Media) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*,*/*")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 25*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	contentType := resp.Header.Get("Content-Type")
	key := fmt.Sprintf("listings/%s/%s%s", hash[:2], hash, guessExtension(m.URL, contentType))

	if w.uploader != nil {
		if contentType == "" {
			contentType = "image/jpeg"
		}
		if err := w.uploader.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
			return "", fmt.Errorf("upload: %w", err)
		}
	}

	return key, nil
}

func guessExtension(url, contentType string) string {
	ext := strings.ToLower(path.Ext(url))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}

	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// NoOpUploader drains input without storing it, for deployments with no
// bucket configured.
type NoOpUploader struct{}

func NewNoOpUploader() *NoOpUploader {
	return &NoOpUploader{}
}

func (u *NoOpUploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	io.Copy(io.Discard, data)
	return nil
}
