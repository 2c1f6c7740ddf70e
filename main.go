package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mls_sync/config"
	"mls_sync/httputil"
	"mls_sync/logging"
	"mls_sync/reso"
	"mls_sync/scheduler"
	"mls_sync/server"
	"mls_sync/services"
	"mls_sync/storage"
	"mls_sync/workers"
)

var (
	syncNow = flag.Bool("sync", false, "Run a full sync once and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting mls_sync...")

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	clients := httputil.NewClients(cfg.Feed.Token)
	client := reso.NewClient(cfg.Feed, clients.Feed)
	if cfg.Feed.BaseURL == "" {
		log.Println("No feed base URL configured; running against sample data")
	}

	svc := services.NewSyncService(store, client, cfg.BatchSize)

	if *syncNow {
		log.Println("Running full sync...")
		result := svc.FullSync(ctx)
		for _, r := range result.Results {
			if r.Error != "" {
				log.Printf("Sync %s failed: %s", r.Type, r.Error)
			} else {
				log.Printf("Sync %s: %d processed, %d created, %d updated",
					r.Type, r.Stats.Processed, r.Stats.Created, r.Stats.Updated)
			}
		}
		if !result.Success {
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, svc)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	if cfg.Media.MirrorEnabled {
		uploader, err := openUploader(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to set up media storage: %v", err)
		}
		mirror := workers.NewMirrorWorker(store, uploader, clients.Media)
		go mirror.Run(ctx, 20, 2*time.Minute)
		log.Println("Media mirror worker started")
	}

	srv := server.New(cfg.Server.Port, svc)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	log.Println("Goodbye!")
}

// openStore picks Postgres when DATABASE_URL is set, otherwise a local
// SQLite file so the daemon runs without any credentials.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Println("Connected to Postgres")
		return store, nil
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	log.Printf("SQLite database: %s", cfg.DBPath)
	return store, nil
}

func openUploader(ctx context.Context, cfg *config.Config) (workers.Uploader, error) {
	if cfg.Media.Bucket == "" {
		log.Println("No media bucket configured; mirror uploads are a no-op")
		return workers.NewNoOpUploader(), nil
	}

	return storage.NewS3Uploader(ctx, storage.S3Config{
		Bucket:          cfg.Media.Bucket,
		Region:          cfg.Media.Region,
		Endpoint:        cfg.Media.Endpoint,
		AccessKeyID:     cfg.Media.AccessKeyID,
		SecretAccessKey: cfg.Media.SecretAccessKey,
	})
}
