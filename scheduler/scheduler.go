package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"mls_sync/config"
	"mls_sync/services"
)

// Scheduler drives periodic full syncs, either on a cron expression or a
// fixed interval. With neither configured the daemon only responds to HTTP
// triggers.
type Scheduler struct {
	cfg    *config.Config
	svc    *services.SyncService
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
}

func New(cfg *config.Config, svc *services.SyncService) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		svc:    svc,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.runOnce(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runOnce(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}

	log.Println("No schedule configured, sync runs only on request")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result := s.svc.FullSync(ctx)
	if !result.Success {
		for _, r := range result.Results {
			if r.Error != "" {
				log.Printf("Scheduled sync error (%s): %s", r.Type, r.Error)
			}
		}
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}
