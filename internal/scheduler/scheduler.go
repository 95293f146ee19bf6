// Package scheduler runs the periodic snapshot capture. Each run builds the
// live position set from current quotes and persists it as that day's
// snapshot, replacing an earlier capture for the same date.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
)

// captureTimeout bounds one capture run, quote fetches included.
const captureTimeout = 5 * time.Minute

// Scheduler owns the cron runner for scheduled snapshot captures.
type Scheduler struct {
	cron            *cron.Cron
	liveService     *service.LiveService
	snapshotService *service.SnapshotService
}

// NewScheduler creates a scheduler wired to the live and snapshot services.
func NewScheduler(liveService *service.LiveService, snapshotService *service.SnapshotService) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		liveService:     liveService,
		snapshotService: snapshotService,
	}
}

// Start registers the capture job under the given cron expression and starts
// the runner. An empty expression disables scheduled capture.
func (s *Scheduler) Start(cronExpr string) error {
	if cronExpr == "" {
		log.Println("Snapshot scheduler disabled: no cron expression configured")
		return nil
	}

	if _, err := s.cron.AddFunc(cronExpr, s.runCapture); err != nil {
		return fmt.Errorf("invalid snapshot cron expression %q: %w", cronExpr, err)
	}

	s.cron.Start()
	log.Printf("Snapshot scheduler started with schedule %q", cronExpr)
	return nil
}

// Stop stops the cron runner and waits for a running capture to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runCapture executes one scheduled capture. Failures are logged, not
// fatal; the next scheduled run retries from scratch.
func (s *Scheduler) runCapture() {
	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()

	live, err := s.liveService.BuildLivePositions(ctx)
	if err != nil {
		log.Printf("Error: scheduled snapshot capture failed to build live positions: %v", err)
		return
	}

	snapshot, err := s.snapshotService.CaptureSnapshot(live)
	if err != nil {
		log.Printf("Error: scheduled snapshot capture failed to persist: %v", err)
		return
	}

	log.Printf("Captured snapshot for %s: %d positions, total value %.2f",
		snapshot.Date, snapshot.Totals.PositionCount, snapshot.Totals.Value)
}
