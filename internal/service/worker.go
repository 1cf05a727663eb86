package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jackdevtech455/youtube-analytics/internal/metrics"
	"github.com/jackdevtech455/youtube-analytics/internal/model"
	"github.com/jackdevtech455/youtube-analytics/internal/repository"
	"github.com/jackdevtech455/youtube-analytics/pkg/timebucket"
)

// Worker drives discovery and snapshotting on a fixed poll cadence. Each
// tick runs three independent passes, each in its own transaction, so a
// mid-pass failure leaves previously committed work intact. Errors are
// logged and the loop proceeds to the next tick; unchanged schedule fields
// make the retry natural.
//
// Single-writer: running two workers against the same store races on
// schedule fields and double-spends API quota.
type Worker struct {
	pool      *pgxpool.Pool
	discovery *DiscoveryService
	snapshots *SnapshotService
	clock     Clock
	log       zerolog.Logger

	channelIntervalMinutes int
	searchIntervalMinutes  int
	pollInterval           time.Duration
	stopCh                 chan struct{}
}

func NewWorker(
	pool *pgxpool.Pool,
	discovery *DiscoveryService,
	snapshots *SnapshotService,
	clock Clock,
	channelIntervalMinutes, searchIntervalMinutes int,
	pollInterval time.Duration,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		pool:                   pool,
		discovery:              discovery,
		snapshots:              snapshots,
		clock:                  clock,
		log:                    log.With().Str("component", "worker").Logger(),
		channelIntervalMinutes: channelIntervalMinutes,
		searchIntervalMinutes:  searchIntervalMinutes,
		pollInterval:           pollInterval,
		stopCh:                 make(chan struct{}),
	}
}

// Start begins the poll loop. It runs one tick immediately, then every poll
// interval until the context is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Dur("poll_interval", w.pollInterval).
		Int("channel_interval_min", w.channelIntervalMinutes).
		Int("search_interval_min", w.searchIntervalMinutes).
		Msg("worker starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			w.log.Info().Msg("worker stopping (context cancelled)")
			return
		case <-w.stopCh:
			w.log.Info().Msg("worker stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) tick(ctx context.Context) {
	start := time.Now()
	metrics.Collectors.WorkerTicks.Inc()

	if err := w.initSchedules(ctx); err != nil {
		w.log.Error().Err(err).Msg("schedule pass failed")
	}

	discovered, err := w.dispatchDiscovery(ctx)
	if err != nil {
		metrics.Collectors.DiscoveryErrors.Inc()
		w.log.Error().Err(err).Msg("discovery pass failed")
	}

	created, ran, err := w.dispatchSnapshots(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("snapshot pass failed")
	}

	elapsed := time.Since(start)
	metrics.Collectors.WorkerTickDuration.Observe(elapsed.Seconds())
	w.log.Info().Int("discovery_runs", discovered).Bool("snapshot_ran", ran).
		Int("snapshots_created", created).Dur("elapsed", elapsed).Msg("tick complete")
}

// initSchedules lazily fills in schedule fields for active trackers that
// have none yet: snapshots start at the current bucket; channel discovery
// starts at the current bucket; search discovery is staggered across the
// day by tracker ID.
func (w *Worker) initSchedules(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	trackers, err := repository.ListActiveTrackers(ctx, tx)
	if err != nil {
		return err
	}

	now := w.clock.Now()
	for _, t := range trackers {
		changed := false

		if t.NextSnapshotAt == nil {
			bucket := timebucket.Hour(now)
			t.NextSnapshotAt = &bucket
			changed = true
		}

		if t.NextDiscoveryAt == nil {
			var due time.Time
			if t.Mode == model.ModeSearch {
				due = staggerDailyDiscovery(t.ID, now)
			} else {
				due = timebucket.Hour(now)
			}
			t.NextDiscoveryAt = &due
			changed = true
		}

		if changed {
			if err := repository.UpdateTrackerSchedule(ctx, tx, t.ID, t.NextDiscoveryAt, t.NextSnapshotAt); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// dispatchDiscovery runs discovery for every active tracker that is due and
// advances its next due instant by the process-wide per-mode interval.
func (w *Worker) dispatchDiscovery(ctx context.Context) (int, error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	trackers, err := repository.ListActiveTrackers(ctx, tx)
	if err != nil {
		return 0, err
	}

	now := w.clock.Now()
	runs := 0
	for _, t := range trackers {
		if !isDue(now, t.NextDiscoveryAt) {
			continue
		}

		if err := w.discovery.RunTracker(ctx, tx, t, now); err != nil {
			return runs, err
		}
		runs++

		intervalMinutes := w.channelIntervalMinutes
		if t.Mode == model.ModeSearch {
			intervalMinutes = w.searchIntervalMinutes
		}
		next := nextRunAfter(now, intervalMinutes)
		if err := repository.UpdateTrackerSchedule(ctx, tx, t.ID, &next, t.NextSnapshotAt); err != nil {
			return runs, err
		}
	}

	return runs, tx.Commit(ctx)
}

// dispatchSnapshots runs the collector once per hour bucket: only when the
// most recent snapshot in the whole system is older than the current bucket,
// or none exist yet.
func (w *Worker) dispatchSnapshots(ctx context.Context) (created int, ran bool, err error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback(ctx)

	var latest *time.Time
	err = tx.QueryRow(ctx, `
		SELECT captured_at FROM video_snapshots
		ORDER BY captured_at DESC
		LIMIT 1`).Scan(&latest)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, false, err
		}
		latest = nil
	}

	currentBucket := timebucket.Hour(w.clock.Now())
	if latest != nil && !latest.Before(currentBucket) {
		return 0, false, tx.Commit(ctx)
	}

	created, err = w.snapshots.CollectAll(ctx, tx)
	if err != nil {
		return 0, true, err
	}

	return created, true, tx.Commit(ctx)
}
