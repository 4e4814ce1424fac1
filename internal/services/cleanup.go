// Package services – CleanupService
//
// This file implements the background sweeper for the match queue. Two rules
// apply on each pass:
//
//   - completed requests whose last update is older than the configured
//     interval are purged, keeping their ids free for reallocation
//   - pending requests created before the start of today (local time) are
//     purged, so yesterday's open challenges never roll over
//
// Sweeps are best effort. A failed pass is logged and retried on the next
// tick; it never stops the loop.
package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AsilenceBTF/sf6bot/internal/repo"
)

var (
	// matchesPending gauges the number of open match requests across all groups.
	matchesPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "match_requests_pending",
			Help: "Current number of pending match requests.",
		},
	)

	// matchesSwept counts rows removed by the cleanup loop, by rule.
	matchesSwept = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_swept_total",
			Help: "Total match requests removed by the cleanup loop.",
		},
		[]string{"rule"},
	)
)

func init() {
	prometheus.MustRegister(matchesPending, matchesSwept)
}

// CleanupService periodically removes stale match requests.
type CleanupService struct {
	DB       *gorm.DB
	Interval time.Duration
	Log      zerolog.Logger
}

// Start launches the sweep loop. One pass runs immediately; subsequent passes
// run every Interval until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) {
	go func() {
		s.sweep(ctx)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.Log.Info().Msg("cleanup loop stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *CleanupService) sweep(ctx context.Context) {
	if err := s.RunOnce(ctx, time.Now()); err != nil {
		s.Log.Error().Err(err).Msg("match cleanup pass failed")
	}
}

// RunOnce executes a single sweep relative to now. Exposed separately so the
// two rules can be exercised deterministically.
func (s *CleanupService) RunOnce(ctx context.Context, now time.Time) error {
	completed, err := repo.DeleteCompletedBefore(ctx, s.DB, now.Add(-s.Interval))
	if err != nil {
		return err
	}
	matchesSwept.WithLabelValues("completed").Add(float64(completed))

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stale, err := repo.DeletePendingCreatedBefore(ctx, s.DB, midnight)
	if err != nil {
		return err
	}
	matchesSwept.WithLabelValues("stale_pending").Add(float64(stale))

	pending, err := repo.CountPending(ctx, s.DB)
	if err != nil {
		return err
	}
	matchesPending.Set(float64(pending))

	if completed > 0 || stale > 0 {
		s.Log.Info().
			Int64("completed_removed", completed).
			Int64("stale_pending_removed", stale).
			Int64("pending_remaining", pending).
			Msg("match cleanup pass")
	}
	return nil
}
