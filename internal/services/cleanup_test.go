package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
	"github.com/AsilenceBTF/sf6bot/internal/repo"
)

func TestRunOnce_SweepsStaleRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	rows := []domain.MatchRequest{
		{ID: 1, GroupID: testGroup, FirstUserID: 1, Status: domain.MatchCompleted},
		{ID: 2, GroupID: testGroup, FirstUserID: 2, Status: domain.MatchCompleted},
		{ID: 3, GroupID: testGroup, FirstUserID: 3, Status: domain.MatchPending},
		{ID: 4, GroupID: testGroup, FirstUserID: 4, Status: domain.MatchPending},
	}
	for i := range rows {
		seedMatchRow(t, db, rows[i])
	}

	// Row 1 completed long ago, row 4 pending since yesterday.
	if err := db.Model(&domain.MatchRequest{}).Where("id = ?", 1).
		Update("updated_at", now.Add(-45*time.Minute)).Error; err != nil {
		t.Fatalf("backdate completed: %v", err)
	}
	if err := db.Model(&domain.MatchRequest{}).Where("id = ?", 4).
		Update("created_at", now.Add(-24*time.Hour)).Error; err != nil {
		t.Fatalf("backdate pending: %v", err)
	}

	svc := &CleanupService{DB: db, Interval: 30 * time.Minute, Log: zerolog.Nop()}
	if err := svc.RunOnce(ctx, now); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	used, err := repo.UsedMatchIDs(ctx, db)
	if err != nil {
		t.Fatalf("used ids: %v", err)
	}
	if _, ok := used[1]; ok {
		t.Error("old completed row survived the sweep")
	}
	if _, ok := used[4]; ok {
		t.Error("yesterday's pending row survived the sweep")
	}
	if _, ok := used[2]; !ok {
		t.Error("recently completed row was swept too early")
	}
	if _, ok := used[3]; !ok {
		t.Error("today's pending row was swept")
	}
}

func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	seedMatchRow(t, db, domain.MatchRequest{ID: 1, GroupID: testGroup, FirstUserID: 1, Status: domain.MatchCompleted})
	if err := db.Model(&domain.MatchRequest{}).Where("id = ?", 1).
		Update("updated_at", now.Add(-2*time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &CleanupService{DB: db, Interval: time.Hour, Log: zerolog.Nop()}
	svc.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for {
		used, err := repo.UsedMatchIDs(context.Background(), db)
		if err != nil {
			t.Fatalf("used ids: %v", err)
		}
		if len(used) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("initial sweep did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
}
