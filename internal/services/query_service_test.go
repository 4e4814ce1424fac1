package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
	"github.com/AsilenceBTF/sf6bot/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

// seedFrameData installs Ryu with two moves: a chain-cancelable jab and an
// SA3-only heavy.
func seedFrameData(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()

	if err := db.Create(&domain.Character{ID: 1, Name: "Ryu", ChineseName: "隆"}).Error; err != nil {
		t.Fatalf("seed character: %v", err)
	}
	for _, alias := range []string{"ryu", "隆"} {
		if err := repo.CreateAlias(ctx, db, 1, alias); err != nil {
			t.Fatalf("seed alias %q: %v", alias, err)
		}
	}

	moves := []domain.Move{
		{
			CharacterID: 1,
			Name:        strp("stand lp"),
			ChineseName: strp("站轻拳"),
			Input:       strp("5lp"),
			Startup:     strp("4"),
			Active:      strp("3"),
			Recovery:    strp("7"),
			OnHit:       strp("4"),
			OnBlock:     strp("-1"),
			Cancel:      strp("C"),
			BaseDamage:  intp(300),
		},
		{
			CharacterID: 1,
			Name:        strp("stand hk"),
			ChineseName: strp("站重脚"),
			Input:       strp("5hk"),
			Startup:     strp("12"),
			Active:      strp("3"),
			Recovery:    strp("20"),
			OnHit:       strp("KD"),
			OnBlock:     strp("-6"),
			Cancel:      strp("SA3"),
			BaseDamage:  intp(900),
		},
	}
	for i := range moves {
		if err := db.Create(&moves[i]).Error; err != nil {
			t.Fatalf("seed move %d: %v", i, err)
		}
	}
}

func TestFrameData_Success(t *testing.T) {
	db := newTestDB(t)
	seedFrameData(t, db)
	svc := &QueryService{DB: db}

	got, err := svc.FrameData(context.Background(), []string{"ryu", "5lp"})
	if err != nil {
		t.Fatalf("FrameData: %v", err)
	}
	for _, want := range []string{"角色:隆", "指令:5lp", "前摇:4", "被防:-1", "基础伤害:300"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply missing %q:\n%s", want, got)
		}
	}
}

func TestFrameData_KnockdownNormalized(t *testing.T) {
	db := newTestDB(t)
	seedFrameData(t, db)
	svc := &QueryService{DB: db}

	got, err := svc.FrameData(context.Background(), []string{"隆", "5HK"})
	if err != nil {
		t.Fatalf("FrameData: %v", err)
	}
	if !strings.Contains(got, "命中:击倒") {
		t.Errorf("want knockdown label 击倒, got:\n%s", got)
	}
}

func TestFrameData_ArgCount(t *testing.T) {
	db := newTestDB(t)
	svc := &QueryService{DB: db}

	for _, args := range [][]string{nil, {"ryu"}, {"ryu", "5lp", "extra"}} {
		got, err := svc.FrameData(context.Background(), args)
		if err != nil {
			t.Fatalf("FrameData(%v): %v", args, err)
		}
		if got != MsgBadQuery {
			t.Errorf("FrameData(%v) = %q, want %q", args, got, MsgBadQuery)
		}
	}
}

func TestFrameData_Misses(t *testing.T) {
	db := newTestDB(t)
	seedFrameData(t, db)
	svc := &QueryService{DB: db}
	ctx := context.Background()

	got, err := svc.FrameData(ctx, []string{"nobody", "5lp"})
	if err != nil {
		t.Fatalf("FrameData: %v", err)
	}
	if got != "未收录角色:nobody" {
		t.Errorf("unknown character reply = %q", got)
	}

	got, err = svc.FrameData(ctx, []string{"ryu", "9XX"})
	if err != nil {
		t.Fatalf("FrameData: %v", err)
	}
	if got != "未收录招式:9XX" {
		t.Errorf("unknown move reply = %q", got)
	}
}

func TestChainCancel_ListsOnlyChainMoves(t *testing.T) {
	db := newTestDB(t)
	seedFrameData(t, db)
	svc := &QueryService{DB: db}

	got, err := svc.ChainCancel(context.Background(), []string{"ryu"})
	if err != nil {
		t.Fatalf("ChainCancel: %v", err)
	}
	if !strings.Contains(got, "可以绿冲取消:") || !strings.Contains(got, "5lp") {
		t.Errorf("unexpected reply:\n%s", got)
	}
	if strings.Contains(got, "5hk") {
		t.Errorf("SA-only move leaked into chain table:\n%s", got)
	}
}

func TestSACancel_CollectsAllTiers(t *testing.T) {
	db := newTestDB(t)
	seedFrameData(t, db)
	svc := &QueryService{DB: db}

	got, err := svc.SACancel(context.Background(), []string{"ryu"})
	if err != nil {
		t.Fatalf("SACancel: %v", err)
	}
	if !strings.Contains(got, "可以SA取消:") || !strings.Contains(got, "5hk") {
		t.Errorf("unexpected reply:\n%s", got)
	}
	if strings.Contains(got, "5lp") {
		t.Errorf("chain-only move leaked into SA table:\n%s", got)
	}
}

func TestCancelTables_EmptyAndMiss(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&domain.Character{ID: 3, Name: "Lily", ChineseName: "莉莉"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.CreateAlias(context.Background(), db, 3, "lily"); err != nil {
		t.Fatalf("seed alias: %v", err)
	}
	svc := &QueryService{DB: db}
	ctx := context.Background()

	got, err := svc.ChainCancel(ctx, []string{"lily"})
	if err != nil {
		t.Fatalf("ChainCancel: %v", err)
	}
	if got != "莉莉没有可以绿冲取消的拳脚" {
		t.Errorf("empty chain table reply = %q", got)
	}

	got, err = svc.SACancel(ctx, []string{"ghost"})
	if err != nil {
		t.Fatalf("SACancel: %v", err)
	}
	if got != "未收录角色:ghost" {
		t.Errorf("miss reply = %q", got)
	}

	got, err = svc.ChainCancel(ctx, nil)
	if err != nil {
		t.Fatalf("ChainCancel: %v", err)
	}
	if got != MsgBadQuery {
		t.Errorf("no-arg reply = %q", got)
	}
}
