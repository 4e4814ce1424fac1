package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedRoster(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()

	for _, c := range []domain.Character{
		{ID: 1, Name: "Ryu", ChineseName: "隆"},
		{ID: 2, Name: "Ken", ChineseName: "肯"},
	} {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed character %d: %v", c.ID, err)
		}
	}
	for _, a := range []struct {
		charID int
		alias  string
	}{
		{1, "ryu"}, {1, "隆"},
		{2, "ken"}, {2, "肯"},
	} {
		if err := CreateAlias(ctx, db, a.charID, a.alias); err != nil {
			t.Fatalf("seed alias %q: %v", a.alias, err)
		}
	}
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestFindCharacterByAlias_Exact(t *testing.T) {
	db := newTestDB(t, &domain.Character{}, &domain.CharacterAlias{})
	seedRoster(t, db)

	c, err := FindCharacterByAlias(context.Background(), db, "ryu")
	if err != nil {
		t.Fatalf("FindCharacterByAlias: %v", err)
	}
	if c == nil || c.ID != 1 {
		t.Fatalf("expected Ryu, got %+v", c)
	}
}

func TestFindCharacterByAlias_CaseAndSpacingFolded(t *testing.T) {
	db := newTestDB(t, &domain.Character{}, &domain.CharacterAlias{})
	seedRoster(t, db)

	c, err := FindCharacterByAlias(context.Background(), db, "  KEN ")
	if err != nil {
		t.Fatalf("FindCharacterByAlias: %v", err)
	}
	if c == nil || c.ID != 2 {
		t.Fatalf("expected Ken, got %+v", c)
	}
}

func TestFindCharacterByAlias_Transliteration(t *testing.T) {
	db := newTestDB(t, &domain.Character{}, &domain.CharacterAlias{})
	seedRoster(t, db)

	// "long" is the pinyin of 隆; only the Han alias carries that key.
	c, err := FindCharacterByAlias(context.Background(), db, "long")
	if err != nil {
		t.Fatalf("FindCharacterByAlias: %v", err)
	}
	if c == nil || c.ID != 1 {
		t.Fatalf("expected transliterated match for Ryu, got %+v", c)
	}
}

func TestFindCharacterByAlias_Miss(t *testing.T) {
	db := newTestDB(t, &domain.Character{}, &domain.CharacterAlias{})
	seedRoster(t, db)

	c, err := FindCharacterByAlias(context.Background(), db, "blanka")
	if err != nil {
		t.Fatalf("FindCharacterByAlias: %v", err)
	}
	if c != nil {
		t.Fatalf("expected no match, got %+v", c)
	}
}

func TestFindMoveBySearchTerm_Priority(t *testing.T) {
	db := newTestDB(t, &domain.Character{}, &domain.CharacterAlias{}, &domain.Move{})
	seedRoster(t, db)

	moves := []domain.Move{
		{ID: 1, CharacterID: 1, ChineseName: strp("波动拳"), Input: strp("236lp"), Name: strp("hadoken")},
		{ID: 2, CharacterID: 1, ChineseName: strp("升龙拳"), Input: strp("623hp"), Name: strp("shoryuken")},
		{ID: 3, CharacterID: 2, Input: strp("236lp"), Name: strp("hadoken")},
	}
	for i := range moves {
		if err := db.Create(&moves[i]).Error; err != nil {
			t.Fatalf("seed move %d: %v", moves[i].ID, err)
		}
	}

	ctx := context.Background()

	byZh, err := FindMoveBySearchTerm(ctx, db, 1, "波动拳")
	if err != nil || byZh == nil || byZh.ID != 1 {
		t.Fatalf("zh lookup: move=%+v err=%v", byZh, err)
	}

	byInput, err := FindMoveBySearchTerm(ctx, db, 1, "623HP")
	if err != nil || byInput == nil || byInput.ID != 2 {
		t.Fatalf("input lookup should fold case: move=%+v err=%v", byInput, err)
	}

	byName, err := FindMoveBySearchTerm(ctx, db, 1, "Shoryuken")
	if err != nil || byName == nil || byName.ID != 2 {
		t.Fatalf("name lookup: move=%+v err=%v", byName, err)
	}

	// Scoped to the character: Ken's 236lp must not leak into Ryu lookups.
	kenMove, err := FindMoveBySearchTerm(ctx, db, 2, "236lp")
	if err != nil || kenMove == nil || kenMove.ID != 3 {
		t.Fatalf("character scoping: move=%+v err=%v", kenMove, err)
	}

	miss, err := FindMoveBySearchTerm(ctx, db, 1, "5lp")
	if err != nil || miss != nil {
		t.Fatalf("expected miss, got move=%+v err=%v", miss, err)
	}
}

func TestListMovesByCancel(t *testing.T) {
	db := newTestDB(t, &domain.Move{})

	moves := []domain.Move{
		{ID: 1, CharacterID: 1, Input: strp("5lp"), Cancel: strp("C")},
		{ID: 2, CharacterID: 1, Input: strp("5mp"), Cancel: strp("SA")},
		{ID: 3, CharacterID: 1, Input: strp("2hk"), Cancel: strp("SA3")},
		{ID: 4, CharacterID: 1, Input: strp("5hp")},
		{ID: 5, CharacterID: 2, Input: strp("5lk"), Cancel: strp("C")},
	}
	for i := range moves {
		if err := db.Create(&moves[i]).Error; err != nil {
			t.Fatalf("seed move %d: %v", moves[i].ID, err)
		}
	}

	ctx := context.Background()

	chain, err := ListMovesByCancel(ctx, db, 1, "C")
	if err != nil {
		t.Fatalf("ListMovesByCancel: %v", err)
	}
	if len(chain) != 1 || *chain[0].Input != "5lp" {
		t.Fatalf("chain moves = %+v", chain)
	}

	super, err := ListMovesByCancel(ctx, db, 1, "SA", "SA2", "SA3")
	if err != nil {
		t.Fatalf("ListMovesByCancel super: %v", err)
	}
	if len(super) != 2 {
		t.Fatalf("expected 2 super-cancelable moves, got %+v", super)
	}

	none, err := ListMovesByCancel(ctx, db, 99, "C")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", none, err)
	}
}
