// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the read-side lookup capability over the
// frame-data reference tables: alias-based character resolution and move
// search.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only query
// composition.
//
// Error semantics:
//   - A lookup miss returns (nil, nil): "unknown character/move" is a normal
//     outcome the service layer turns into a user-facing string, not an error.
//   - On DB errors (connectivity, missing table, etc.), the raw gorm error is
//     propagated.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
	"github.com/AsilenceBTF/sf6bot/internal/translit"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// FindCharacterByAlias resolves a free-text token to a character. It first
// tries an exact (case-folded) alias match, then falls back to equality on
// the precomputed transliteration key, so Latin-transliterated spellings of
// non-Latin names still resolve. A miss returns (nil, nil).
func FindCharacterByAlias(ctx context.Context, db *gorm.DB, token string) (*domain.Character, error) {
	var c domain.Character

	err := db.WithContext(ctx).
		Joins("JOIN character_aliases ON character_aliases.character_id = characters.id").
		Where("character_aliases.alias = ?", translit.Normalize(token)).
		First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.WithContext(ctx).
		Joins("JOIN character_aliases ON character_aliases.character_id = characters.id").
		Where("character_aliases.pinyin = ?", translit.Key(token)).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCharacter fetches a character by primary key, or (nil, nil) when absent.
func GetCharacter(ctx context.Context, db *gorm.DB, id int) (*domain.Character, error) {
	var c domain.Character
	err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateAlias inserts an alias row with its transliteration key precomputed,
// so FindCharacterByAlias can match fuzzily with a plain equality filter.
func CreateAlias(ctx context.Context, db *gorm.DB, characterID int, alias string) error {
	row := &domain.CharacterAlias{
		Alias:       translit.Normalize(alias),
		CharacterID: characterID,
		Pinyin:      translit.Key(alias),
	}
	return db.WithContext(ctx).Create(row).Error
}

// FindMoveBySearchTerm looks up one move of a character by trying, in
// priority order: localized display name (verbatim), input notation
// (case-folded), then internal English name (case-folded). The first hit
// wins; a miss returns (nil, nil).
func FindMoveBySearchTerm(ctx context.Context, db *gorm.DB, characterID int, term string) (*domain.Move, error) {
	normalized := translit.Normalize(term)

	for _, cond := range []struct {
		column string
		value  string
	}{
		{"zh_hans_name", term},
		{"input", normalized},
		{"name", normalized},
	} {
		var m domain.Move
		err := db.WithContext(ctx).
			Where("character_id = ?", characterID).
			Where(cond.column+" = ?", cond.value).
			First(&m).Error
		if err == nil {
			return &m, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// ListMovesByCancel returns all moves of a character whose cancel-category
// tag is one of tags, in database iteration order. An empty result is not an
// error.
func ListMovesByCancel(ctx context.Context, db *gorm.DB, characterID int, tags ...string) ([]domain.Move, error) {
	var out []domain.Move
	err := db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Where("cancel IN ?", tags).
		Find(&out).Error
	return out, err
}
