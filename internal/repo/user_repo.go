// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the lightweight
// id→nickname user profile.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
)

// UpsertUser creates the profile row for userID or refreshes its nickname
// when it changed. Nicknames are display-only; there is nothing else to keep
// in sync.
func UpsertUser(ctx context.Context, db *gorm.DB, userID int64, nickname string) error {
	var u domain.User
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.WithContext(ctx).Create(&domain.User{UserID: userID, Nickname: nickname}).Error
	case err != nil:
		return err
	}
	if u.Nickname == nickname {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update("nickname", nickname).Error
}

// GetUser fetches a profile by platform user id, or (nil, nil) when the user
// has never registered a match.
func GetUser(ctx context.Context, db *gorm.DB, userID int64) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
