// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for MatchRequest:
// pending-row lookups, the used-id set backing smallest-free allocation, and
// the expiry deletes run by the cleanup worker.
//
// Error semantics mirror the rest of the package: "no pending row" is
// returned as (nil, nil), DB errors are propagated raw.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
)

// CreateMatch inserts a new MatchRequest row. The caller is responsible for
// having assigned a free ID and the Pending status.
func CreateMatch(ctx context.Context, db *gorm.DB, m *domain.MatchRequest) error {
	return db.WithContext(ctx).Create(m).Error
}

// SaveMatch persists all fields of an existing row, bumping UpdatedAt.
func SaveMatch(ctx context.Context, db *gorm.DB, m *domain.MatchRequest) error {
	return db.WithContext(ctx).Save(m).Error
}

// FindPendingByUser returns the creator's open request in a group, or
// (nil, nil) when none exists. At most one such row exists per
// (firstUserID, groupID) pair.
func FindPendingByUser(ctx context.Context, db *gorm.DB, groupID, userID int64) (*domain.MatchRequest, error) {
	var m domain.MatchRequest
	err := db.WithContext(ctx).
		Where("group_id = ? AND first_user_id = ? AND status = ?", groupID, userID, domain.MatchPending).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindPendingByID returns the open request with the given id in a group, or
// (nil, nil) when none exists.
func FindPendingByID(ctx context.Context, db *gorm.DB, groupID int64, id int) (*domain.MatchRequest, error) {
	var m domain.MatchRequest
	err := db.WithContext(ctx).
		Where("id = ? AND group_id = ? AND status = ?", id, groupID, domain.MatchPending).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListPending returns all open requests in a group, oldest first.
func ListPending(ctx context.Context, db *gorm.DB, groupID int64) ([]domain.MatchRequest, error) {
	var out []domain.MatchRequest
	err := db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, domain.MatchPending).
		Order("created_at").
		Find(&out).Error
	return out, err
}

// UsedMatchIDs returns the set of ids currently held by any row, pending or
// completed. Completed rows keep their id reserved until cleanup deletes
// them, so allocation never collides with a live row.
func UsedMatchIDs(ctx context.Context, db *gorm.DB) (map[int]struct{}, error) {
	var ids []int
	err := db.WithContext(ctx).
		Model(&domain.MatchRequest{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	used := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		used[id] = struct{}{}
	}
	return used, nil
}

// CountPending returns the number of open requests across all groups.
// Used for the pending-matches gauge.
func CountPending(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.MatchRequest{}).
		Where("status = ?", domain.MatchPending).
		Count(&n).Error
	return n, err
}

// DeleteCompletedBefore removes completed rows last touched before cutoff
// and reports how many were deleted.
func DeleteCompletedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", domain.MatchCompleted, cutoff).
		Delete(&domain.MatchRequest{})
	return res.RowsAffected, res.Error
}

// DeletePendingCreatedBefore removes pending rows created before cutoff
// (stale overnight requests) and reports how many were deleted.
func DeletePendingCreatedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.MatchPending, cutoff).
		Delete(&domain.MatchRequest{})
	return res.RowsAffected, res.Error
}
