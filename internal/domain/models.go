// Package domain defines the persistence models for the frame-data reference
// tables (characters, aliases, moves), the lightweight user profile, and the
// matchmaking request. These types are mapped with GORM and form the core
// data layer of the bot.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Character is a read-only reference entity describing one playable fighter.
//
// Fields:
//   - ID: integer primary key, assigned by the data importer.
//   - Name: canonical English name.
//   - ChineseName: localized display name used in replies.
type Character struct {
	ID          int    `json:"id"            gorm:"primaryKey"`
	Name        string `json:"name"          gorm:"type:varchar(64);not null"`
	ChineseName string `json:"zh_hans_name"  gorm:"column:zh_hans_name;type:varchar(64);not null"`
}

// TableName returns the database table name for Character.
func (Character) TableName() string { return "characters" }

// CharacterAlias maps a free-text spelling to a character. The Pinyin column
// holds the precomputed transliteration key of Alias so that fuzzy lookups
// are a single indexed equality match.
type CharacterAlias struct {
	ID          int    `json:"id"           gorm:"primaryKey"`
	Alias       string `json:"alias"        gorm:"type:varchar(64);not null;index"`
	CharacterID int    `json:"character_id" gorm:"not null;index"`
	Pinyin      string `json:"pinyin"       gorm:"type:varchar(128);index"`
}

// TableName returns the database table name for CharacterAlias.
func (CharacterAlias) TableName() string { return "character_aliases" }

// Move is a read-only reference entity holding the frame data of one move.
// Frame columns are strings because the source tables mix numbers with
// annotations ("KD", "弹地", "20+5").
type Move struct {
	ID          int     `json:"id"           gorm:"primaryKey"`
	CharacterID int     `json:"character_id" gorm:"not null;index:idx_character_moves"`
	Name        *string `json:"name"         gorm:"type:varchar(64)"`
	ChineseName *string `json:"zh_hans_name" gorm:"column:zh_hans_name;type:varchar(64)"`
	Input       *string `json:"input"        gorm:"type:varchar(32)"`
	Startup     *string `json:"startup"      gorm:"type:varchar(16)"`
	Active      *string `json:"active"       gorm:"type:varchar(16)"`
	Recovery    *string `json:"recovery"     gorm:"type:varchar(16)"`
	OnHit       *string `json:"on_hit"       gorm:"type:varchar(16)"`
	OnBlock     *string `json:"on_block"     gorm:"type:varchar(16)"`
	DROnHit     *string `json:"dr_on_hit"    gorm:"column:dr_on_hit;type:varchar(16)"`
	DROnBlock   *string `json:"dr_on_block"  gorm:"column:dr_on_block;type:varchar(16)"`
	Cancel      *string `json:"cancel"       gorm:"type:varchar(8);index:idx_character_moves"`
	BaseDamage  *int    `json:"base_damage"`
	Notes       *string `json:"notes"        gorm:"type:text"`
	Modern      *bool   `json:"modern"`
	TotalFrames *int    `json:"total_frames"`
}

// TableName returns the database table name for Move.
func (Move) TableName() string { return "moves" }

// ModernLabel renders mode availability for replies.
func (m *Move) ModernLabel() string {
	if m.Modern != nil && *m.Modern {
		return "经典&现代"
	}
	return "仅经典模式"
}

// OnHitLabel collapses the knockdown markers into a single display word.
func (m *Move) OnHitLabel() *string {
	if m.OnHit == nil {
		return nil
	}
	switch *m.OnHit {
	case "KD", "HKD", "弹地":
		kd := "击倒"
		return &kd
	}
	return m.OnHit
}

// CancelLabel renders the cancel-category tag as a display label, or "" when
// the move has no recognized cancel route.
func (m *Move) CancelLabel() string {
	if m.Cancel == nil {
		return ""
	}
	switch *m.Cancel {
	case "C":
		return "可绿冲取消"
	case "SA", "SA1", "SA2", "SA3":
		return "可" + *m.Cancel + "取消"
	}
	return ""
}

// Describe formats the fixed-order frame-data block used by the frame-data
// query reply: input, startup/active/recovery, on-hit/on-block, damage,
// cancel label, mode label.
func (m *Move) Describe() string {
	var b strings.Builder
	if m.Input != nil {
		fmt.Fprintf(&b, "指令:%s\n", *m.Input)
	}
	if m.Startup != nil {
		fmt.Fprintf(&b, "前摇:%s ", *m.Startup)
	}
	if m.Active != nil {
		fmt.Fprintf(&b, "有效帧:%s ", *m.Active)
	}
	if m.Recovery != nil {
		fmt.Fprintf(&b, "后摇:%s", *m.Recovery)
	}
	b.WriteString("\n")
	if hit := m.OnHitLabel(); hit != nil {
		fmt.Fprintf(&b, "命中:%s ", *hit)
	}
	if m.OnBlock != nil {
		fmt.Fprintf(&b, "被防:%s ", *m.OnBlock)
	}
	if m.BaseDamage != nil {
		fmt.Fprintf(&b, "基础伤害:%d\n", *m.BaseDamage)
	}
	b.WriteString(m.CancelLabel())
	b.WriteString(" " + m.ModernLabel())
	return b.String()
}

// User is the lightweight id→nickname profile kept for display purposes only.
// It is upserted whenever a player issues a matchmaking command.
type User struct {
	ID       int    `json:"id"       gorm:"primaryKey"`
	UserID   int64  `json:"user_id"  gorm:"not null;uniqueIndex"`
	Nickname string `json:"nickname" gorm:"type:varchar(128);not null"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// MatchStatus is the lifecycle state of a MatchRequest. A request is Pending
// while open for joining and Completed once paired or cancelled; the two
// closure causes are intentionally not distinguished.
type MatchStatus string

const (
	// MatchPending marks a request open for joining.
	MatchPending MatchStatus = "pending"
	// MatchCompleted marks a closed request (paired or cancelled by creator).
	MatchCompleted MatchStatus = "completed"
)

// MatchRequest is the only mutable entity the bot owns: one open (or recently
// closed) matchmaking entry inside a chat group.
//
// Fields:
//   - ID: smallest positive integer free across the whole table at creation
//     time; reused after cleanup deletes the owning row.
//   - GroupID: chat scope the request is visible in.
//   - FirstUserID: creator. SecondUserID: set on join.
//   - CharacterID / Score / MasterScore / Notes: optional registration info.
//   - Status: MatchPending → MatchCompleted, never back.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM; drive cleanup.
type MatchRequest struct {
	ID           int         `json:"id"             gorm:"primaryKey"`
	GroupID      int64       `json:"group_id"       gorm:"not null;index:idx_group_status"`
	FirstUserID  int64       `json:"first_user_id"  gorm:"not null;index"`
	SecondUserID *int64      `json:"second_user_id"`
	CharacterID  *int        `json:"character_id"`
	Score        *int        `json:"score"`
	MasterScore  *int        `json:"master_score"`
	Notes        *string     `json:"notes"          gorm:"type:varchar(255)"`
	Status       MatchStatus `json:"status"         gorm:"type:varchar(16);not null;index:idx_group_status;check:status IN ('pending','completed')"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName returns the database table name for MatchRequest.
func (MatchRequest) TableName() string { return "match_requests" }
