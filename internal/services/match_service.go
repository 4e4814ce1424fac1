// Package services – MatchService
//
// This file implements the matchmaking engine: a per-group queue of pending
// match requests with smallest-free id allocation, join/cancel semantics, and
// an update-in-place rule that keeps at most one pending request per creator
// per group.
//
// The find-or-create path (including id allocation) runs inside a single GORM
// transaction so that two concurrent registrations cannot race the same free
// id. All user-visible outcomes are reply strings; errors are reserved for
// store failures and the structural preconditions in errors.go.
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/AsilenceBTF/sf6bot/internal/command"
	"github.com/AsilenceBTF/sf6bot/internal/domain"
	"github.com/AsilenceBTF/sf6bot/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// joinShorthandMax bounds the bare-number reinterpretation of a want-fight
// command: a single numeric arg below this is a join-by-id, not a score.
const joinShorthandMax = 300

// idScanSlack extends the allocation scan window past the live-row count so a
// fully dense table still finds the next free id inside the loop.
const idScanSlack = 10

// notesDisplayRunes caps the notes excerpt shown in the waiting list.
const notesDisplayRunes = 10

// MatchService owns the MatchRequest lifecycle.
type MatchService struct {
	DB *gorm.DB
}

// WantFight registers (or refreshes) the caller's pending request in a group.
//
// A single numeric arg below 300 is reinterpreted as a join-by-id shorthand.
// Otherwise args are read positionally: character token (falling back to a
// note when it resolves to no character), score ("m"-prefixed master tier or
// a plain integer, falling back to a note), and the rest joined into notes.
func (s *MatchService) WantFight(ctx context.Context, groupID, userID int64, nickname string, args []string) (string, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "WantFight",
		trace.WithAttributes(
			attribute.Int64("group.id", groupID),
			attribute.Int64("user.id", userID),
		),
	)
	defer span.End()

	if groupID == 0 {
		return "", ErrGroupRequired
	}

	if len(args) == 1 {
		if id, err := strconv.Atoi(args[0]); err == nil && id < joinShorthandMax {
			return s.JoinMatch(ctx, groupID, userID, nickname, args)
		}
	}

	if userID == 0 {
		return "", ErrUserRequired
	}

	if err := repo.UpsertUser(ctx, s.DB, userID, nickname); err != nil {
		return "", err
	}

	var (
		character *domain.Character
		score     *int
		master    *int
		notes     []string
	)

	if len(args) > 0 {
		c, err := repo.FindCharacterByAlias(ctx, s.DB, args[0])
		if err != nil {
			return "", err
		}
		if c != nil {
			character = c
		} else {
			notes = append(notes, args[0])
		}
	}
	if len(args) > 1 {
		raw := args[1]
		lowered := strings.ToLower(raw)
		if strings.HasPrefix(lowered, "m") {
			if v, err := strconv.Atoi(lowered[1:]); err == nil {
				master = &v
			} else {
				notes = append(notes, raw)
			}
		} else if v, err := strconv.Atoi(raw); err == nil {
			score = &v
		} else {
			notes = append(notes, raw)
		}
	}
	if len(args) > 2 {
		notes = append(notes, args[2:]...)
	}

	var noteStr *string
	if len(notes) > 0 {
		joined := strings.Join(notes, " ")
		noteStr = &joined
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := repo.FindPendingByUser(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		fresh := match == nil
		if fresh {
			id, err := s.allocateID(ctx, tx)
			if err != nil {
				return err
			}
			match = &domain.MatchRequest{
				ID:          id,
				GroupID:     groupID,
				FirstUserID: userID,
				Status:      domain.MatchPending,
			}
		}
		match.CharacterID = nil
		if character != nil {
			match.CharacterID = &character.ID
		}
		match.Score = score
		match.MasterScore = master
		match.Notes = noteStr
		if fresh {
			return repo.CreateMatch(ctx, tx, match)
		}
		return repo.SaveMatch(ctx, tx, match)
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("🎮 约战成功！\n")
	b.WriteString("玩家: " + nickname)
	if character != nil {
		b.WriteString(" 使用角色: " + character.ChineseName)
	}
	if score != nil {
		fmt.Fprintf(&b, "\n格斗积分: %d", *score)
	}
	if master != nil {
		fmt.Fprintf(&b, "\n大师段位: m%d", *master)
	}
	if noteStr != nil {
		b.WriteString("\n备注: " + *noteStr)
	}
	b.WriteString("\n\n📝 发送 /list 查看待战列表\n")
	b.WriteString("📝 发送 /cancel 取消约战")
	return b.String(), nil
}

// allocateID returns the smallest positive integer not currently held by any
// row. It scans upward through the live-row count plus a small slack window
// and falls back to max+1 if the window is somehow exhausted.
func (s *MatchService) allocateID(ctx context.Context, tx *gorm.DB) (int, error) {
	used, err := repo.UsedMatchIDs(ctx, tx)
	if err != nil {
		return 0, err
	}
	for i := 1; i <= len(used)+idScanSlack; i++ {
		if _, taken := used[i]; !taken {
			return i, nil
		}
	}
	max := 0
	for id := range used {
		if id > max {
			max = id
		}
	}
	if max > 0 {
		return max + 1, nil
	}
	return 1, nil
}

// CancelMatch closes the caller's pending request in a group. Having no
// pending request is a normal outcome, answered with its own reply.
func (s *MatchService) CancelMatch(ctx context.Context, groupID, userID int64) (string, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "CancelMatch",
		trace.WithAttributes(
			attribute.Int64("group.id", groupID),
			attribute.Int64("user.id", userID),
		),
	)
	defer span.End()

	if groupID == 0 {
		return "", ErrGroupRequired
	}
	if userID == 0 {
		return "", ErrUserRequired
	}

	match, err := repo.FindPendingByUser(ctx, s.DB, groupID, userID)
	if err != nil {
		return "", err
	}
	if match == nil {
		return "❌ 未找到您的待战记录！\n" +
			"📝 发送 /fight 角色名 分数 备注 发起约战\n" +
			"📝 发送 /list 查看待战列表", nil
	}

	match.Status = domain.MatchCompleted
	if err := repo.SaveMatch(ctx, s.DB, match); err != nil {
		return "", err
	}
	return "✖️ 已成功取消约战！\n" +
		"📝 发送 /fight 角色名 分数 备注 重新约战\n" +
		"📝 发送 /list 查看待战列表", nil
}

// JoinMatch pairs the caller onto the pending request with the given id.
// Creators cannot join their own request; the row stays pending in that case.
func (s *MatchService) JoinMatch(ctx context.Context, groupID, userID int64, nickname string, args []string) (string, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "JoinMatch",
		trace.WithAttributes(
			attribute.Int64("group.id", groupID),
			attribute.Int64("user.id", userID),
		),
	)
	defer span.End()

	if groupID == 0 {
		return "", ErrGroupRequired
	}
	if userID == 0 {
		return "", ErrUserRequired
	}

	if len(args) < 1 {
		return joinUsage(), nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return joinUsage(), nil
	}

	match, err := repo.FindPendingByID(ctx, s.DB, groupID, id)
	if err != nil {
		return "", err
	}
	if match == nil {
		return "❌ 未找到对应序号的待战记录！\n" +
			"📝 发送 /list 查看最新待战列表", nil
	}
	if match.FirstUserID == userID {
		return "❌ 不能加入自己发起的约战！\n" +
			"📝 发送 /cancel 取消约战\n" +
			"📝 发送 /list 查看其他待战列表", nil
	}

	match.SecondUserID = &userID
	match.Status = domain.MatchCompleted
	if err := repo.SaveMatch(ctx, s.DB, match); err != nil {
		return "", err
	}

	return fmt.Sprintf("成功加入约战！%s %s",
		command.MentionTag(match.FirstUserID), command.MentionTag(userID)), nil
}

func joinUsage() string {
	return "❌ 命令格式错误！请使用：/join 序号\n" +
		"📝 发送 /list 查看待战列表"
}

// MatchList renders all pending requests in a group, one line each, with a
// trailing usage hint. An empty queue is a normal reply.
func (s *MatchService) MatchList(ctx context.Context, groupID int64) (string, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "MatchList",
		trace.WithAttributes(attribute.Int64("group.id", groupID)),
	)
	defer span.End()

	if groupID == 0 {
		return "", ErrGroupRequired
	}

	pending, err := repo.ListPending(ctx, s.DB, groupID)
	if err != nil {
		return "", err
	}
	if len(pending) == 0 {
		return "当前暂无待战玩家。", nil
	}

	var b strings.Builder
	b.WriteString("🎮 待战列表\n")
	for _, m := range pending {
		line, err := s.renderEntry(ctx, m)
		if err != nil {
			return "", err
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("📝 发送 /join 序号 加入对战\n")
	b.WriteString("📝 发送 /fight 角色名 分数 备注 发起约战")
	return b.String(), nil
}

func (s *MatchService) renderEntry(ctx context.Context, m domain.MatchRequest) (string, error) {
	display := fmt.Sprintf("[QQ:%d]", m.FirstUserID)
	if u, err := repo.GetUser(ctx, s.DB, m.FirstUserID); err != nil {
		return "", err
	} else if u != nil {
		display = u.Nickname
	}

	line := fmt.Sprintf("%d. %s", m.ID, display)
	if m.CharacterID != nil {
		c, err := repo.GetCharacter(ctx, s.DB, *m.CharacterID)
		if err != nil {
			return "", err
		}
		if c != nil {
			line += " [" + c.ChineseName + "]"
		}
	}
	if m.Score != nil {
		line += fmt.Sprintf(" %d分", *m.Score)
	}
	if m.MasterScore != nil {
		line += fmt.Sprintf(" m%d", *m.MasterScore)
	}
	if m.Notes != nil && *m.Notes != "" {
		line += " (" + truncateRunes(*m.Notes, notesDisplayRunes) + ")"
	}
	return line, nil
}

// truncateRunes clips s to max runes, appending an ellipsis when clipped.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
