// Package services – QueryService
//
// This file implements the read-side query handlers: frame-data lookup for a
// single move, and the chain-cancel / SA-cancel tables for a character. All
// three translate normalized command args into formatted reply text via the
// alias resolver and the move-lookup repository.
//
// Handlers return human-readable text in both success and failure cases;
// an unknown character or move is a reply, not an error. Only store failures
// propagate as errors.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/AsilenceBTF/sf6bot/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MsgBadQuery is the generic malformed-arguments reply.
	MsgBadQuery = "错误指令"

	chainTag = "C"
)

// superTags is the union of cancel categories the SA-cancel table collects.
var superTags = []string{"SA", "SA2", "SA3"}

// QueryService answers the pure read-side commands over the frame-data
// reference tables.
type QueryService struct {
	DB *gorm.DB
}

// FrameData resolves (character token, move token) and formats the move's
// frame-data block. Requires exactly two args.
func (s *QueryService) FrameData(ctx context.Context, args []string) (string, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, "FrameData",
		trace.WithAttributes(attribute.Int("args", len(args))),
	)
	defer span.End()

	if len(args) != 2 {
		return MsgBadQuery, nil
	}

	character, err := repo.FindCharacterByAlias(ctx, s.DB, args[0])
	if err != nil {
		return "", err
	}
	if character == nil {
		return "未收录角色:" + args[0], nil
	}

	move, err := repo.FindMoveBySearchTerm(ctx, s.DB, character.ID, args[1])
	if err != nil {
		return "", err
	}
	if move == nil {
		return "未收录招式:" + args[1], nil
	}

	return "\n角色:" + character.ChineseName + " " + move.Describe(), nil
}

// ChainCancel lists the input notations of every chain-cancelable move of a
// character. An empty table is a normal reply, not a failure.
func (s *QueryService) ChainCancel(ctx context.Context, args []string) (string, error) {
	return s.cancelTable(ctx, "ChainCancel", args,
		[]string{chainTag}, "可以绿冲取消:\n", "没有可以绿冲取消的拳脚")
}

// SACancel lists the input notations of every super-cancelable move
// (any SA tier) of a character.
func (s *QueryService) SACancel(ctx context.Context, args []string) (string, error) {
	return s.cancelTable(ctx, "SACancel", args,
		superTags, "可以SA取消:\n", "没有可以SA取消的拳脚")
}

func (s *QueryService) cancelTable(ctx context.Context, op string, args, tags []string, header, empty string) (string, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, op,
		trace.WithAttributes(attribute.Int("args", len(args))),
	)
	defer span.End()

	if len(args) < 1 {
		return MsgBadQuery, nil
	}

	character, err := repo.FindCharacterByAlias(ctx, s.DB, args[0])
	if err != nil {
		return "", err
	}
	if character == nil {
		return "未收录角色:" + args[0], nil
	}

	moves, err := repo.ListMovesByCancel(ctx, s.DB, character.ID, tags...)
	if err != nil {
		return "", err
	}

	inputs := make([]string, 0, len(moves))
	for _, m := range moves {
		if m.Input != nil {
			inputs = append(inputs, *m.Input)
		}
	}
	if len(inputs) == 0 {
		return character.ChineseName + empty, nil
	}
	return character.ChineseName + header + strings.Join(inputs, ","), nil
}
