// Package bot wires parsed commands to their handlers and pushes the reply
// back through the outbound gateway.
//
// The dispatcher is transport-agnostic: webhooks hand it a normalized
// InboundMessage and get the reply text back for the synchronous response
// body, while the same text is also dispatched asynchronously through the
// gateway router. An ignored message produces neither.
package bot

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/AsilenceBTF/sf6bot/internal/command"
	"github.com/AsilenceBTF/sf6bot/internal/domain"
	"github.com/AsilenceBTF/sf6bot/internal/services"
)

// replyRouter is the outbound surface the dispatcher needs; satisfied by
// gateway.Router and by fakes in tests.
type replyRouter interface {
	Dispatch(msg domain.InboundMessage, text string)
}

// Dispatcher routes a normalized inbound message through the parser to the
// matching service call.
type Dispatcher struct {
	Parser  command.Parser
	Query   *services.QueryService
	Match   *services.MatchService
	Replies replyRouter
	Log     zerolog.Logger
}

// Handle processes one inbound message end to end and returns the reply text.
// The returned text is also dispatched through the gateway; an empty return
// means the message was ignored and nothing was sent.
func (d *Dispatcher) Handle(ctx context.Context, msg domain.InboundMessage) string {
	kind, args := d.Parser.Parse(msg.Channel, msg.Content)
	if kind == command.KindIgnored {
		return ""
	}

	reply, err := d.invoke(ctx, kind, msg, args)
	if err != nil {
		reply = d.describeFailure(err, msg)
	}
	if reply == "" {
		return ""
	}

	d.Replies.Dispatch(msg, reply)
	return reply
}

func (d *Dispatcher) invoke(ctx context.Context, kind command.Kind, msg domain.InboundMessage, args []string) (string, error) {
	switch kind {
	case command.KindMenu:
		return command.Menu, nil
	case command.KindUnrecognized:
		return command.Unknown, nil
	case command.KindFrameData:
		return d.Query.FrameData(ctx, args)
	case command.KindChainCancel:
		return d.Query.ChainCancel(ctx, args)
	case command.KindSACancel:
		return d.Query.SACancel(ctx, args)
	case command.KindWantFight:
		return d.Match.WantFight(ctx, msg.GroupID, msg.UserID, msg.Nickname, args)
	case command.KindJoinFight:
		return d.Match.JoinMatch(ctx, msg.GroupID, msg.UserID, msg.Nickname, args)
	case command.KindCancelFight:
		return d.Match.CancelMatch(ctx, msg.GroupID, msg.UserID)
	case command.KindWaitFightList:
		return d.Match.MatchList(ctx, msg.GroupID)
	}
	return "", nil
}

// describeFailure maps service errors to user-facing text. Structural
// preconditions get their own message; anything else is logged and answered
// with the generic failure prompt.
func (d *Dispatcher) describeFailure(err error, msg domain.InboundMessage) string {
	switch {
	case errors.Is(err, services.ErrGroupRequired):
		return "无法获取群信息"
	case errors.Is(err, services.ErrUserRequired):
		return "无法获取用户信息"
	}
	d.Log.Error().Err(err).
		Str("channel", string(msg.Channel)).
		Int64("user_id", msg.UserID).
		Str("content", msg.Content).
		Msg("command handling failed")
	return "服务器开小差了，请稍后再试"
}
