// Package command turns gateway-specific raw message text into a normalized
// (Kind, args) pair. Parsing is a pure function over its inputs: no state, no
// I/O, identical input always yields the identical command.
package command

import (
	"fmt"
	"strings"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
)

// Kind is the closed set of commands the bot understands. Ignored is distinct
// from Unrecognized: an Ignored message was never addressed to the bot and
// must produce no reply at all, while Unrecognized gets a help prompt.
type Kind int

const (
	// KindIgnored marks a message that failed the addressing precondition.
	KindIgnored Kind = iota
	// KindUnrecognized marks an addressed message whose command is unknown.
	KindUnrecognized
	KindFrameData
	KindWantFight
	KindJoinFight
	KindCancelFight
	KindWaitFightList
	KindChainCancel
	KindSACancel
	KindMenu
)

// commands maps every recognized command spelling (lower-case, without the
// leading slash) to its Kind.
var commands = map[string]Kind{
	"帧数": KindFrameData, "帧数查询": KindFrameData, "查帧数": KindFrameData,
	"约战": KindWantFight, "fight": KindWantFight, "匹配": KindWantFight, "wantfight": KindWantFight,
	"加入": KindJoinFight, "join": KindJoinFight, "参战": KindJoinFight,
	"取消": KindCancelFight, "cancel": KindCancelFight, "取消约战": KindCancelFight,
	"待战": KindWaitFightList, "matchlist": KindWaitFightList, "list": KindWaitFightList,
	"绿冲": KindChainCancel, "绿冲取消": KindChainCancel, "绿冲取消查询": KindChainCancel, "绿冲取消表": KindChainCancel,
	"sa取消": KindSACancel, "sa取消查询": KindSACancel, "sa取消表": KindSACancel,
	"菜单": KindMenu, "帮助": KindMenu, "help": KindMenu, "菜单查询": KindMenu,
}

// Menu is the static help text sent for the menu command and referenced by
// the unrecognized-command prompt.
const Menu = "1./帧数 角色名 指令或拳脚\n" +
	"2.约战:\n" +
	"   2.1 /fight 角色名 分数 备注\n" +
	"   2.2 /join 序号\n" +
	"   2.3 /cancel(取消约战)\n" +
	"   2.4 /list(待战列表)\n" +
	"3./绿冲取消 角色名\n" +
	"4./SA取消 角色名\n" +
	"5./菜单(显示帮助菜单)"

// Unknown is the reply for an addressed but unrecognized command.
const Unknown = "指令错误，使用'菜单'查看帮助"

// MentionTag renders the relay-protocol at-tag for a user id.
func MentionTag(userID int64) string {
	return fmt.Sprintf("[CQ:at,qq=%d]", userID)
}

// Parser normalizes raw text into commands. BotUserID identifies the bot's
// own relay account for mention detection; when zero, relay messages are
// ignored wholesale because addressing cannot be established.
type Parser struct {
	BotUserID int64
}

// Parse applies the addressing rules for the given channel and splits the
// message into a command kind and verbatim arguments.
//
// Addressing: a relay message must either mention the bot or start with "/".
// An official-channel message is always considered addressed (the platform
// only delivers messages directed at the bot), so a missing slash is
// tolerated there.
//
// The command token is matched case-insensitively; the remaining tokens keep
// their original casing so character names and notes survive intact.
func (p Parser) Parse(channel domain.Channel, content string) (Kind, []string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return KindIgnored, nil
	}

	switch channel {
	case domain.ChannelOneBot:
		if p.BotUserID == 0 {
			return KindIgnored, nil
		}
		tag := MentionTag(p.BotUserID)
		if strings.Contains(trimmed, tag) {
			trimmed = strings.TrimSpace(strings.ReplaceAll(trimmed, tag, ""))
		} else if !strings.HasPrefix(trimmed, "/") {
			return KindIgnored, nil
		}
	case domain.ChannelQQ:
		// Official payloads arrive pre-addressed; nothing to strip.
	default:
		return KindIgnored, nil
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return KindIgnored, nil
	}

	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	kind, ok := commands[name]
	if !ok {
		return KindUnrecognized, nil
	}
	return kind, fields[1:]
}
