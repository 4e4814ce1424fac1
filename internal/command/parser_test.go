package command

import (
	"reflect"
	"testing"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
)

func TestParse_Table(t *testing.T) {
	p := Parser{BotUserID: 42}

	tests := []struct {
		name     string
		channel  domain.Channel
		content  string
		wantKind Kind
		wantArgs []string
	}{
		{"slash command", domain.ChannelOneBot, "/fight ken 1500", KindWantFight, []string{"ken", "1500"}},
		{"chinese alias", domain.ChannelOneBot, "/约战 隆", KindWantFight, []string{"隆"}},
		{"mention without slash", domain.ChannelOneBot, "[CQ:at,qq=42] fight ken", KindWantFight, []string{"ken"}},
		{"mention with slash", domain.ChannelOneBot, "[CQ:at,qq=42] /list", KindWaitFightList, nil},
		{"no addressing", domain.ChannelOneBot, "fight ken", KindIgnored, nil},
		{"plain chatter", domain.ChannelOneBot, "早上好", KindIgnored, nil},
		{"unknown command", domain.ChannelOneBot, "/dance", KindUnrecognized, nil},
		{"official without slash", domain.ChannelQQ, "菜单", KindMenu, nil},
		{"official with slash", domain.ChannelQQ, "/帧数 ryu 5lp", KindFrameData, []string{"ryu", "5lp"}},
		{"command case insensitive", domain.ChannelOneBot, "/FIGHT Ken", KindWantFight, []string{"Ken"}},
		{"empty", domain.ChannelOneBot, "   ", KindIgnored, nil},
		{"frame data aliases", domain.ChannelOneBot, "/帧数查询 ryu 5lp", KindFrameData, []string{"ryu", "5lp"}},
		{"sa cancel", domain.ChannelOneBot, "/sa取消 ken", KindSACancel, []string{"ken"}},
		{"chain cancel", domain.ChannelOneBot, "/绿冲取消 ken", KindChainCancel, []string{"ken"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, args := p.Parse(tt.channel, tt.content)
			if kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", kind, tt.wantKind)
			}
			if len(args) != len(tt.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tt.wantArgs)) {
				t.Fatalf("args = %#v, want %#v", args, tt.wantArgs)
			}
		})
	}
}

func TestParse_ArgsKeepOriginalCase(t *testing.T) {
	p := Parser{BotUserID: 42}
	_, args := p.Parse(domain.ChannelOneBot, "/fight Ken M1500 Casual Fun")
	want := []string{"Ken", "M1500", "Casual", "Fun"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %#v, want %#v", args, want)
	}
}

func TestParse_Pure(t *testing.T) {
	p := Parser{BotUserID: 7}
	for i := 0; i < 3; i++ {
		kind, args := p.Parse(domain.ChannelOneBot, "[CQ:at,qq=7] join 3")
		if kind != KindJoinFight || len(args) != 1 || args[0] != "3" {
			t.Fatalf("iteration %d: kind=%v args=%v", i, kind, args)
		}
	}
}

func TestParse_RelayIgnoredWithoutBotID(t *testing.T) {
	p := Parser{}
	if kind, _ := p.Parse(domain.ChannelOneBot, "/fight ken"); kind != KindIgnored {
		t.Fatalf("relay without configured bot id should be ignored, got %v", kind)
	}
}
