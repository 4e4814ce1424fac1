package domain

// Channel identifies which messaging gateway an inbound message arrived on.
// It is decided once at the webhook boundary and selects the outbound sender
// for replies; downstream code never re-inspects raw payloads.
type Channel string

const (
	// ChannelQQ is the platform-hosted gateway (signed webhook, bearer sends).
	ChannelQQ Channel = "qq"
	// ChannelOneBot is the locally-hosted relay gateway (OneBot 11 protocol).
	ChannelOneBot Channel = "onebot"
)

// QQReply carries the official-channel routing fields a reply must echo back:
// the event id, the triggering message id, and the opaque group openid that
// addresses the group-message endpoint.
type QQReply struct {
	EventID     string
	MessageID   string
	GroupOpenID string
}

// InboundMessage is the normalized form of a decoded webhook payload.
// It is immutable once constructed: built per request at the HTTP boundary
// and discarded after dispatch.
//
// UserID and GroupID are numeric relay identifiers; they are zero on the
// official channel, whose opaque openids cannot address the matchmaking
// tables. GroupID == 0 means the message did not arrive in a group scope.
type InboundMessage struct {
	Channel   Channel
	UserID    int64
	GroupID   int64
	Nickname  string
	Content   string
	Mentioned bool

	// QQ holds official-channel reply routing; nil on the relay channel.
	QQ *QQReply
}

// InGroup reports whether the message arrived in a group scope.
func (m InboundMessage) InGroup() bool {
	return m.GroupID != 0 || (m.QQ != nil && m.QQ.GroupOpenID != "")
}
