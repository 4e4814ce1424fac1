// Package gateway implements the outbound side of the bot: delivering reply
// text back to the platform a message arrived on.
//
// Two transports exist. The OneBot sender posts to a NapCat-style relay's
// send_group_msg / send_private_msg endpoints, and the QQ sender posts to the
// official group-message API using a cached app access token. The Router
// hides both behind fire-and-forget dispatch: delivery runs in its own
// goroutine with a bounded timeout, and a failed send is logged, never
// surfaced to the caller.
package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
)

// Sender delivers one reply toward the platform a message originated from.
type Sender interface {
	Send(ctx context.Context, origin domain.InboundMessage, text string) error
}

// Router fans replies out to the per-channel sender. A nil sender for a
// channel means that transport is not configured; replies to it are dropped
// with a warning.
type Router struct {
	QQ      Sender
	OneBot  Sender
	Timeout time.Duration
	Log     zerolog.Logger
}

// Dispatch sends text back to the origin of msg without blocking the caller.
// Delivery failures are logged at error level and otherwise discarded.
func (r *Router) Dispatch(msg domain.InboundMessage, text string) {
	if text == "" {
		return
	}

	var s Sender
	switch msg.Channel {
	case domain.ChannelQQ:
		s = r.QQ
	case domain.ChannelOneBot:
		s = r.OneBot
	}
	if s == nil {
		r.Log.Warn().
			Str("channel", string(msg.Channel)).
			Msg("no sender configured for channel, reply dropped")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
		defer cancel()

		if err := s.Send(ctx, msg, text); err != nil {
			r.Log.Error().Err(err).
				Str("channel", string(msg.Channel)).
				Int64("user_id", msg.UserID).
				Int64("group_id", msg.GroupID).
				Msg("reply delivery failed")
		}
	}()
}
