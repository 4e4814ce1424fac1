// OneBot relay webhook.
//
// A NapCat-style relay pushes every message event it sees, including the
// bot's own outbound messages echoed back. Deliveries from the bot's own
// account are acknowledged without dispatching so the bot never answers
// itself.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AsilenceBTF/sf6bot/internal/bot"
	"github.com/AsilenceBTF/sf6bot/internal/domain"
	"github.com/AsilenceBTF/sf6bot/internal/http/middleware"
)

// onebotEvent is the subset of the OneBot v11 message event the bot reads.
// RawMessage carries the CQ-coded text (at-tags included), which is what
// mention detection needs.
type onebotEvent struct {
	PostType   string       `json:"post_type"`
	SelfID     int64        `json:"self_id"`
	UserID     int64        `json:"user_id"`
	GroupID    int64        `json:"group_id"`
	RawMessage string       `json:"raw_message"`
	Sender     onebotSender `json:"sender"`
}

type onebotSender struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
}

// OneBotHandler serves the relay webhook.
type OneBotHandler struct {
	BotUserID  int64
	Dispatcher *bot.Dispatcher
}

// Post handles one relay delivery.
func (h *OneBotHandler) Post(c *gin.Context) {
	var ev onebotEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "malformed relay payload")
		return
	}

	if ev.PostType != "" && ev.PostType != "message" {
		c.Status(http.StatusAccepted)
		return
	}
	if h.BotUserID != 0 && ev.UserID == h.BotUserID {
		// Echo of our own outbound message.
		c.Status(http.StatusAccepted)
		return
	}

	nickname := ev.Sender.Nickname
	msg := domain.InboundMessage{
		Channel:  domain.ChannelOneBot,
		UserID:   ev.UserID,
		GroupID:  ev.GroupID,
		Nickname: nickname,
		Content:  ev.RawMessage,
	}

	reply := h.Dispatcher.Handle(c.Request.Context(), msg)
	if reply == "" {
		c.Status(http.StatusAccepted)
		return
	}

	middleware.LoggerFrom(c).Info().
		Int64("user_id", ev.UserID).
		Int64("group_id", ev.GroupID).
		Msg("relay command handled")
	ok(c, gin.H{"result": reply})
}
