// QQ official webhook.
//
// The platform pushes two kinds of payloads to the callback URL. An op 13
// payload is the endpoint-validation handshake: the bot must sign
// event_ts + plain_token with an ed25519 key derived from the app secret and
// echo the signature back. An op 0 payload is an event dispatch; the only
// event handled is GROUP_AT_MESSAGE_CREATE, the at-message in a QQ group.
package handlers

import (
	"crypto/ed25519"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AsilenceBTF/sf6bot/internal/bot"
	"github.com/AsilenceBTF/sf6bot/internal/domain"
	"github.com/AsilenceBTF/sf6bot/internal/http/middleware"
)

// QQ webhook opcodes.
const (
	opDispatch   = 0
	opValidation = 13
)

// qqPayload is the envelope every webhook delivery arrives in. The d field is
// decoded a second time once op and t identify its concrete shape.
type qqPayload struct {
	Op   int         `json:"op"`
	ID   string      `json:"id"`
	Type string      `json:"t"`
	Data qqEventData `json:"d"`
}

type qqEventData struct {
	// op 13 validation
	PlainToken string `json:"plain_token"`
	EventTS    string `json:"event_ts"`

	// GROUP_AT_MESSAGE_CREATE
	MsgID       string   `json:"id"`
	Content     string   `json:"content"`
	GroupOpenID string   `json:"group_openid"`
	Author      qqAuthor `json:"author"`
}

type qqAuthor struct {
	MemberOpenID string `json:"member_openid"`
}

// QQHandler serves the official-platform webhook.
type QQHandler struct {
	AppSecret  string
	Dispatcher *bot.Dispatcher
}

// Post handles one webhook delivery.
func (h *QQHandler) Post(c *gin.Context) {
	var payload qqPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "malformed webhook payload")
		return
	}

	switch payload.Op {
	case opValidation:
		h.validate(c, payload.Data)
	case opDispatch:
		h.dispatch(c, payload)
	default:
		// Unknown opcodes are acknowledged so the platform does not retry.
		c.Status(http.StatusAccepted)
	}
}

// validate answers the endpoint-verification challenge. The signing seed is
// the app secret repeated until it fills the ed25519 seed size.
func (h *QQHandler) validate(c *gin.Context, d qqEventData) {
	if h.AppSecret == "" || d.PlainToken == "" {
		fail(c, http.StatusBadRequest, codeBadRequest, "validation payload incomplete")
		return
	}

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = h.AppSecret[i%len(h.AppSecret)]
	}
	key := ed25519.NewKeyFromSeed(seed)
	sig := ed25519.Sign(key, []byte(d.EventTS+d.PlainToken))

	ok(c, gin.H{
		"plain_token": d.PlainToken,
		"signature":   hex.EncodeToString(sig),
	})
}

func (h *QQHandler) dispatch(c *gin.Context, payload qqPayload) {
	if payload.Type != "GROUP_AT_MESSAGE_CREATE" {
		c.Status(http.StatusAccepted)
		return
	}

	msg := domain.InboundMessage{
		Channel:  domain.ChannelQQ,
		Content:  payload.Data.Content,
		Nickname: payload.Data.Author.MemberOpenID,
		QQ: &domain.QQReply{
			EventID:     payload.ID,
			MessageID:   payload.Data.MsgID,
			GroupOpenID: payload.Data.GroupOpenID,
		},
	}

	reply := h.Dispatcher.Handle(c.Request.Context(), msg)
	if reply == "" {
		c.Status(http.StatusAccepted)
		return
	}

	middleware.LoggerFrom(c).Info().
		Str("group_openid", payload.Data.GroupOpenID).
		Msg("qq command handled")
	ok(c, gin.H{"result": reply})
}
