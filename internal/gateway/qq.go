package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AsilenceBTF/sf6bot/internal/domain"
)

// QQSender posts replies through the official QQ group-message API. Every
// reply is a passive message: it must reference the event or message id of
// the webhook delivery that triggered it.
type QQSender struct {
	APIURL     string
	Tokens     *AppTokenSource
	HTTPClient *http.Client
}

func (s *QQSender) Send(ctx context.Context, origin domain.InboundMessage, text string) error {
	if origin.QQ == nil || origin.QQ.GroupOpenID == "" {
		return errors.New("qq reply without group openid")
	}

	token, err := s.Tokens.Get(ctx)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"content":  text,
		"msg_type": 0,
	}
	if origin.QQ.EventID != "" {
		payload["event_id"] = origin.QQ.EventID
	}
	if origin.QQ.MessageID != "" {
		payload["msg_id"] = origin.QQ.MessageID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v2/groups/%s/messages", s.APIURL, origin.QQ.GroupOpenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "QQBot "+token)

	hc := s.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qq send failed: %s: %s", resp.Status, string(b))
	}
	return nil
}
