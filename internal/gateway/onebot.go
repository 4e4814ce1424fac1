package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/AsilenceBTF/sf6bot/internal/command"
	"github.com/AsilenceBTF/sf6bot/internal/domain"
)

// OneBotSender posts replies to a NapCat-style OneBot v11 HTTP endpoint.
// Group replies are prefixed with an at-mention of the addressed user so the
// answer is attributable inside a busy group.
type OneBotSender struct {
	URL        string
	Token      string
	HTTPClient *http.Client
}

func (s *OneBotSender) Send(ctx context.Context, origin domain.InboundMessage, text string) error {
	var (
		endpoint string
		payload  map[string]any
	)
	if origin.InGroup() {
		endpoint = s.URL + "/send_group_msg"
		payload = map[string]any{
			"group_id": origin.GroupID,
			"message":  command.MentionTag(origin.UserID) + "\n" + text,
		}
	} else {
		endpoint = s.URL + "/send_private_msg"
		payload = map[string]any{
			"user_id": origin.UserID,
			"message": text,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	hc := s.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("onebot send failed: %s: %s", resp.Status, string(b))
	}
	return nil
}
