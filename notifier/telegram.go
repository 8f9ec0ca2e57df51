package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bogdAAAn1/library-service/util/httpx"
)

type telegram struct {
	token  string
	chatID string
	client *http.Client
}

// NewTelegram dispatches to a Telegram chat via the Bot API.
func NewTelegram(token, chatID string) Dispatcher {
	return &telegram{token: token, chatID: chatID, client: httpx.Client()}
}

func (t *telegram) Notify(ctx context.Context, message string) error {
	body := map[string]any{
		"chat_id": t.chatID,
		"text":    message,
	}
	b, _ := json.Marshal(body)

	u := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram sendMessage failed: %s", resp.Status)
	}
	return nil
}
