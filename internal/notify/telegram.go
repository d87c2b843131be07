package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned by TelegramClient when no bot token is set.
var ErrNotConfigured = errors.New("telegram bot token not configured")

// APIError is a non-ok response from the Bot API.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api: %d %s", e.StatusCode, e.Description)
}

// Permanent reports whether retrying the same request cannot succeed, e.g.
// the user blocked the bot or the chat does not exist.
func (e *APIError) Permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// TelegramClient calls the Bot API sendMessage method.
type TelegramClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewTelegramClient(baseURL, token string) *TelegramClient {
	return &TelegramClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage delivers text to chatID. parseMode may be empty.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text, parseMode string) error {
	if c.Token == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: parseMode})
	if err != nil {
		return err
	}
	endpoint := c.BaseURL + "/bot" + c.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// The URL carries the token; keep it out of logs and job errors.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("send message: %w", urlErr.Err)
		}
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.OK {
		code := out.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{StatusCode: code, Description: out.Description}
	}
	return nil
}
