package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChatID is a chat-platform user identifier. Clients send it either as a
// JSON string or as a JSON number; both decode to the same decimal text.
type ChatID string

func (c *ChatID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("chat id: %w", err)
		}
		*c = ChatID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("chat id: %w", err)
	}
	*c = ChatID(n.String())
	return nil
}

func (c ChatID) String() string { return string(c) }
