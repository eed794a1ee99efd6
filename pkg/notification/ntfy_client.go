package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NtfyClient publishes notifications to an ntfy topic
type NtfyClient struct {
	serverURL  string
	topic      string
	httpClient *http.Client
}

// NewNtfyClient creates a new ntfy client
func NewNtfyClient(serverURL, topic string) *NtfyClient {
	return &NtfyClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		topic:     topic,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ntfyMessage struct {
	Topic   string   `json:"topic"`
	Title   string   `json:"title,omitempty"`
	Message string   `json:"message"`
	Tags    []string `json:"tags,omitempty"`
}

// Send implements the Notifier interface
func (c *NtfyClient) Send(notification Notification) error {
	payload, err := json.Marshal(ntfyMessage{
		Topic:   c.topic,
		Title:   notification.Title,
		Message: notification.Message,
		Tags:    []string{"bulb"},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal ntfy message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.serverURL+"/", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create ntfy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send ntfy notification: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
