package opencode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ToastVariant selects the styling of a TUI toast.
type ToastVariant string

const (
	ToastInfo    ToastVariant = "info"
	ToastSuccess ToastVariant = "success"
	ToastWarning ToastVariant = "warning"
	ToastError   ToastVariant = "error"
)

// Valid reports whether v is a variant the TUI understands.
func (v ToastVariant) Valid() bool {
	switch v {
	case ToastInfo, ToastSuccess, ToastWarning, ToastError:
		return true
	}
	return false
}

// Toast is a transient TUI notification.
type Toast struct {
	Title   string       `json:"title,omitempty"`
	Message string       `json:"message"`
	Variant ToastVariant `json:"variant"`
}

// Client calls the opencode server HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ShowToast displays a toast in the TUI.
func (c *Client) ShowToast(ctx context.Context, toast Toast) error {
	if toast.Variant == "" {
		toast.Variant = ToastInfo
	}
	return c.post(ctx, "/tui/show-toast", toast)
}

// AppendPrompt appends text to the TUI prompt input.
func (c *Client) AppendPrompt(ctx context.Context, text string) error {
	return c.post(ctx, "/tui/append-prompt", struct {
		Text string `json:"text"`
	}{Text: text})
}

func (c *Client) endpoint(path string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme", c.baseURL)
	}
	return u.String(), nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("opencode returned status %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(msg)))
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
