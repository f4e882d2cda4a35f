// Package slack posts the reroute summary of Cloudflare regions to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/macrat/cfmon/internal/cferr"
)

// Message is a Slack message with Block Kit blocks.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks"`
}

// Block is a layout block of Block Kit.
type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Elements []Text `json:"elements,omitempty"`
}

// Text is a text object of Block Kit.
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Client posts messages to an incoming webhook.
type Client struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// New makes a Client for the incoming webhook url.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Post posts the message.
func (c *Client) Post(ctx context.Context, m Message) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(m)
	if err != nil {
		return cferr.New(cferr.ErrNotify, err, "failed to encode message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return cferr.New(cferr.ErrNotify, err, "invalid webhook URL")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return cferr.New(cferr.ErrNotify, err, "")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		bs, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return cferr.New(cferr.ErrNotify, nil, "unexpected status: %s: %s", resp.Status, strings.TrimSpace(string(bs)))
	}

	return nil
}
