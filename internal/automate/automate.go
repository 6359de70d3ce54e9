// Package automate posts event alerts to the configured automation webhook
// endpoints. Delivery is fire-and-forget: a dead endpoint must never slow
// down or fail the request that triggered the alert.
package automate

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type Client struct {
	UserEventURL  string
	OrderEventURL string
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

func NewClient(userURL, orderURL string, logger *slog.Logger) *Client {
	return &Client{
		UserEventURL:  userURL,
		OrderEventURL: orderURL,
		HTTPClient:    &http.Client{Timeout: 5 * time.Second},
		Logger:        logger,
	}
}

// NotifyUserEvent fires a signup/login alert in the background.
func (c *Client) NotifyUserEvent(payload map[string]any) {
	if c == nil {
		return
	}
	c.post(c.UserEventURL, payload)
}

// NotifyOrderEvent fires an order alert in the background.
func (c *Client) NotifyOrderEvent(payload map[string]any) {
	if c == nil {
		return
	}
	c.post(c.OrderEventURL, payload)
}

func (c *Client) post(url string, payload map[string]any) {
	if url == "" {
		return
	}

	payload["time"] = time.Now().UTC().Format(time.RFC3339)

	go func() {
		data, err := json.Marshal(payload)
		if err != nil {
			c.log("automate: marshal failed", err)
			return
		}
		resp, err := c.HTTPClient.Post(url, "application/json", bytes.NewReader(data))
		if err != nil {
			c.log("automate: post failed", err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			c.log("automate: endpoint returned "+resp.Status, nil)
		}
	}()
}

func (c *Client) log(msg string, err error) {
	if c.Logger == nil {
		return
	}
	if err != nil {
		c.Logger.Error(msg, "error", err)
		return
	}
	c.Logger.Error(msg)
}
