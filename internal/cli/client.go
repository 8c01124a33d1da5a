package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tankarena/lobby-server/internal/protocol"
)

const dialTimeout = 10 * time.Second

// Client is a websocket client for the lobby protocol
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the lobby websocket endpoint
func Dial(ctx context.Context, wsURL string) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connection failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	return &Client{conn: conn}, nil
}

// Close closes the websocket connection
func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Send writes one JSON message to the server
func (c *Client) Send(msg any) error {
	return c.conn.WriteJSON(msg)
}

// Read blocks until the next frame arrives
func (c *Client) Read() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	return data, nil
}

// Frame is one decoded server message with its raw payload kept around
type Frame struct {
	Type protocol.MessageType
	Raw  json.RawMessage
}

// ReadFrame reads and envelope-decodes the next server message
func (c *Client) ReadFrame() (*Frame, error) {
	data, err := c.Read()
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Type protocol.MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("malformed server frame: %w", err)
	}

	return &Frame{Type: envelope.Type, Raw: data}, nil
}

// WaitFor reads frames until one of the wanted types arrives, discarding
// unrelated broadcasts along the way
func (c *Client) WaitFor(deadline time.Duration, want ...protocol.MessageType) (*Frame, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		frame, err := c.ReadFrame()
		if err != nil {
			return nil, err
		}
		for _, w := range want {
			if frame.Type == w {
				return frame, nil
			}
		}
	}
}

// CheckHealth calls the HTTP health endpoint
func CheckHealth(ctx context.Context, healthURL string) (*HealthResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpClient := &http.Client{Timeout: dialTimeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result HealthResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
