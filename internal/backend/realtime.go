package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Row payloads are small; anything bigger than this is not ours.
	maxEventSize = 64 << 10
)

// subscribeMessage is the join frame sent after the websocket opens. Filter
// uses the same column=eq.value grammar as the row API.
type subscribeMessage struct {
	Event  string `json:"event"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

// Subscribe opens a realtime feed of row changes on one table, optionally
// filtered. Events arrive on the returned channel until the context is
// cancelled or the connection drops; the channel is closed either way.
// Consumers must treat the feed as a hint, not a source of truth: a dropped
// feed just means the next reload catches up.
func (c *Client) Subscribe(ctx context.Context, token, table, filter string) (<-chan domain.ChangeEvent, error) {
	u, err := url.Parse(c.RealtimeURL)
	if err != nil {
		return nil, fmt.Errorf("bad realtime url: %w", err)
	}
	q := u.Query()
	q.Set("apikey", c.APIKey)
	if token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("realtime dial failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	join := subscribeMessage{Event: "subscribe", Table: table, Filter: filter}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return nil, fmt.Errorf("realtime subscribe failed: %w", err)
	}

	events := make(chan domain.ChangeEvent)
	go c.readPump(ctx, conn, table, events)
	go c.pingPump(ctx, conn)
	return events, nil
}

func (c *Client) readPump(ctx context.Context, conn *websocket.Conn, table string, events chan<- domain.ChangeEvent) {
	defer close(events)
	defer conn.Close()

	conn.SetReadLimit(maxEventSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warn("realtime feed closed", "table", table, "error", err)
			}
			return
		}

		var event domain.ChangeEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			logger.Log.Warn("discarding malformed realtime frame", "table", table, "error", err)
			continue
		}
		if event.Table == "" || event.Kind == "" {
			// Heartbeats and subscription acks come down the same pipe.
			continue
		}
		// Cancellation must unblock a pending send too, not just ReadMessage.
		select {
		case events <- event:
		case <-ctx.Done():
			return
		}
	}
}

// pingPump keeps the connection alive and tears it down on context cancel.
// Closing the connection unblocks readPump, which closes the event channel.
func (c *Client) pingPump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
