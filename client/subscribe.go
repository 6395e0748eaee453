package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pustaka-backend/internal/messaging"
)

const (
	backoffInitial = time.Second
	backoffMax     = 30 * time.Second
)

// OnStreamError installs a callback for stream failures. Subscribe keeps
// reconnecting regardless; the hook exists so callers can log the cause.
func (c *Client) OnStreamError(fn func(error)) {
	c.streamErr = fn
}

// Subscribe consumes the message event stream and invokes onEvent for
// every notification, in sequence order. It reconnects with
// exponential backoff and blocks until ctx is done. A connection that
// reaches the server resets the backoff, so routine drops of healthy
// streams (idle proxies, deploys) reconnect at the initial delay.
//
// The stream carries no replay: after every (re)connect the consumer
// must do one full re-fetch, signalled here by onResync. Events whose
// sequence is not newer than the last applied one are dropped, so a
// duplicate delivered across a reconnect cannot rewind state.
func (c *Client) Subscribe(ctx context.Context, onResync func(), onEvent func(messaging.Event)) error {
	var lastSeq uint64
	delay := c.reconnectMin

	for {
		connected := false
		err := c.streamOnce(ctx, &lastSeq, func() {
			connected = true
			if onResync != nil {
				onResync()
			}
		}, onEvent)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && c.streamErr != nil {
			c.streamErr(err)
		}
		if connected {
			delay = c.reconnectMin
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.reconnectMax {
			delay = c.reconnectMax
		}
	}
}

// streamOnce runs one connection. onReady fires once the server's
// opening "ready" event arrives, which is the point the connection
// counts as established.
func (c *Client) streamOnce(ctx context.Context, lastSeq *uint64, onReady func(), onEvent func(messaging.Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/messages/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	// No client timeout here, the stream is long-lived; ctx owns it.
	resp, err := c.streamHTTP().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream: http %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	var kind, data string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			kind = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if kind == "ready" {
				onReady()
			} else if kind != "" && data != "" {
				var ev messaging.Event
				if err := json.Unmarshal([]byte(data), &ev); err == nil && ev.Seq > *lastSeq {
					*lastSeq = ev.Seq
					onEvent(ev)
				}
			}
			kind, data = "", ""
		}
	}
	return sc.Err()
}

func (c *Client) streamHTTP() *http.Client {
	cp := *c.http
	cp.Timeout = 0
	return &cp
}
