// Package client is the Go side of the library protocol: it frames
// requests, correlates responses by request_id and carries the bearer token
// across calls. The GUI and any tooling talk to the server only through it.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"Tcp_postgres_redis_library_system/protocol"

	"github.com/google/uuid"
)

// ErrDisconnected is returned for calls made after the transport dropped.
var ErrDisconnected = errors.New("client: disconnected")

type Client struct {
	maxFrame uint32

	writeMu sync.Mutex // serializes frame writes
	conn    net.Conn

	mu      sync.Mutex
	token   string
	pending map[string]chan *protocol.Response
	closed  bool
	cause   error // first reader error, reported to later callers
}

// Dial connects and starts the response reader.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		maxFrame: protocol.DefaultMaxFrameSize,
		conn:     conn,
		pending:  make(map[string]chan *protocol.Response),
	}
	go c.readLoop()
	return c, nil
}

// Close drops the connection and fails every outstanding call.
func (c *Client) Close() error {
	c.fail(ErrDisconnected)
	return nil
}

// Token returns the bearer token of the current session, if any.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken overrides the session token, e.g. to resume a prior session.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Call sends one request and waits for its correlated response. Exactly one
// waiter exists per request_id and it is removed exactly once, whether the
// response arrives, the context expires or the transport drops.
func (c *Client) Call(ctx context.Context, action string, data any) (*protocol.Response, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	id := uuid.NewString()
	ch := make(chan *protocol.Response, 1)

	c.mu.Lock()
	if c.closed {
		cause := c.cause
		c.mu.Unlock()
		return nil, cause
	}
	token := c.token
	c.pending[id] = ch
	c.mu.Unlock()

	req := &protocol.Request{Action: action, Data: raw, Token: token, RequestID: id}
	c.writeMu.Lock()
	err := protocol.WriteRequest(c.conn, req, c.maxFrame)
	c.writeMu.Unlock()
	if err != nil {
		c.drop(id)
		c.fail(fmt.Errorf("client: write: %w", err))
		return nil, err
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			c.mu.Lock()
			cause := c.cause
			c.mu.Unlock()
			return nil, cause
		}
		return resp, nil
	case <-ctx.Done():
		c.drop(id)
		return nil, ctx.Err()
	}
}

func (c *Client) drop(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readLoop delivers responses to their waiters until the stream ends.
func (c *Client) readLoop() {
	for {
		resp, err := protocol.ReadResponse(c.conn, c.maxFrame)
		if err != nil {
			c.fail(fmt.Errorf("client: read: %w", err))
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.RequestID]
		if ok {
			delete(c.pending, resp.RequestID)
		}
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// fail marks the transport disconnected and wakes every waiter.
func (c *Client) fail(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cause = cause
	pending := c.pending
	c.pending = make(map[string]chan *protocol.Response)
	c.mu.Unlock()

	_ = c.conn.Close()
	for _, ch := range pending {
		close(ch)
	}
}

// DecodeData re-decodes a response's data object into v.
func DecodeData(resp *protocol.Response, v any) error {
	b, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
