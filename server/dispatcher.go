// Package server owns the TCP listener, the per-connection read loop and the
// action dispatcher that sits between the wire and the controllers.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"

	"Tcp_postgres_redis_library_system/db"
	"Tcp_postgres_redis_library_system/protocol"
	"Tcp_postgres_redis_library_system/session"
)

// Identity is the verified (user, role) pair a token resolves to.
type Identity struct {
	UserID uint
	Role   string
}

// ConnState is the connection-local view a handler may touch. Token is a
// convenience cache of the last token this connection logged in with; the
// session registry stays the source of truth.
type ConnState struct {
	RemoteAddr string
	Token      string
}

// Call carries one request through authentication into a handler.
type Call struct {
	Req      *protocol.Request
	Identity Identity
	Token    string
	Conn     *ConnState
}

// HandlerFunc executes one action and returns the response data and a
// human-readable success message. Expected failures come back as sentinel
// errors or *RequestError; anything else is reported as an internal error.
type HandlerFunc func(ctx context.Context, c *Call) (any, string, error)

// RequestError is an expected failure whose message is safe to send to the
// client verbatim.
type RequestError struct{ Message string }

func (e *RequestError) Error() string { return e.Message }

// Failf builds a client-visible failure.
func Failf(format string, args ...any) error {
	return &RequestError{Message: fmt.Sprintf(format, args...)}
}

type route struct {
	policy  Policy
	handler HandlerFunc
}

// Dispatcher routes an action name to its handler, enforcing the
// authenticate → authorize sequence first.
type Dispatcher struct {
	routes   map[string]route
	tokens   *session.TokenService
	presence *presence
}

func NewDispatcher(tokens *session.TokenService, p *presence) *Dispatcher {
	return &Dispatcher{
		routes:   make(map[string]route),
		tokens:   tokens,
		presence: p,
	}
}

// Handle registers an action. Registering the same action twice is a
// programming error.
func (d *Dispatcher) Handle(action string, policy Policy, h HandlerFunc) {
	if _, dup := d.routes[action]; dup {
		panic("duplicate action: " + action)
	}
	d.routes[action] = route{policy: policy, handler: h}
}

// Dispatch runs one request to completion and always produces a response
// envelope. success=false responses carry an empty data field.
func (d *Dispatcher) Dispatch(ctx context.Context, cs *ConnState, req *protocol.Request) *protocol.Response {
	resp := &protocol.Response{Action: req.Action, RequestID: req.RequestID}

	rt, known := d.routes[req.Action]
	if !known {
		resp.Message = fmt.Sprintf("Unknown action: %s", req.Action)
		return resp
	}

	call := &Call{Req: req, Conn: cs}

	if rt.policy != Public {
		token := req.Token
		if token == "" {
			token = cs.Token
		}
		ok, userID, role := d.tokens.Verify(ctx, token)
		if !ok {
			resp.Message = "Authentication required"
			return resp
		}
		call.Identity = Identity{UserID: userID, Role: role}
		call.Token = token
		if msg := authorize(rt.policy, call.Identity, req); msg != "" {
			resp.Message = msg
			return resp
		}
		if d.presence != nil {
			d.presence.touch(ctx, userID)
		}
	}

	data, msg, err := rt.handler(ctx, call)
	if err != nil {
		resp.Message = failureMessage(req.Action, err)
		return resp
	}
	resp.Success = true
	resp.Message = msg
	resp.Data = data
	return resp
}

// failureMessage maps an error to a client-facing message without echoing
// internal error text for unexpected faults.
func failureMessage(action string, err error) string {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.Message
	case errors.Is(err, db.ErrNotFound):
		return "Record not found"
	case errors.Is(err, db.ErrNotAvailable):
		return "Book is not available"
	case errors.Is(err, db.ErrConflict):
		return "Conflict with existing records"
	case errors.Is(err, db.ErrInvalidState):
		return "Operation not allowed in the current state"
	default:
		log.Printf("action %s failed: %v", action, err)
		return "Internal server error"
	}
}
