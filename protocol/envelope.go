package protocol

import (
	"encoding/json"
	"io"
)

// Request is the envelope every client message arrives in. Data stays raw
// until the action is known; each handler unmarshals it into its own payload
// struct.
type Request struct {
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data,omitempty"`
	Token     string          `json:"token,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// Response mirrors Request. Data is empty whenever Success is false.
type Response struct {
	Action    string `json:"action"`
	RequestID string `json:"request_id,omitempty"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

// Bind unmarshals the request's data object into v.
func (r *Request) Bind(v any) error {
	if len(r.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(r.Data, v)
}

// ReadRequest reads and decodes one request frame.
func ReadRequest(r io.Reader, maxSize uint32) (*Request, error) {
	payload, err := ReadFrame(r, maxSize)
	if err != nil {
		return nil, err
	}
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, frameErrorf("payload is not a JSON request: %v", err)
	}
	return &req, nil
}

// WriteResponse encodes and writes one response frame.
func WriteResponse(w io.Writer, resp *Response, maxSize uint32) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload, maxSize)
}

// ReadResponse reads and decodes one response frame (client side).
func ReadResponse(r io.Reader, maxSize uint32) (*Response, error) {
	payload, err := ReadFrame(r, maxSize)
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, frameErrorf("payload is not a JSON response: %v", err)
	}
	return &resp, nil
}

// WriteRequest encodes and writes one request frame (client side).
func WriteRequest(w io.Writer, req *Request, maxSize uint32) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return WriteFrame(w, payload, maxSize)
}
