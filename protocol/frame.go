// Package protocol implements the wire format shared by server and client:
// a 4-byte big-endian length prefix followed by that many bytes of UTF-8 JSON.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultMaxFrameSize caps a single frame's payload. A peer announcing more
// than this is treated as malformed and the connection is dropped.
const DefaultMaxFrameSize = 16 << 20 // 16 MiB

// FrameError marks a malformed or oversized frame. Connection-fatal: the
// stream position is unrecoverable once a bad prefix has been read.
type FrameError struct {
	Reason string
}

func (e *FrameError) Error() string { return "frame error: " + e.Reason }

func frameErrorf(format string, args ...any) *FrameError {
	return &FrameError{Reason: fmt.Sprintf(format, args...)}
}

// EncodeFrame prefixes payload with its length.
func EncodeFrame(payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)
	return buf
}

// WriteFrame writes one length-prefixed frame to w. A maxSize of 0 means
// DefaultMaxFrameSize, mirroring ReadFrame.
func WriteFrame(w io.Writer, payload []byte, maxSize uint32) error {
	if maxSize == 0 {
		maxSize = DefaultMaxFrameSize
	}
	if uint64(len(payload)) > uint64(maxSize) {
		return frameErrorf("payload of %d bytes exceeds limit of %d", len(payload), maxSize)
	}
	_, err := w.Write(EncodeFrame(payload))
	return err
}

// ReadFrame reads one frame from r, accumulating short reads until the
// announced length is available. A clean close before the first length byte
// surfaces as io.EOF; a close mid-frame as io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader, maxSize uint32) ([]byte, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxFrameSize
	}
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(prefix[:])
	if length > maxSize {
		return nil, frameErrorf("announced payload of %d bytes exceeds limit of %d", length, maxSize)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if !utf8.Valid(payload) {
		return nil, frameErrorf("payload is not valid UTF-8")
	}
	return payload, nil
}
