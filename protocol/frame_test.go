package protocol

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkyReader hands out at most chunk bytes per Read to exercise the
// short-read accumulation path.
type chunkyReader struct {
	data  []byte
	chunk int
}

func (r *chunkyReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(p) {
		n = len(p)
	}
	if n > len(r.data) {
		n = len(r.data)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("{}"),
		[]byte(`{"action":"ping"}`),
		[]byte(""),
		bytes.Repeat([]byte("x"), 70000),
	}
	for _, p := range payloads {
		var buf bytes.Buffer
		require.NoError(t, WriteFrame(&buf, p, 0))
		got, err := ReadFrame(&buf, 0)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestFrameRoundTripChunked(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = byte('a' + rng.Intn(26))
	}
	encoded := EncodeFrame(payload)

	for _, chunk := range []int{1, 2, 3, 5, 7, 1024, len(encoded)} {
		r := &chunkyReader{data: append([]byte(nil), encoded...), chunk: chunk}
		got, err := ReadFrame(r, 0)
		require.NoError(t, err, "chunk size %d", chunk)
		assert.Equal(t, payload, got, "chunk size %d", chunk)
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameTruncated(t *testing.T) {
	encoded := EncodeFrame([]byte(`{"action":"ping"}`))
	for _, cut := range []int{1, 3, 4, 10, len(encoded) - 1} {
		_, err := ReadFrame(bytes.NewReader(encoded[:cut]), 0)
		require.Error(t, err, "cut at %d", cut)
		assert.NotErrorIs(t, err, io.EOF, "mid-frame close at %d must not look clean", cut)
	}
}

func TestWriteFrameHonorsConfiguredLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("z"), 2048)

	var buf bytes.Buffer
	err := WriteFrame(&buf, payload, 1024)
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
	assert.Zero(t, buf.Len(), "nothing may hit the wire on a rejected frame")

	// a larger configured limit admits the same payload
	require.NoError(t, WriteFrame(&buf, payload, 4096))
	got, err := ReadFrame(&buf, 4096)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameOversized(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, bytes.Repeat([]byte("y"), 2048), 0))
	_, err := ReadFrame(&buf, 1024)
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
}

func TestReadFrameInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte{0xff, 0xfe, 0xfd}, 0))
	_, err := ReadFrame(&buf, 0)
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
}

func TestReadRequestRejectsNonJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("not json"), 0))
	_, err := ReadRequest(&buf, 0)
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
}

func TestRequestBindDefaultsToEmptyObject(t *testing.T) {
	var req Request
	var v struct {
		Query string `json:"query"`
	}
	require.NoError(t, req.Bind(&v))
	assert.Empty(t, v.Query)
}
