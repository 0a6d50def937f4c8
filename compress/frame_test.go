package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, method Method, payload []byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, method, payload))
	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFrameRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("clickhouse native protocol payload "), 200)
	for _, m := range []Method{MethodNone, MethodLZ4, MethodZSTD} {
		roundTrip(t, m, payload)
	}
}

func TestFrameBoundariesIndependentOfChunking(t *testing.T) {
	a := []byte("first chunk of a row block")
	b := []byte("second chunk, a different row block")

	var oneFrame bytes.Buffer
	require.NoError(t, WriteFrame(&oneFrame, MethodLZ4, append(append([]byte{}, a...), b...)))

	var twoFrames bytes.Buffer
	require.NoError(t, WriteFrame(&twoFrames, MethodLZ4, a))
	require.NoError(t, WriteFrame(&twoFrames, MethodLZ4, b))

	got1, err := ReadFrame(&oneFrame)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, a...), b...), got1)

	got2a, err := ReadFrame(&twoFrames)
	require.NoError(t, err)
	got2b, err := ReadFrame(&twoFrames)
	require.NoError(t, err)
	assert.Equal(t, a, got2a)
	assert.Equal(t, b, got2b)
}

func TestChecksumDetectsBitFlip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, MethodLZ4, []byte("some bytes to corrupt")))

	raw := buf.Bytes()
	raw[HeaderSize] ^= 0xFF // flip the bits of the first payload byte, after the 25-byte header

	_, err := ReadFrame(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestStreamWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf, MethodLZ4)
	data := bytes.Repeat([]byte("row-oriented payload segment "), 5000)
	n, err := sw.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	require.NoError(t, sw.Flush())

	sr := NewStreamReader(&buf)
	got := make([]byte, len(data))
	total := 0
	for total < len(got) {
		n, err := sr.Read(got[total:])
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, data, got)
}
