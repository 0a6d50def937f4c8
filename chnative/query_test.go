package chnative

import (
	"bytes"
	"testing"

	"github.com/cloudflare/ch-native/block"
	"github.com/cloudflare/ch-native/compress"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(buf *bytes.Buffer) *Session {
	return &Session{
		writer:      proto.NewWriter(buf),
		reader:      proto.NewReader(buf),
		revision:    proto.ClientRevision,
		compression: compress.MethodLZ4,
		pool:        pool.NewDefault(),
	}
}

func TestWriteQueryPacketWireFormat(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSession(&buf)

	require.NoError(t, s.writeQueryPacket("query-1", "SELECT 1", map[string]string{"max_threads": "4"}))

	r := proto.NewReader(&buf)
	tag, err := r.Uvarint()
	require.NoError(t, err)
	assert.Equal(t, uint64(proto.ClientQuery), tag)

	queryID, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "query-1", queryID)

	// ClientInfo.Query kind byte, since revision >= RevisionWithClientInfo.
	kind, err := r.UInt8()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), kind)
}

func TestWriteQueryPacketNoCompression(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSession(&buf)
	s.compression = compress.MethodNone

	require.NoError(t, s.writeQueryPacket("q", "SELECT 1", nil))
	assert.True(t, buf.Len() > 0)
}

func TestReadPacketTag(t *testing.T) {
	var buf bytes.Buffer
	w := proto.NewWriter(&buf)
	require.NoError(t, w.Uvarint(uint64(proto.ServerData)))

	s := &Session{reader: proto.NewReader(&buf)}
	tag, err := s.readPacketTag()
	require.NoError(t, err)
	assert.Equal(t, proto.ServerData, tag)
}

func TestWriteSentinelBlockIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSession(&buf)
	require.NoError(t, s.writeSentinelBlock())

	r := proto.NewReader(&buf)
	b, err := block.Read(r, s.pool)
	require.NoError(t, err)
	assert.True(t, b.Empty())
}
