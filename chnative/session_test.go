package chnative

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cloudflare/ch-native/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveHello plays the server side of a handshake on conn: it reads the
// Hello request fields (discarding them) and writes back a ServerHello
// response at the given revision.
func serveHello(t *testing.T, conn net.Conn, revision uint64) {
	t.Helper()
	r := proto.NewReader(conn)
	w := proto.NewWriter(conn)

	_, err := r.Uvarint() // Hello tag
	require.NoError(t, err)
	_, err = r.String() // client name
	require.NoError(t, err)
	_, err = r.Uvarint() // version major
	require.NoError(t, err)
	_, err = r.Uvarint() // version minor
	require.NoError(t, err)
	_, err = r.Uvarint() // client revision
	require.NoError(t, err)
	_, err = r.String() // database
	require.NoError(t, err)
	_, err = r.String() // user
	require.NoError(t, err)
	_, err = r.String() // password
	require.NoError(t, err)

	require.NoError(t, w.Uvarint(uint64(proto.ServerHello)))
	require.NoError(t, w.String("ClickHouse"))
	require.NoError(t, w.Uvarint(23))
	require.NoError(t, w.Uvarint(8))
	require.NoError(t, w.Uvarint(revision))
	if revision >= proto.RevisionWithServerTimezone {
		require.NoError(t, w.String("UTC"))
	}
	if revision >= proto.RevisionWithClientInfo {
		require.NoError(t, w.String("prod-01"))
	}
	if revision >= proto.RevisionWithVersionPatch {
		require.NoError(t, w.Uvarint(1))
	}
}

func serveHelloException(t *testing.T, conn net.Conn) {
	t.Helper()
	r := proto.NewReader(conn)
	w := proto.NewWriter(conn)
	_, err := r.Uvarint() // Hello tag
	require.NoError(t, err)
	_, err = r.String() // client name
	require.NoError(t, err)
	_, err = r.Uvarint() // version major
	require.NoError(t, err)
	_, err = r.Uvarint() // version minor
	require.NoError(t, err)
	_, err = r.Uvarint() // client revision
	require.NoError(t, err)
	_, err = r.String() // database
	require.NoError(t, err)
	_, err = r.String() // user
	require.NoError(t, err)
	_, err = r.String() // password
	require.NoError(t, err)

	require.NoError(t, w.Uvarint(uint64(proto.ServerException)))
	require.NoError(t, w.Int32(516))
	require.NoError(t, w.String("DB::Exception"))
	require.NoError(t, w.String("Authentication failed"))
	require.NoError(t, w.String(""))
	require.NoError(t, w.Bool(false))
}

func TestSessionHandshakeSuccess(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		serveHello(t, server, proto.ClientRevision)
	}()

	opts := Options{Database: "default", User: "default"}
	s, err := newSession(client, opts, "test-addr")
	<-done
	require.NoError(t, err)
	assert.Equal(t, "ClickHouse", s.server.Name)
	assert.Equal(t, proto.ClientRevision, s.revision)
	assert.Equal(t, Idle, s.State())
}

func TestSessionHandshakeServerException(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		serveHelloException(t, server)
	}()

	opts := Options{Database: "default", User: "default"}
	_, err := newSession(client, opts, "test-addr")
	<-done
	require.Error(t, err)
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, int32(516), serverErr.Code)
}

func TestSessionStateTransitions(t *testing.T) {
	s := &Session{}
	require.NoError(t, s.transition([]State{Idle}, Sending))
	assert.Equal(t, Sending, s.State())

	err := s.transition([]State{Idle}, Receiving)
	require.Error(t, err)
	assert.IsType(t, &ProtocolError{}, err)

	s.setState(Idle)
	assert.Equal(t, Idle, s.State())
}

func TestWatchCancelSetsFlagOnContextDone(t *testing.T) {
	s := &Session{}
	ctx, cancel := context.WithCancel(context.Background())
	var cancelled bool
	stop := s.watchCancel(ctx, &cancelled)
	defer stop()

	cancel()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return cancelled
	}, time.Second, 5*time.Millisecond)
}
