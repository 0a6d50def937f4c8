package chnative

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/cloudflare/ch-native/compress"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// State is a Session's place in the query lifecycle.
type State uint8

const (
	Idle State = iota
	Sending
	Receiving
	Cancelling
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Receiving:
		return "receiving"
	case Cancelling:
		return "cancelling"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is a connection-scoped object owning the framed stream, the
// negotiated server revision and capabilities, the compression method, and
// the current query state. A mutex guards only the state field; a Query or
// Insert started while another is in flight fails the state-transition
// check instead of waiting. Sessions are independent and may run
// concurrently on distinct goroutines, but a single Session is not safe for
// concurrent use by multiple callers.
type Session struct {
	mu    sync.Mutex
	state State

	conn   net.Conn
	addr   string
	opts   Options
	pool   *pool.Pool
	logger zerolog.Logger
	tracer trace.Tracer

	server proto.ServerInfo
	revision uint64
	compression compress.Method

	reader *proto.Reader
	writer *proto.Writer

	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newSession(conn net.Conn, opts Options, addr string) (*Session, error) {
	s := &Session{
		conn:         conn,
		addr:         addr,
		opts:         opts,
		pool:         opts.pool(),
		logger:       opts.Logger.With().Str("component", "chnative.session").Str("addr", addr).Logger(),
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
		compression:  opts.Compression,
	}
	if opts.TracerProvider != nil {
		s.tracer = opts.TracerProvider.Tracer("github.com/cloudflare/ch-native")
	}

	s.reader = proto.NewReader(conn)
	s.writer = proto.NewWriter(conn)

	if err := s.handshake(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) handshake() error {
	if err := s.writer.Uvarint(uint64(proto.ClientHello)); err != nil {
		return NewTransportError(err, "chnative: writing Hello")
	}
	if err := s.writer.String(proto.ClientName); err != nil {
		return NewTransportError(err, "chnative: writing client name")
	}
	if err := s.writer.Uvarint(proto.ClientVersionMajor); err != nil {
		return NewTransportError(err, "chnative: writing version major")
	}
	if err := s.writer.Uvarint(proto.ClientVersionMinor); err != nil {
		return NewTransportError(err, "chnative: writing version minor")
	}
	if err := s.writer.Uvarint(proto.ClientRevision); err != nil {
		return NewTransportError(err, "chnative: writing client revision")
	}
	if err := s.writer.String(s.opts.Database); err != nil {
		return NewTransportError(err, "chnative: writing database")
	}
	if err := s.writer.String(s.opts.User); err != nil {
		return NewTransportError(err, "chnative: writing user")
	}
	if err := s.writer.String(s.opts.Password); err != nil {
		return NewTransportError(err, "chnative: writing password")
	}

	tag, err := s.reader.Uvarint()
	if err != nil {
		return NewTransportError(err, "chnative: reading Hello response")
	}
	if proto.ServerPacket(tag) == proto.ServerException {
		return s.readServerException()
	}
	if proto.ServerPacket(tag) != proto.ServerHello {
		return NewProtocolError(nil, "chnative: expected Hello, got packet tag %d", tag)
	}
	if err := s.server.Read(s.reader); err != nil {
		return NewProtocolError(err, "chnative: reading ServerInfo")
	}
	if s.server.Revision < proto.MinServerRevision {
		return NewProtocolError(nil, "chnative: server revision %d below minimum %d", s.server.Revision, proto.MinServerRevision)
	}
	s.revision = s.server.EffectiveRevision(proto.ClientRevision)

	s.logger.Debug().
		Str("server_name", s.server.Name).
		Uint64("server_revision", s.server.Revision).
		Uint64("effective_revision", s.revision).
		Msg("handshake complete")
	return nil
}

func (s *Session) readServerException() error {
	exc, err := proto.ReadException(s.reader)
	if err != nil {
		return NewTransportError(err, "chnative: reading Exception during handshake")
	}
	return NewServerError(exc.Code, exc.Name, exc.Message)
}

// transition moves the state machine to next, failing the session if the
// current state is not one of from.
func (s *Session) transition(from []State, next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range from {
		if s.state == f {
			s.state = next
			return nil
		}
	}
	return NewProtocolError(nil, "chnative: invalid state transition from %s to %s", s.state, next)
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears down the underlying connection. A closed Session is not
// reusable.
func (s *Session) Close() error {
	s.setState(Failed)
	return s.conn.Close()
}

func newQueryID() string {
	return uuid.New().String()
}

// watchCancel sets *cancelled once ctx is done; Rows.Next and
// Inserter.Write consult the flag between packets, never pre-empting
// in-flight I/O. It writes nothing to the connection: no Cancel packet is
// sent to the server.
func (s *Session) watchCancel(ctx context.Context, cancelled *bool) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			*cancelled = true
			s.mu.Unlock()
		case <-done:
		}
	}()
	return func() { close(done) }
}
