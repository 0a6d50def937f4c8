package chnative

import (
	"context"

	chnarrow "github.com/cloudflare/ch-native/arrow"
	"github.com/cloudflare/ch-native/block"
	"github.com/cloudflare/ch-native/proto"

	goarrow "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.opentelemetry.io/otel/trace"
)

// Rows is a pull-driven cursor over a query's result blocks: each call to
// Next reads exactly one Data block (plus any intervening side-channel
// packets), matching the "no unbounded internal queue" back-pressure rule.
// Side-channel state is exposed through Progress/ProfileInfo, updated in
// place rather than through a separate channel.
type Rows struct {
	session *Session
	queryID string
	ctx     context.Context
	mem     memory.Allocator

	schema    *block.Block
	current   goarrow.Record
	err       error
	done      bool
	cancelled bool

	progress    proto.Progress
	profileInfo proto.ProfileInfo
	stopWatcher func()
	span        trace.Span
}

// Query issues the read path (§4.6) and returns a Rows cursor over the
// result. The Query packet and the empty external-tables block are sent
// synchronously; the server's schema-announcement block is consumed here
// so the first Next() call returns actual data.
func (s *Session) Query(ctx context.Context, sql string, settings map[string]string) (*Rows, error) {
	if err := s.transition([]State{Idle}, Sending); err != nil {
		return nil, err
	}

	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, "Session.Query")
	}

	queryID := newQueryID()
	if err := s.writeQueryPacket(queryID, sql, settings); err != nil {
		s.setState(Failed)
		if span != nil {
			span.End()
		}
		return nil, err
	}
	s.setState(Receiving)

	r := &Rows{session: s, queryID: queryID, ctx: ctx, mem: memory.NewGoAllocator()}
	r.stopWatcher = s.watchCancel(ctx, &r.cancelled)
	if span != nil {
		r.span = span
	}

	schemaBlock, err := r.readNextDataBlock()
	if err != nil {
		r.Close()
		return nil, err
	}
	r.schema = schemaBlock
	return r, nil
}

// Exec is a convenience wrapper over Query for statements that produce no
// rows.
func (s *Session) Exec(ctx context.Context, sql string) error {
	rows, err := s.Query(ctx, sql, nil)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

// Next reads the next Data block and reports whether a record batch is now
// available via RecordBatch. It returns false at EndOfStream, on error, or
// once the query context is cancelled.
func (r *Rows) Next() bool {
	if r.done || r.err != nil {
		return false
	}
	if r.cancelled {
		r.err = NewCancelledError(r.ctx.Err())
		r.drainAndClose()
		return false
	}

	b, err := r.readNextDataBlock()
	if err != nil {
		r.err = err
		r.drainAndClose()
		return false
	}
	if b == nil {
		r.done = true
		r.drainAndClose()
		return false
	}

	rec, err := chnarrow.FromBlock(b, r.mem)
	if err != nil {
		r.err = NewArrowError(err, "", 0)
		r.drainAndClose()
		return false
	}
	r.current = rec
	return true
}

// RecordBatch returns the batch produced by the most recent successful
// Next call.
func (r *Rows) RecordBatch() goarrow.Record { return r.current }

// Err returns the first error encountered, if any.
func (r *Rows) Err() error { return r.err }

// Progress returns the most recently observed Progress side-channel value.
func (r *Rows) Progress() proto.Progress { return r.progress }

// ProfileInfo returns the most recently observed ProfileInfo side-channel
// value.
func (r *Rows) ProfileInfo() proto.ProfileInfo { return r.profileInfo }

// Close releases the cursor's resources. It is safe to call multiple
// times and after the query has already completed.
func (r *Rows) Close() error {
	if r.stopWatcher != nil {
		r.stopWatcher()
		r.stopWatcher = nil
	}
	if r.current != nil {
		r.current.Release()
		r.current = nil
	}
	if r.span != nil {
		r.span.End()
		r.span = nil
	}
	return nil
}

func (r *Rows) drainAndClose() {
	r.session.setState(Idle)
	r.Close()
}

// readNextDataBlock reads server packets until a Data block arrives,
// surfacing side-channel packets into r's Progress/ProfileInfo fields and
// returning nil at EndOfStream.
func (r *Rows) readNextDataBlock() (*block.Block, error) {
	s := r.session
	for {
		tag, err := s.readPacketTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case proto.ServerData:
			b, err := block.Read(s.reader, s.pool)
			if err != nil {
				return nil, NewProtocolError(err, "chnative: reading Data block")
			}
			return b, nil
		case proto.ServerProgress:
			p, err := proto.ReadProgress(s.reader, s.revision)
			if err != nil {
				return nil, NewProtocolError(err, "chnative: reading Progress")
			}
			r.progress = p
		case proto.ServerProfileInfo:
			p, err := proto.ReadProfileInfo(s.reader)
			if err != nil {
				return nil, NewProtocolError(err, "chnative: reading ProfileInfo")
			}
			r.profileInfo = p
		case proto.ServerEndOfStream:
			return nil, nil
		case proto.ServerException:
			exc, err := proto.ReadException(s.reader)
			if err != nil {
				return nil, NewTransportError(err, "chnative: reading Exception")
			}
			return nil, NewServerError(exc.Code, exc.Name, exc.Message)
		case proto.ServerTotals, proto.ServerExtremes, proto.ServerTableColumns, proto.ServerLog, proto.ServerProfileEvents:
			if _, err := block.Read(s.reader, s.pool); err != nil {
				return nil, NewProtocolError(err, "chnative: reading %s block", tag)
			}
		default:
			return nil, NewProtocolError(nil, "chnative: unexpected packet tag %s while receiving", tag)
		}
	}
}
