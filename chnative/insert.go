package chnative

import (
	"context"

	chnarrow "github.com/cloudflare/ch-native/arrow"
	"github.com/cloudflare/ch-native/block"
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/proto"

	goarrow "github.com/apache/arrow-go/v18/arrow"
)

// Inserter accepts a sequence of Arrow record batches matching the schema
// the server announced for an INSERT statement. Close writes the final
// empty sentinel block and waits for EndOfStream.
type Inserter struct {
	session   *Session
	ctx       context.Context
	table     string
	names     []string
	types     []chtype.Type
	closed    bool
	stopWatch func()
	cancelled bool
}

// Insert issues the insert path (§4.6): the query preamble, then waits for
// the server's schema-announcement block before returning an Inserter
// ready to accept row batches.
func (s *Session) Insert(ctx context.Context, table string) (*Inserter, error) {
	if err := s.transition([]State{Idle}, Sending); err != nil {
		return nil, err
	}

	queryID := newQueryID()
	sql := "INSERT INTO " + table + " FORMAT Native"
	if err := s.writeQueryPacket(queryID, sql, nil); err != nil {
		s.setState(Failed)
		return nil, err
	}
	s.setState(Receiving)

	ins := &Inserter{session: s, ctx: ctx, table: table}
	ins.stopWatch = s.watchCancel(ctx, &ins.cancelled)

	announce, err := ins.readSchemaAnnouncement()
	if err != nil {
		ins.Close()
		return nil, err
	}
	ins.names = announce.Names
	ins.types = announce.Types
	return ins, nil
}

func (ins *Inserter) readSchemaAnnouncement() (*block.Block, error) {
	s := ins.session
	for {
		tag, err := s.readPacketTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case proto.ServerData:
			return block.Read(s.reader, s.pool)
		case proto.ServerException:
			exc, err := proto.ReadException(s.reader)
			if err != nil {
				return nil, NewTransportError(err, "chnative: reading Exception")
			}
			return nil, NewServerError(exc.Code, exc.Name, exc.Message)
		default:
			return nil, NewProtocolError(nil, "chnative: unexpected packet tag %s awaiting insert schema", tag)
		}
	}
}

// Write validates rec against the announced schema (a Schema error is
// raised before any bytes are transmitted on mismatch) and writes one Data
// block.
func (ins *Inserter) Write(rec goarrow.Record) error {
	if ins.cancelled {
		return NewCancelledError(ins.ctx.Err())
	}
	if int(rec.NumCols()) != len(ins.names) {
		return NewSchemaError("chnative: insert batch has %d columns, schema announced %d", rec.NumCols(), len(ins.names))
	}

	s := ins.session
	b, err := chnarrow.ToBlock(rec, ins.names, ins.types)
	if err != nil {
		return NewSchemaError("chnative: converting record batch: %v", err)
	}
	if err := block.Write(s.writer, b, s.pool); err != nil {
		return NewTransportError(err, "chnative: writing Data block")
	}
	return nil
}

// Close writes the final empty sentinel block and waits for EndOfStream.
func (ins *Inserter) Close() error {
	if ins.closed {
		return nil
	}
	ins.closed = true
	defer func() {
		if ins.stopWatch != nil {
			ins.stopWatch()
		}
	}()

	s := ins.session
	if err := block.Write(s.writer, block.Sentinel(), s.pool); err != nil {
		s.setState(Failed)
		return NewTransportError(err, "chnative: writing end-of-insert sentinel")
	}

	for {
		tag, err := s.readPacketTag()
		if err != nil {
			s.setState(Failed)
			return NewTransportError(err, "chnative: waiting for EndOfStream")
		}
		switch tag {
		case proto.ServerEndOfStream:
			s.setState(Idle)
			return nil
		case proto.ServerException:
			exc, err := proto.ReadException(s.reader)
			if err != nil {
				s.setState(Failed)
				return NewTransportError(err, "chnative: reading Exception")
			}
			s.setState(Failed)
			return NewServerError(exc.Code, exc.Name, exc.Message)
		case proto.ServerProgress:
			if _, err := proto.ReadProgress(s.reader, s.revision); err != nil {
				s.setState(Failed)
				return NewTransportError(err, "chnative: reading Progress")
			}
		default:
			s.setState(Failed)
			return NewProtocolError(nil, "chnative: unexpected packet tag %s while closing insert", tag)
		}
	}
}
