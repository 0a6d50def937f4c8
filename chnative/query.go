package chnative

import (
	"github.com/cloudflare/ch-native/block"
	"github.com/cloudflare/ch-native/compress"
	"github.com/cloudflare/ch-native/proto"
)

// writeQueryPacket issues the Query packet and the external-tables
// sentinel that follows it in both the read and insert paths (§4.6 step
// 1-2).
func (s *Session) writeQueryPacket(queryID, sql string, settings map[string]string) error {
	if err := s.writer.Uvarint(uint64(proto.ClientQuery)); err != nil {
		return NewTransportError(err, "chnative: writing Query tag")
	}
	if err := s.writer.String(queryID); err != nil {
		return NewTransportError(err, "chnative: writing query id")
	}

	info := proto.DefaultClientInfo(queryID)
	if s.revision >= proto.RevisionWithClientInfo {
		if err := info.Write(s.writer, s.revision); err != nil {
			return NewTransportError(err, "chnative: writing client info")
		}
	}

	if s.revision >= proto.RevisionWithSettingsAsStrings {
		for k, v := range settings {
			if err := s.writer.String(k); err != nil {
				return NewTransportError(err, "chnative: writing setting key")
			}
			if err := s.writer.Bool(false); err != nil { // important flag
				return NewTransportError(err, "chnative: writing setting flag")
			}
			if err := s.writer.String(v); err != nil {
				return NewTransportError(err, "chnative: writing setting value")
			}
		}
	}
	if err := s.writer.String(""); err != nil { // settings terminator
		return NewTransportError(err, "chnative: writing settings terminator")
	}

	if err := s.writer.Uvarint(proto.StageComplete); err != nil {
		return NewTransportError(err, "chnative: writing query stage")
	}

	compressionFlag := proto.CompressionDisabled
	if s.compression != compress.MethodNone && s.compression != 0 {
		compressionFlag = proto.CompressionEnabled
	}
	if err := s.writer.Uvarint(compressionFlag); err != nil {
		return NewTransportError(err, "chnative: writing compression flag")
	}

	if err := s.writer.String(sql); err != nil {
		return NewTransportError(err, "chnative: writing SQL text")
	}

	if s.revision >= proto.RevisionWithParameters {
		if err := s.writer.String(""); err != nil { // parameters terminator
			return NewTransportError(err, "chnative: writing parameters terminator")
		}
	}

	return s.writeSentinelBlock()
}

func (s *Session) writeSentinelBlock() error {
	return block.Write(s.writer, block.Sentinel(), s.pool)
}

// readPacketTag reads the next server→client packet tag.
func (s *Session) readPacketTag() (proto.ServerPacket, error) {
	tag, err := s.reader.Uvarint()
	if err != nil {
		return 0, NewTransportError(err, "chnative: reading packet tag")
	}
	return proto.ServerPacket(tag), nil
}
