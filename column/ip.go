package column

import (
	"encoding/binary"

	"github.com/cloudflare/ch-native/proto"
)

// readIPv4 reads rows 4-byte rows, each a little-endian UInt32 on the
// wire; the returned slab is big-endian per row (the Arrow/network
// convention), matching the component design's IPv4 byte-order rule.
func readIPv4(r *proto.Reader, rows int) (*Buffer, error) {
	wire := make([]byte, rows*4)
	if err := r.Raw(wire); err != nil {
		return nil, err
	}
	out := make([]byte, rows*4)
	for i := 0; i < rows; i++ {
		v := binary.LittleEndian.Uint32(wire[i*4 : i*4+4])
		binary.BigEndian.PutUint32(out[i*4:i*4+4], v)
	}
	return &Buffer{Values: out, Rows: rows}, nil
}

func writeIPv4(w *proto.Writer, buf *Buffer) error {
	wire := make([]byte, len(buf.Values))
	for i := 0; i < buf.Rows; i++ {
		v := binary.BigEndian.Uint32(buf.Values[i*4 : i*4+4])
		binary.LittleEndian.PutUint32(wire[i*4:i*4+4], v)
	}
	return w.Raw(wire)
}

// readIPv6 reads rows 16-byte rows with identical ordering on wire and
// Arrow sides — no conversion needed.
func readIPv6(r *proto.Reader, rows int) (*Buffer, error) {
	buf := make([]byte, rows*16)
	if err := r.Raw(buf); err != nil {
		return nil, err
	}
	return &Buffer{Values: buf, Rows: rows}, nil
}

func writeIPv6(w *proto.Writer, buf *Buffer) error {
	return w.Raw(buf.Values)
}
