package column

import (
	"github.com/cloudflare/ch-native/proto"
)

// UUIDLen is the fixed wire width of a UUID column.
const UUIDLen = 16

// readUUID reads rows UUIDs, each written as two little-endian 64-bit
// halves with the most-significant half first — ClickHouse's native
// byte ordering, distinct from RFC 4122's big-endian-ish layout. The
// output slab is kept in that same wire ordering unchanged; callers that
// need the textual/RFC form convert at the presentation layer, outside
// this package.
func readUUID(r *proto.Reader, rows int) (*Buffer, error) {
	buf := make([]byte, rows*UUIDLen)
	if err := r.Raw(buf); err != nil {
		return nil, err
	}
	return &Buffer{Values: buf, Rows: rows}, nil
}

func writeUUID(w *proto.Writer, buf *Buffer) error {
	return w.Raw(buf.Values)
}
