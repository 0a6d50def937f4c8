package column

import (
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
)

// readString reads rows length-prefixed strings into Buffer.Data.
func readString(r *proto.Reader, rows int) (*Buffer, error) {
	data := make([][]byte, rows)
	for i := 0; i < rows; i++ {
		b, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		data[i] = b
	}
	return &Buffer{Data: data, Rows: rows}, nil
}

// writeString writes each row as varint(length) || bytes, reusing one
// pooled scratch buffer across rows for the length prefix instead of
// letting Writer.Uvarint allocate per call.
func writeString(w *proto.Writer, buf *Buffer, p *pool.Pool) error {
	scratch := p.Get(10)
	defer p.Put(scratch)

	for _, row := range buf.Data {
		scratch = appendUvarint(scratch[:0], uint64(len(row)))
		if err := w.Raw(scratch); err != nil {
			return err
		}
		if err := w.Raw(row); err != nil {
			return err
		}
	}
	return nil
}

// appendUvarint appends v's LEB128 encoding to dst, matching the encoding
// Writer.Uvarint produces.
func appendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// readFixedString reads rows*n raw bytes in one read; row i is the n bytes
// at offset i*n.
func readFixedString(r *proto.Reader, rows, n int) (*Buffer, error) {
	buf := make([]byte, rows*n)
	if err := r.Raw(buf); err != nil {
		return nil, err
	}
	return &Buffer{Values: buf, Rows: rows}, nil
}

func writeFixedString(w *proto.Writer, buf *Buffer) error {
	return w.Raw(buf.Values)
}
