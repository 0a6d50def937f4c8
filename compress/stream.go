package compress

import "io"

// BlockMaxSize bounds how much uncompressed data accumulates before a
// StreamWriter flushes a frame, mirroring the native protocol's own
// internal compression block size.
const BlockMaxSize = 1 << 20

// StreamWriter buffers writes and emits one compressed Frame per Flush
// (or whenever the buffer fills), implementing the "frame boundaries are
// chosen by the writer" rule.
type StreamWriter struct {
	w      io.Writer
	method Method
	buf    []byte
}

func NewStreamWriter(w io.Writer, method Method) *StreamWriter {
	return &StreamWriter{w: w, method: method, buf: make([]byte, 0, BlockMaxSize)}
}

func (s *StreamWriter) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		n := copy(s.buf[len(s.buf):cap(s.buf)], p)
		s.buf = s.buf[:len(s.buf)+n]
		p = p[n:]
		if len(s.buf) == cap(s.buf) {
			if err := s.Flush(); err != nil {
				return total - len(p), err
			}
		}
	}
	return total, nil
}

// Flush emits the accumulated buffer as one compressed frame, even if it
// is not yet full. A no-op on an empty buffer.
func (s *StreamWriter) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	if err := WriteFrame(s.w, s.method, s.buf); err != nil {
		return err
	}
	s.buf = s.buf[:0]
	return nil
}

// StreamReader decompresses a sequence of frames into a flat byte stream.
type StreamReader struct {
	r   io.Reader
	buf []byte
	pos int
}

func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

func (s *StreamReader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if s.pos == len(s.buf) {
			frame, err := ReadFrame(s.r)
			if err != nil {
				if total > 0 && err == io.EOF {
					return total, nil
				}
				return total, err
			}
			s.buf = frame
			s.pos = 0
		}
		n := copy(p[total:], s.buf[s.pos:])
		s.pos += n
		total += n
	}
	return total, nil
}
