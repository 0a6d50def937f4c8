// Package compress implements the compressed-frame envelope ClickHouse's
// native protocol layers under the varint/primitive codec:
// [checksum:16][method:1][compressed_size:4][uncompressed_size:4][payload].
package compress

import (
	"encoding/binary"
	"io"

	"github.com/go-faster/city"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Method is a compression-frame method tag.
type Method byte

const (
	MethodNone Method = 0x02
	MethodLZ4  Method = 0x82
	MethodZSTD Method = 0x90
)

// HeaderSize is the fixed [checksum:16][method:1][compressed:4][uncompressed:4] prefix.
const HeaderSize = 16 + 1 + 4 + 4

// ErrChecksumMismatch is returned when a frame's CityHash128 checksum does
// not match its contents — a fatal protocol error per the wire spec.
var ErrChecksumMismatch = errors.New("compress: frame checksum mismatch")

// ErrUnknownMethod is returned for a method byte the codec does not
// recognize.
var ErrUnknownMethod = errors.New("compress: unknown frame method")

// checksum computes CityHash128 over [method][compressed_size][uncompressed_size][payload].
func checksum(body []byte) (lo, hi uint64) {
	sum := city.CH128(body)
	return sum.Low, sum.High
}

// WriteFrame compresses payload with method and writes one complete frame
// to w, including the checksum header.
func WriteFrame(w io.Writer, method Method, payload []byte) error {
	var compressed []byte
	var err error

	switch method {
	case MethodNone:
		compressed = payload
	case MethodLZ4:
		compressed, err = compressLZ4(payload)
	case MethodZSTD:
		compressed, err = compressZSTD(payload)
	default:
		return ErrUnknownMethod
	}
	if err != nil {
		return err
	}

	body := make([]byte, 9+len(compressed))
	body[0] = byte(method)
	binary.LittleEndian.PutUint32(body[1:5], uint32(len(compressed)+9))
	binary.LittleEndian.PutUint32(body[5:9], uint32(len(payload)))
	copy(body[9:], compressed)

	lo, hi := checksum(body)
	header := make([]byte, 16)
	binary.LittleEndian.PutUint64(header[0:8], lo)
	binary.LittleEndian.PutUint64(header[8:16], hi)

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// ReadFrame reads one complete frame from r and returns its decompressed
// payload. Frame boundaries are entirely determined by the writer; this
// function consumes exactly one frame per call.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	wantLo := binary.LittleEndian.Uint64(header[0:8])
	wantHi := binary.LittleEndian.Uint64(header[8:16])

	methodAndSizes := make([]byte, 9)
	if _, err := io.ReadFull(r, methodAndSizes); err != nil {
		return nil, err
	}
	method := Method(methodAndSizes[0])
	compressedSize := binary.LittleEndian.Uint32(methodAndSizes[1:5])
	uncompressedSize := binary.LittleEndian.Uint32(methodAndSizes[5:9])

	if compressedSize < 9 {
		return nil, errors.New("compress: malformed frame: compressed_size smaller than header")
	}
	payloadSize := compressedSize - 9
	compressed := make([]byte, payloadSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}

	body := make([]byte, 9+len(compressed))
	copy(body, methodAndSizes)
	copy(body[9:], compressed)
	gotLo, gotHi := checksum(body)
	if gotLo != wantLo || gotHi != wantHi {
		return nil, ErrChecksumMismatch
	}

	switch method {
	case MethodNone:
		return compressed, nil
	case MethodLZ4:
		return decompressLZ4(compressed, int(uncompressedSize))
	case MethodZSTD:
		return decompressZSTD(compressed, int(uncompressedSize))
	default:
		return nil, ErrUnknownMethod
	}
}

func compressLZ4(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

func decompressLZ4(src []byte, uncompressedSize int) ([]byte, error) {
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

var zstdEncoder, _ = zstd.NewWriter(nil)

func compressZSTD(src []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(src, make([]byte, 0, len(src))), nil
}

func decompressZSTD(src []byte, uncompressedSize int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, make([]byte, 0, uncompressedSize))
}
