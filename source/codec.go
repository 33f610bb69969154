package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec defines the compression algorithm used for brick payloads.
type Codec uint8

const (
	// CodecRaw indicates no compression.
	CodecRaw Codec = 0
	// CodecLZ4 indicates LZ4 block compression (fast, good for hot data).
	CodecLZ4 Codec = 1
	// CodecZstd indicates zstd block compression (better ratio, good for cold data).
	CodecZstd Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecRaw:
		return "raw"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// zstd encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Brick payload format:
// [Codec uint8][UncompressedSize uint32][Data...]
// A brick that does not shrink under compression is stored raw no
// matter which codec was requested.
const brickHeaderSize = 5

// EncodeBrick compresses a brick payload with the given codec.
func EncodeBrick(codec Codec, data []byte) ([]byte, error) {
	var compressed []byte
	var err error

	switch codec {
	case CodecRaw:
		// fall through to raw storage below
	case CodecLZ4:
		compressed, err = encodeLZ4(data)
	case CodecZstd:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("unknown codec %d", uint8(codec))
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || len(compressed) >= len(data) {
		// Incompressible, store raw
		out := make([]byte, brickHeaderSize+len(data))
		out[0] = uint8(CodecRaw)
		binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
		copy(out[brickHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, brickHeaderSize+len(compressed))
	out[0] = uint8(codec)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	copy(out[brickHeaderSize:], compressed)
	return out, nil
}

func encodeLZ4(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return buf[:n], nil
}

// DecodeBrick decompresses a brick payload. The codec is read from the
// header, so any codec may decode any brick.
func DecodeBrick(data []byte) ([]byte, error) {
	if len(data) < brickHeaderSize {
		return nil, errors.New("brick too small for header")
	}

	codec := Codec(data[0])
	size := binary.LittleEndian.Uint32(data[1:])
	payload := data[brickHeaderSize:]

	switch codec {
	case CodecRaw:
		if uint32(len(payload)) < size {
			return nil, errors.New("brick data too small")
		}
		return payload[:size], nil

	case CodecLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != size {
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil

	case CodecZstd:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, err
		}
		if uint32(len(out)) != size {
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown codec %d", uint8(codec))
	}
}

// float32sToBytes serializes sample data little-endian for storage.
func float32sToBytes(vals []float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32s(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("payload length %d is not a multiple of 4", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out, nil
}
