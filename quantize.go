package meshsdf

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/klauspost/compress/zlib"
	"github.com/x448/float16"
)

// distanceRange returns the minimum and maximum of grid clamped to [-1, 1].
// The scan starts from the inverted range [1, -1].
func distanceRange(grid []float32) (lo, hi float32) {
	lo, hi = 1, -1
	for _, d := range grid {
		lo = math32.Min(lo, d)
		hi = math32.Max(hi, d)
	}
	return math32.Max(lo, -1), math32.Min(hi, 1)
}

// quantize encodes grid in format f. Eight bit values are normalized to
// [lo, hi]; a zero width range encodes every voxel as 0.
func quantize(grid []float32, f Format, lo, hi float32) []byte {
	switch f {
	case FormatEightBit:
		dst := make([]byte, len(grid))
		span := hi - lo
		if span <= 0 {
			return dst
		}
		for i, d := range grid {
			q := math32.Floor((d-lo)/span*255 + 0.5)
			dst[i] = byte(math32.Max(0, math32.Min(255, q)))
		}
		return dst
	default:
		dst := make([]byte, 2*len(grid))
		for i, d := range grid {
			binary.LittleEndian.PutUint16(dst[2*i:], float16.Fromfloat32(d).Bits())
		}
		return dst
	}
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("meshsdf: creating zlib writer: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("meshsdf: compressing volume: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("meshsdf: compressing volume: %w", err)
	}
	return buf.Bytes(), nil
}
