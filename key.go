package meshsdf

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// derivedDataVersion changes whenever baked output changes for identical input.
const derivedDataVersion = "MSDF_1"

// DerivedDataKey returns a cache key identifying the volume Generate
// would produce for the same arguments. The mesh name and the worker
// count do not contribute.
func DerivedDataKey(src MeshSource, cfg Config, resolutionScale float64, buildAsIfTwoSided bool) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // only fails for keys longer than 64 bytes.
	}
	w := keyWriter{h: h}
	w.put(int64(len(src.Positions)))
	w.put(src.Positions)
	w.put(int64(len(src.Indices)))
	w.put(src.Indices)
	sections := src.sections()
	w.put(int64(len(sections)))
	for _, s := range sections {
		w.put([3]int64{int64(s.FirstTriangle), int64(s.NumTriangles), int64(s.MaterialIndex)})
	}
	w.put(int64(len(src.Materials)))
	w.put(src.Materials)
	w.put(src.LocalBounds())

	w.put(resolutionScale)
	w.put(buildAsIfTwoSided)
	w.put([2]int64{int64(cfg.MinVoxelsOneDim), int64(cfg.MaxVoxelsOneDim)})
	w.put(cfg.VoxelDensity)
	w.put(cfg.EightBit)
	w.put(cfg.Compress)
	w.str(string(cfg.Backend))
	w.put(int64(cfg.NumSamples))
	w.put(cfg.Seed)
	w.put(cfg.Heuristics)
	return derivedDataVersion + "_" + hex.EncodeToString(h.Sum(nil))
}

type keyWriter struct {
	h hash.Hash
}

func (w keyWriter) put(v any) {
	// hash.Hash writes never fail and v is always fixed size.
	if err := binary.Write(w.h, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}

func (w keyWriter) str(s string) {
	w.put(int64(len(s)))
	io.WriteString(w.h, s)
}
