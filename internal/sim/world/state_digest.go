package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// stateDigest hashes the tick, every agent column and the destination
// column. Identical seeds and inputs produce identical digests.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteU64(h, &tmp, uint64(w.agents.Len()))
	for _, col := range [][]float64{w.agents.X, w.agents.Y, w.agents.HX, w.agents.HY, w.agents.Speed} {
		for _, v := range col {
			digestWriteU64(h, &tmp, math.Float64bits(v))
		}
	}
	for _, d := range w.dest {
		digestWriteU64(h, &tmp, uint64(int64(d)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}
