package db

import (
	"encoding/binary"
	"math"
)

// EncodeVector packs a float32 vector into the little-endian binary form
// FT.SEARCH expects for VECTOR fields and KNN PARAMS.
func EncodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// DecodeVector unpacks a stored binary vector field. Returns nil for input
// that is not a whole number of float32s.
func DecodeVector(s string) []float32 {
	if len(s) == 0 || len(s)%4 != 0 {
		return nil
	}
	out := make([]float32, len(s)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4])))
	}
	return out
}
