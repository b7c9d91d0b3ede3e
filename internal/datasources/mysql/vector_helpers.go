package mysql

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Feature and interest vectors are stored as packed little-endian float64
// blobs.

func float64SliceToBytes(floats []float64) []byte {
	bytes := make([]byte, len(floats)*8)
	for i, f := range floats {
		binary.LittleEndian.PutUint64(bytes[i*8:], math.Float64bits(f))
	}
	return bytes
}

func bytesToFloat64Slice(bytes []byte) ([]float64, error) {
	if len(bytes)%8 != 0 {
		return nil, fmt.Errorf("invalid byte length for float64 slice: %d", len(bytes))
	}
	floats := make([]float64, len(bytes)/8)
	for i := range floats {
		floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(bytes[i*8:]))
	}
	return floats, nil
}
