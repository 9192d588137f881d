package machine

import (
	"encoding/binary"
	"errors"
	"math"
)

var errOutOfBounds = errors.New("memory access out of bounds")

// defaultMemorySize is the linear memory's initial size in bytes when no
// positive size is configured; GROW appends to it.
const defaultMemorySize = 64 * 1024

// linearMemory is the machine's byte-addressable heap: a growable byte
// slice holding 4-byte little-endian ints and IEEE-754 floats, plus raw
// single bytes for char access.
type linearMemory struct {
	bytes []byte
}

func newLinearMemory(size int) *linearMemory {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &linearMemory{bytes: make([]byte, size)}
}

// grow appends n zero bytes and returns the pre-grow length, matching
// op_GROW's "returns old size" contract.
func (m *linearMemory) grow(n int64) int64 {
	old := int64(len(m.bytes))
	m.bytes = append(m.bytes, make([]byte, n)...)
	return old
}

func (m *linearMemory) peekInt(addr int64) (int64, error) {
	b, err := m.slice(addr, 4)
	if err != nil {
		return 0, err
	}
	return int64(int32(binary.LittleEndian.Uint32(b))), nil
}

func (m *linearMemory) pokeInt(addr int64, v int64) error {
	b, err := m.slice(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	return nil
}

func (m *linearMemory) peekFloat(addr int64) (float64, error) {
	b, err := m.slice(addr, 4)
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
}

func (m *linearMemory) pokeFloat(addr int64, v float64) error {
	b, err := m.slice(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	return nil
}

func (m *linearMemory) peekByte(addr int64) (int64, error) {
	b, err := m.slice(addr, 1)
	if err != nil {
		return 0, err
	}
	return int64(b[0]), nil
}

func (m *linearMemory) pokeByte(addr int64, v int64) error {
	b, err := m.slice(addr, 1)
	if err != nil {
		return err
	}
	b[0] = byte(v)
	return nil
}

func (m *linearMemory) slice(addr int64, n int64) ([]byte, error) {
	if addr < 0 || addr+n > int64(len(m.bytes)) {
		return nil, errOutOfBounds
	}
	return m.bytes[addr : addr+n], nil
}
