package model

import (
	"encoding/binary"
	"fmt"
)

// Geometry describes the fixed shape of a word memory: the true word width in
// bits and the number of addressable words. Both are fixed at construction and
// never change for the lifetime of a store.
type Geometry struct {
	WordBits uint
	Depth    uint
}

// NewGeometry validates and returns a memory geometry.
func NewGeometry(wordBits, depth uint) (Geometry, error) {
	if wordBits < 1 {
		return Geometry{}, fmt.Errorf("word width must be at least 1 bit, got %d", wordBits)
	}
	if depth < 1 {
		return Geometry{}, fmt.Errorf("depth must be at least 1 word, got %d", depth)
	}
	return Geometry{WordBits: wordBits, Depth: depth}, nil
}

// WordBytes returns the number of bytes needed to hold one word,
// including padding bits when WordBits is not a multiple of 8.
func (g Geometry) WordBytes() int {
	return int((g.WordBits + 7) / 8)
}

// MaskBytes returns the number of bytes needed to hold the per-byte
// write-enable bitmap (one bit per word byte).
func (g Geometry) MaskBytes() int {
	return (g.WordBytes() + 7) / 8
}

// padBits is the number of unused bits in the top byte of a word.
func (g Geometry) padBits() uint {
	return uint(g.WordBytes())*8 - g.WordBits
}

// Word is a fixed-width bit vector. Byte i holds bits [8i, 8i+8) of the
// value; the top byte may carry padding bits which are always zero after
// normalization.
type Word []byte

// Mask is a per-byte write-enable bitmap: bit i enables byte i of the word.
type Mask []byte

// Replica identifies one of the three independent copies of the address space.
type Replica int

const (
	ReplicaA Replica = iota
	ReplicaB
	ReplicaC

	// ReplicaNone marks the absence of an outlier in a vote result.
	ReplicaNone Replica = -1

	// NumReplicas is the fixed replication factor.
	NumReplicas = 3
)

// String returns the replica name.
func (r Replica) String() string {
	switch r {
	case ReplicaA:
		return "A"
	case ReplicaB:
		return "B"
	case ReplicaC:
		return "C"
	case ReplicaNone:
		return "none"
	default:
		return fmt.Sprintf("replica(%d)", int(r))
	}
}

// Valid reports whether r names an actual replica.
func (r Replica) Valid() bool {
	return r >= ReplicaA && r <= ReplicaC
}

// VoteResult is the outcome of a majority vote over three sampled words.
// It is derived on every read and never persisted.
type VoteResult struct {
	Word      Word
	Outlier   Replica // the disagreeing replica, ReplicaNone if unanimous
	Unanimous bool
}

// NewWord returns a zero word of the geometry's width.
func (g Geometry) NewWord() Word {
	return make(Word, g.WordBytes())
}

// FullMask returns a mask with every word byte enabled.
func (g Geometry) FullMask() Mask {
	m := make(Mask, g.MaskBytes())
	for i := 0; i < g.WordBytes(); i++ {
		m.SetBit(i)
	}
	return m
}

// EmptyMask returns a mask with no byte enabled.
func (g Geometry) EmptyMask() Mask {
	return make(Mask, g.MaskBytes())
}

// Normalize clears the padding bits in the top byte of w, in place, and
// returns w. Words are always compared and stored in normalized form.
func (g Geometry) Normalize(w Word) Word {
	if pad := g.padBits(); pad > 0 && len(w) == g.WordBytes() {
		w[len(w)-1] &= byte(0xFF >> pad)
	}
	return w
}

// PatternWord builds a word by repeating a 64-bit pattern across the word
// bytes, least-significant byte first, normalized to the true width.
func (g Geometry) PatternWord(pattern uint64) Word {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], pattern)

	w := g.NewWord()
	for i := range w {
		w[i] = scratch[i%8]
	}
	return g.Normalize(w)
}

// Merge applies a masked write: bytes of data whose mask bit is set replace
// the corresponding bytes of old; all other bytes are kept. The inputs are
// not modified. The result is normalized.
func (g Geometry) Merge(old, data Word, mask Mask) Word {
	merged := make(Word, g.WordBytes())
	copy(merged, old)
	for i := 0; i < g.WordBytes(); i++ {
		if mask.Bit(i) {
			merged[i] = data[i]
		}
	}
	return g.Normalize(merged)
}

// Equal compares two words over the true word width, ignoring padding bits.
func (g Geometry) Equal(a, b Word) bool {
	if len(a) != g.WordBytes() || len(b) != g.WordBytes() {
		return false
	}
	n := g.WordBytes()
	for i := 0; i < n-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	keep := byte(0xFF >> g.padBits())
	return a[n-1]&keep == b[n-1]&keep
}

// Clone returns an independent copy of w.
func (w Word) Clone() Word {
	return append(Word(nil), w...)
}

// Bit reports whether byte i of the word is write-enabled.
func (m Mask) Bit(i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(m) {
		return false
	}
	return m[byteIdx]&(1<<(uint(i)%8)) != 0
}

// SetBit enables byte i of the word.
func (m Mask) SetBit(i int) {
	byteIdx := i / 8
	if byteIdx < len(m) {
		m[byteIdx] |= 1 << (uint(i) % 8)
	}
}
