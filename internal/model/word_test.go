package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeometry(t *testing.T) {
	tests := []struct {
		name     string
		wordBits uint
		depth    uint
		wantErr  bool
	}{
		{"64-bit word", 64, 1024, false},
		{"single bit word", 1, 1, false},
		{"non-byte-aligned width", 12, 16, false},
		{"zero width", 0, 16, true},
		{"zero depth", 64, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGeometry(tt.wordBits, tt.depth)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wordBits, g.WordBits)
			assert.Equal(t, tt.depth, g.Depth)
		})
	}
}

func TestGeometryDerivedSizes(t *testing.T) {
	tests := []struct {
		wordBits  uint
		wordBytes int
		maskBytes int
	}{
		{1, 1, 1},
		{8, 1, 1},
		{12, 2, 1},
		{32, 4, 1},
		{64, 8, 1},
		{65, 9, 2},
		{100, 13, 2},
		{128, 16, 2},
	}

	for _, tt := range tests {
		g, err := NewGeometry(tt.wordBits, 1)
		require.NoError(t, err)
		assert.Equal(t, tt.wordBytes, g.WordBytes(), "word bytes for W=%d", tt.wordBits)
		assert.Equal(t, tt.maskBytes, g.MaskBytes(), "mask bytes for W=%d", tt.wordBits)
	}
}

func TestNormalizeClearsPadding(t *testing.T) {
	g, err := NewGeometry(12, 1)
	require.NoError(t, err)

	w := Word{0xFF, 0xFF}
	g.Normalize(w)
	assert.Equal(t, Word{0xFF, 0x0F}, w)
}

func TestEqualIgnoresPadding(t *testing.T) {
	g, err := NewGeometry(12, 1)
	require.NoError(t, err)

	a := Word{0x34, 0x02}
	b := Word{0x34, 0xF2} // same low 12 bits, garbage in padding
	assert.True(t, g.Equal(a, b))

	c := Word{0x34, 0x03}
	assert.False(t, g.Equal(a, c))
}

func TestEqualLengthMismatch(t *testing.T) {
	g, err := NewGeometry(16, 1)
	require.NoError(t, err)

	assert.False(t, g.Equal(Word{0x01}, Word{0x01, 0x00}))
	assert.False(t, g.Equal(Word{0x01, 0x00}, Word{0x01}))
}

func TestMerge(t *testing.T) {
	g, err := NewGeometry(32, 1)
	require.NoError(t, err)

	old := Word{0x33, 0x22, 0x11, 0x00}
	data := Word{0xFF, 0xEE, 0xDD, 0xCC}

	lowByte := g.EmptyMask()
	lowByte.SetBit(0)

	merged := g.Merge(old, data, lowByte)
	assert.Equal(t, Word{0xFF, 0x22, 0x11, 0x00}, merged)

	// Inputs untouched
	assert.Equal(t, Word{0x33, 0x22, 0x11, 0x00}, old)

	full := g.Merge(old, data, g.FullMask())
	assert.Equal(t, data, full)

	none := g.Merge(old, data, g.EmptyMask())
	assert.Equal(t, old, none)
}

func TestPatternWord(t *testing.T) {
	g, err := NewGeometry(64, 1)
	require.NoError(t, err)

	w := g.PatternWord(0xAAAAAAAAAAAAAAAA)
	assert.Equal(t, Word{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, w)

	// Pattern repeats past 8 bytes and is normalized to the true width
	g12, err := NewGeometry(12, 1)
	require.NoError(t, err)
	w12 := g12.PatternWord(0xFFFF)
	assert.Equal(t, Word{0xFF, 0x0F}, w12)
}

func TestMaskBits(t *testing.T) {
	g, err := NewGeometry(100, 1) // 13 word bytes, 2 mask bytes
	require.NoError(t, err)

	m := g.EmptyMask()
	for i := 0; i < g.WordBytes(); i++ {
		assert.False(t, m.Bit(i))
	}

	m.SetBit(0)
	m.SetBit(9)
	m.SetBit(12)
	assert.True(t, m.Bit(0))
	assert.True(t, m.Bit(9))
	assert.True(t, m.Bit(12))
	assert.False(t, m.Bit(1))
	assert.False(t, m.Bit(8))

	full := g.FullMask()
	for i := 0; i < g.WordBytes(); i++ {
		assert.True(t, full.Bit(i))
	}
}

func TestWordClone(t *testing.T) {
	w := Word{0x01, 0x02}
	c := w.Clone()
	c[0] = 0xFF
	assert.Equal(t, Word{0x01, 0x02}, w)
}

func TestReplicaString(t *testing.T) {
	assert.Equal(t, "A", ReplicaA.String())
	assert.Equal(t, "B", ReplicaB.String())
	assert.Equal(t, "C", ReplicaC.String())
	assert.Equal(t, "none", ReplicaNone.String())

	assert.True(t, ReplicaB.Valid())
	assert.False(t, ReplicaNone.Valid())
	assert.False(t, Replica(3).Valid())
}
