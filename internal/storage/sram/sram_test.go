package sram_test

import (
	"testing"

	"github.com/killianstorm/ariane/internal/errors"
	"github.com/killianstorm/ariane/internal/model"
	"github.com/killianstorm/ariane/internal/storage/sram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRAM(t *testing.T, wordBits, depth uint, opts sram.Options) *sram.MemRAM {
	t.Helper()
	g, err := model.NewGeometry(wordBits, depth)
	require.NoError(t, err)
	r, err := sram.New(g, opts)
	require.NoError(t, err)
	return r
}

func TestWriteThenRead(t *testing.T) {
	r := newRAM(t, 32, 8, sram.Options{Policy: sram.InitZero})
	g := r.Geometry()

	data := model.Word{0x11, 0x22, 0x33, 0x44}
	require.NoError(t, r.Write(3, data, g.FullMask()))

	got, err := r.Read(3)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Unwritten addresses stay zero
	got, err = r.Read(0)
	require.NoError(t, err)
	assert.Equal(t, g.NewWord(), got)
}

func TestMaskedWriteMergesBytes(t *testing.T) {
	r := newRAM(t, 32, 1, sram.Options{Policy: sram.InitZero})
	g := r.Geometry()

	require.NoError(t, r.Write(0, model.Word{0x33, 0x22, 0x11, 0x00}, g.FullMask()))

	lowByte := g.EmptyMask()
	lowByte.SetBit(0)
	require.NoError(t, r.Write(0, model.Word{0xFF, 0xFF, 0xFF, 0xFF}, lowByte))

	got, err := r.Read(0)
	require.NoError(t, err)
	assert.Equal(t, model.Word{0xFF, 0x22, 0x11, 0x00}, got)
}

func TestReadReturnsCopy(t *testing.T) {
	r := newRAM(t, 16, 1, sram.Options{Policy: sram.InitZero})
	g := r.Geometry()

	require.NoError(t, r.Write(0, model.Word{0x01, 0x02}, g.FullMask()))

	got, err := r.Read(0)
	require.NoError(t, err)
	got[0] = 0xFF

	again, err := r.Read(0)
	require.NoError(t, err)
	assert.Equal(t, model.Word{0x01, 0x02}, again)
}

func TestContractViolations(t *testing.T) {
	r := newRAM(t, 32, 4, sram.Options{Policy: sram.InitZero})
	g := r.Geometry()

	tests := []struct {
		name     string
		fn       func() error
		wantCode errors.ErrorCode
	}{
		{
			"write out of range",
			func() error { return r.Write(4, g.NewWord(), g.FullMask()) },
			errors.ErrCodeAddressOutOfRange,
		},
		{
			"short data",
			func() error { return r.Write(0, model.Word{0x01}, g.FullMask()) },
			errors.ErrCodeWidthMismatch,
		},
		{
			"short mask",
			func() error { return r.Write(0, g.NewWord(), model.Mask{}) },
			errors.ErrCodeMaskMismatch,
		},
		{
			"read out of range",
			func() error { _, err := r.Read(100); return err },
			errors.ErrCodeAddressOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestInitPolicies(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		r := newRAM(t, 64, 16, sram.Options{Policy: sram.InitZero})
		g := r.Geometry()
		for addr := uint(0); addr < 16; addr++ {
			got, err := r.Read(addr)
			require.NoError(t, err)
			assert.Equal(t, g.NewWord(), got)
		}
	})

	t.Run("pattern", func(t *testing.T) {
		r := newRAM(t, 64, 4, sram.Options{Policy: sram.InitPattern, Pattern: 0xDEADBEEFDEADBEEF})
		g := r.Geometry()
		want := g.PatternWord(0xDEADBEEFDEADBEEF)
		for addr := uint(0); addr < 4; addr++ {
			got, err := r.Read(addr)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("random is deterministic per seed", func(t *testing.T) {
		a := newRAM(t, 64, 64, sram.Options{Policy: sram.InitRandom, Seed: 42})
		b := newRAM(t, 64, 64, sram.Options{Policy: sram.InitRandom, Seed: 42})
		c := newRAM(t, 64, 64, sram.Options{Policy: sram.InitRandom, Seed: 43})

		assert.Equal(t, a.Digest(), b.Digest())
		assert.NotEqual(t, a.Digest(), c.Digest())
	})

	t.Run("unknown policy rejected", func(t *testing.T) {
		g, err := model.NewGeometry(8, 1)
		require.NoError(t, err)
		_, err = sram.New(g, sram.Options{Policy: "garbage"})
		assert.Error(t, err)
	})
}

func TestDigestTracksContents(t *testing.T) {
	r := newRAM(t, 32, 8, sram.Options{Policy: sram.InitZero})
	g := r.Geometry()

	before := r.Digest()
	require.NoError(t, r.Write(5, model.Word{0x01, 0x02, 0x03, 0x04}, g.FullMask()))
	after := r.Digest()

	assert.NotEqual(t, before, after)

	// Writing the same contents into a fresh RAM yields the same digest
	other := newRAM(t, 32, 8, sram.Options{Policy: sram.InitZero})
	require.NoError(t, other.Write(5, model.Word{0x01, 0x02, 0x03, 0x04}, g.FullMask()))
	assert.Equal(t, after, other.Digest())
}

func TestInvalidGeometryRejected(t *testing.T) {
	_, err := sram.New(model.Geometry{WordBits: 0, Depth: 4}, sram.Options{})
	assert.Error(t, err)

	_, err = sram.New(model.Geometry{WordBits: 32, Depth: 0}, sram.Options{})
	assert.Error(t, err)
}
