package sram

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/killianstorm/ariane/internal/errors"
	"github.com/killianstorm/ariane/internal/model"
	"github.com/killianstorm/ariane/internal/util"
)

// RAM is the contract of the single-port storage primitive backing each
// replica: capacity Depth words of WordBits bits, byte-granular write
// masking, one access per step. Read returns the word stored at the address
// as of the preceding write. Implementations are swappable; the store only
// depends on this interface.
type RAM interface {
	// Write updates the masked bytes at addr with data.
	Write(addr uint, data model.Word, mask model.Mask) error
	// Read returns a copy of the word stored at addr.
	Read(addr uint) (model.Word, error)
	// Geometry returns the fixed shape of the memory.
	Geometry() model.Geometry
	// Digest returns a CRC32 digest of the full normalized contents.
	Digest() uint32
}

// Factory constructs the storage primitive for one replica. The store calls
// it three times with the same geometry.
type Factory func(g model.Geometry, opts Options) (RAM, error)

// InitPolicy selects how memory contents are initialized at construction.
type InitPolicy string

const (
	// InitNone leaves contents uninitialized. In this in-memory model it
	// behaves like InitZero; it exists so configuration can state intent.
	InitNone InitPolicy = "none"
	// InitZero fills every word with zeros.
	InitZero InitPolicy = "zero"
	// InitRandom fills every word with seeded pseudo-random bytes.
	InitRandom InitPolicy = "random"
	// InitPattern fills every word with a repeated 64-bit pattern.
	InitPattern InitPolicy = "pattern"
)

// Options holds initialization parameters for a RAM instance.
type Options struct {
	Policy  InitPolicy
	Seed    int64
	Pattern uint64
}

// MemRAM is the in-memory implementation of RAM.
type MemRAM struct {
	mu    sync.RWMutex
	geom  model.Geometry
	words []model.Word
}

// New creates a MemRAM with the given geometry and initialization policy.
func New(g model.Geometry, opts Options) (*MemRAM, error) {
	if _, err := model.NewGeometry(g.WordBits, g.Depth); err != nil {
		return nil, errors.InvalidGeometry(err.Error(), nil)
	}

	r := &MemRAM{
		geom:  g,
		words: make([]model.Word, g.Depth),
	}

	switch opts.Policy {
	case InitNone, InitZero, "":
		for i := range r.words {
			r.words[i] = g.NewWord()
		}
	case InitRandom:
		rng := rand.New(rand.NewSource(opts.Seed))
		for i := range r.words {
			w := g.NewWord()
			rng.Read(w)
			r.words[i] = g.Normalize(w)
		}
	case InitPattern:
		for i := range r.words {
			r.words[i] = g.PatternWord(opts.Pattern)
		}
	default:
		return nil, errors.InvalidArgument(fmt.Sprintf("unknown init policy '%s'", opts.Policy), nil)
	}

	return r, nil
}

// NewRAM is the default Factory.
func NewRAM(g model.Geometry, opts Options) (RAM, error) {
	return New(g, opts)
}

// Geometry returns the fixed shape of the memory.
func (r *MemRAM) Geometry() model.Geometry {
	return r.geom
}

// Write updates the masked bytes of the word at addr.
func (r *MemRAM) Write(addr uint, data model.Word, mask model.Mask) error {
	if addr >= r.geom.Depth {
		return errors.AddressOutOfRange(addr, r.geom.Depth)
	}
	if len(data) != r.geom.WordBytes() {
		return errors.WidthMismatch(len(data), r.geom.WordBytes())
	}
	if len(mask) != r.geom.MaskBytes() {
		return errors.MaskMismatch(len(mask), r.geom.MaskBytes())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.words[addr] = r.geom.Merge(r.words[addr], data, mask)
	return nil
}

// Read returns a copy of the word at addr.
func (r *MemRAM) Read(addr uint) (model.Word, error) {
	if addr >= r.geom.Depth {
		return nil, errors.AddressOutOfRange(addr, r.geom.Depth)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.words[addr].Clone(), nil
}

// Digest returns a CRC32 digest over all words in address order. Two RAMs
// with identical contents produce identical digests.
func (r *MemRAM) Digest() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum := uint32(0)
	for _, w := range r.words {
		sum = util.UpdateChecksum(sum, w)
	}
	return sum
}
