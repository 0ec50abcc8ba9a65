package validation

import (
	"github.com/killianstorm/ariane/internal/errors"
	"github.com/killianstorm/ariane/internal/model"
)

const (
	// MaxWordBits bounds the word width a store will accept. Wide enough
	// for any realistic cache line; prevents absurd allocations from
	// malformed configuration.
	MaxWordBits = 4096

	// MaxDepth bounds the address space per store instance.
	MaxDepth = 1 << 28
)

// Validator checks operation inputs against a fixed geometry. Contract
// violations are reported to the caller before any replica is touched; they
// are distinct from replica divergence, which voting handles.
type Validator struct {
	geom model.Geometry
}

// NewValidator creates a validator for the given geometry.
func NewValidator(g model.Geometry) *Validator {
	return &Validator{geom: g}
}

// ValidateGeometry validates construction parameters.
func ValidateGeometry(g model.Geometry) error {
	if g.WordBits < 1 {
		return errors.InvalidGeometry("word width must be at least 1 bit", nil)
	}
	if g.WordBits > MaxWordBits {
		return errors.InvalidGeometry("word width exceeds maximum", nil).
			WithDetail("word_bits", g.WordBits).
			WithDetail("max_word_bits", MaxWordBits)
	}
	if g.Depth < 1 {
		return errors.InvalidGeometry("depth must be at least 1 word", nil)
	}
	if g.Depth > MaxDepth {
		return errors.InvalidGeometry("depth exceeds maximum", nil).
			WithDetail("depth", g.Depth).
			WithDetail("max_depth", MaxDepth)
	}
	return nil
}

// ValidateAddress checks that addr is inside [0, Depth).
func (v *Validator) ValidateAddress(addr uint) error {
	if addr >= v.geom.Depth {
		return errors.AddressOutOfRange(addr, v.geom.Depth)
	}
	return nil
}

// ValidateData checks that data matches the store's word width.
func (v *Validator) ValidateData(data model.Word) error {
	if len(data) != v.geom.WordBytes() {
		return errors.WidthMismatch(len(data), v.geom.WordBytes())
	}
	return nil
}

// ValidateMask checks that mask matches the store's mask width.
func (v *Validator) ValidateMask(mask model.Mask) error {
	if len(mask) != v.geom.MaskBytes() {
		return errors.MaskMismatch(len(mask), v.geom.MaskBytes())
	}
	return nil
}

// ValidateWrite validates all write parameters.
func (v *Validator) ValidateWrite(addr uint, data model.Word, mask model.Mask) error {
	if err := v.ValidateAddress(addr); err != nil {
		return err
	}
	if err := v.ValidateData(data); err != nil {
		return err
	}
	return v.ValidateMask(mask)
}

// ValidateReplica checks that r names one of the three replicas.
func (v *Validator) ValidateReplica(r model.Replica) error {
	if !r.Valid() {
		return errors.InvalidReplica(r.String())
	}
	return nil
}
