package validate

import (
	"fmt"
	"math"
)

// Bound is a numeric interval whose ends are independently open or closed.
type Bound struct {
	Min          float64 `json:"min" yaml:"min" toml:"min"`
	Max          float64 `json:"max" yaml:"max" toml:"max"`
	MinInclusive bool    `json:"min_inclusive" yaml:"min_inclusive" toml:"min_inclusive"`
	MaxInclusive bool    `json:"max_inclusive" yaml:"max_inclusive" toml:"max_inclusive"`
}

// Open is (min, max).
func Open(min, max float64) Bound { return Bound{Min: min, Max: max} }

// Closed is [min, max].
func Closed(min, max float64) Bound {
	return Bound{Min: min, Max: max, MinInclusive: true, MaxInclusive: true}
}

// ClosedOpen is [min, max).
func ClosedOpen(min, max float64) Bound { return Bound{Min: min, Max: max, MinInclusive: true} }

// AtLeast is [min, +Inf).
func AtLeast(min float64) Bound { return Bound{Min: min, Max: math.Inf(1), MinInclusive: true} }

func (b Bound) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if v < b.Min || (v == b.Min && !b.MinInclusive) {
		return false
	}
	if v > b.Max || (v == b.Max && !b.MaxInclusive) {
		return false
	}
	return true
}

// Validate rejects intervals that cannot contain any value.
func (b Bound) Validate() error {
	switch {
	case math.IsNaN(b.Min) || math.IsNaN(b.Max):
		return fmt.Errorf("bound %s: NaN end", b)
	case b.Min > b.Max:
		return fmt.Errorf("bound %s: min above max", b)
	case b.Min == b.Max && !(b.MinInclusive && b.MaxInclusive):
		return fmt.Errorf("bound %s: empty interval", b)
	}
	return nil
}

func (b Bound) String() string {
	lo, hi := "(", ")"
	if b.MinInclusive {
		lo = "["
	}
	if b.MaxInclusive {
		hi = "]"
	}
	return fmt.Sprintf("%s%g, %g%s", lo, b.Min, b.Max, hi)
}
