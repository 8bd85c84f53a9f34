package ecs

import (
	"iter"

	"github.com/TheBitDrifter/mask"
)

// Archetype is the bitset of component Tags an entity currently carries.
// The zero value is the empty archetype (no components). Archetype is a
// plain comparable value, safe to use as a map key.
type Archetype struct {
	bits mask.Mask
}

// NewArchetype builds an Archetype containing exactly the given tags.
func NewArchetype(tags ...Tag) Archetype {
	var a Archetype
	for _, t := range tags {
		a = a.With(t)
	}
	return a
}

func singleBit(tag Tag) mask.Mask {
	var m mask.Mask
	m.Mark(uint32(tag))
	return m
}

// Has reports whether the archetype carries the given component tag.
func (a Archetype) Has(tag Tag) bool {
	return a.bits.ContainsAll(singleBit(tag))
}

// With returns a copy of a with tag set.
func (a Archetype) With(tag Tag) Archetype {
	a.bits.Mark(uint32(tag))
	return a
}

// Without returns a copy of a with tag cleared.
func (a Archetype) Without(tag Tag) Archetype {
	a.bits.Unmark(uint32(tag))
	return a
}

// Merge returns the union (bitwise OR) of a and other.
func (a Archetype) Merge(other Archetype) Archetype {
	result := a
	for t := Tag(0); t < MaxTags; t++ {
		if other.Has(t) {
			result = result.With(t)
		}
	}
	return result
}

// Intersection returns the intersection (bitwise AND) of a and other.
func (a Archetype) Intersection(other Archetype) Archetype {
	var result Archetype
	for t := Tag(0); t < MaxTags; t++ {
		if a.Has(t) && other.Has(t) {
			result = result.With(t)
		}
	}
	return result
}

// Difference returns a with every tag in other cleared (bitwise AND-NOT).
func (a Archetype) Difference(other Archetype) Archetype {
	result := a
	for t := Tag(0); t < MaxTags; t++ {
		if other.Has(t) {
			result = result.Without(t)
		}
	}
	return result
}

// Contains reports whether a is a supertype of other, i.e. every tag set in
// other is also set in a.
func (a Archetype) Contains(other Archetype) bool {
	return a.bits.ContainsAll(other.bits)
}

// Empty reports whether the archetype has no components set.
func (a Archetype) Empty() bool {
	return a.bits.IsEmpty()
}

// Equal reports whether a and other carry exactly the same tags.
func (a Archetype) Equal(other Archetype) bool {
	return a.bits == other.bits
}

// Iter yields each set tag in ascending order. The returned sequence is
// safe to range over more than once; iteration is not destructive.
func (a Archetype) Iter() iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		for t := Tag(0); t < MaxTags; t++ {
			if a.Has(t) {
				if !yield(t) {
					return
				}
			}
		}
	}
}
