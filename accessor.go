package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// ComponentKind is the typed handle a caller gets back from Register: it
// binds a Go type T to the Tag the schema assigned it, and provides
// type-safe access into the columns that back it. Mirrors the teacher's
// AccessibleComponent[T] pattern, but reading from a Cursor's current
// Bucket instead of from a global entity index.
type ComponentKind[T any] struct {
	tag Tag
}

// Tag returns the component kind's assigned Tag.
func (k ComponentKind[T]) Tag() Tag { return k.tag }

// Slice returns the packed column backing k for the bucket a cursor is
// currently positioned on. ok is false if k's tag is not present (or is
// void) in that bucket's archetype.
func (k ComponentKind[T]) Slice(cur *Cursor) (s []T, ok bool) {
	b := cur.bucket()
	if b == nil {
		return nil, false
	}
	return k.BucketSlice(b)
}

// BucketSlice is the Bucket-scoped form of Slice, used by Systems that
// receive a *Bucket through a SystemContext rather than a live Cursor.
func (k ComponentKind[T]) BucketSlice(b *Bucket) (s []T, ok bool) {
	if b == nil {
		return nil, false
	}
	col, ok := b.column(k.tag)
	if !ok {
		return nil, false
	}
	return columnCast[T](col), true
}

// Get returns a pointer to the component at the given row of b.
// Precondition: k's tag is present and non-void in b's archetype.
func (k ComponentKind[T]) Get(b *Bucket, index uint32) *T {
	col, ok := b.column(k.tag)
	if !ok {
		if Config.DebugAssertions {
			panic(bark.AddTrace(newPreconditionViolation(
				fmt.Sprintf("tag %d is absent from bucket archetype", k.tag))))
		}
		return nil
	}
	return (*T)(col.at(index))
}

// At returns a pointer to the component belonging to the entity a cursor
// is currently positioned on.
func (k ComponentKind[T]) At(cur *Cursor) *T {
	return k.Get(cur.bucket(), cur.index())
}

func requireArrays(cur *Cursor, tags ...Tag) {
	if !Config.DebugAssertions {
		return
	}
	want := NewArchetype(tags...)
	if !cur.Archetype().Contains(want) {
		panic(bark.AddTrace(newShapeMismatch(
			fmt.Sprintf("bucket archetype %v does not contain all of requested tags %v", cur.Archetype(), tags))))
	}
}

// Arrays2 returns the packed columns for two component kinds within the
// bucket a cursor is positioned on. Multi-arity siblings Arrays3/Arrays4
// follow the same shape; grounded on edwinsyarief-lazyecs' Query2..Query5
// family of generated accessors.
func Arrays2[T1, T2 any](cur *Cursor, k1 ComponentKind[T1], k2 ComponentKind[T2]) ([]T1, []T2) {
	requireArrays(cur, k1.tag, k2.tag)
	s1, _ := k1.Slice(cur)
	s2, _ := k2.Slice(cur)
	return s1, s2
}

// Arrays3 is the three-component form of Arrays2.
func Arrays3[T1, T2, T3 any](cur *Cursor, k1 ComponentKind[T1], k2 ComponentKind[T2], k3 ComponentKind[T3]) ([]T1, []T2, []T3) {
	requireArrays(cur, k1.tag, k2.tag, k3.tag)
	s1, _ := k1.Slice(cur)
	s2, _ := k2.Slice(cur)
	s3, _ := k3.Slice(cur)
	return s1, s2, s3
}

// Arrays4 is the four-component form of Arrays2.
func Arrays4[T1, T2, T3, T4 any](cur *Cursor, k1 ComponentKind[T1], k2 ComponentKind[T2], k3 ComponentKind[T3], k4 ComponentKind[T4]) ([]T1, []T2, []T3, []T4) {
	requireArrays(cur, k1.tag, k2.tag, k3.tag, k4.tag)
	s1, _ := k1.Slice(cur)
	s2, _ := k2.Slice(cur)
	s3, _ := k3.Slice(cur)
	s4, _ := k4.Slice(cur)
	return s1, s2, s3, s4
}
