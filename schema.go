package ecs

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// componentKind is the schema-time descriptor for one declared component:
// its Tag, its Go type, the type's size, and whether it was declared void
// (no associated data).
type componentKind struct {
	tag    Tag
	typ    reflect.Type
	size   uintptr
	isVoid bool
}

// Schema is the immutable, built product of a SchemaBuilder: the ordered
// set of declared component kinds plus the derived void mask.
type Schema struct {
	kinds []componentKind
	void  Archetype
}

// Width returns the number of declared component kinds.
func (s *Schema) Width() int { return len(s.kinds) }

// VoidMask returns the archetype consisting of exactly the tags declared
// with RegisterVoid.
func (s *Schema) VoidMask() Archetype { return s.void }

// Count returns popcount(a - VoidMask()).
func (s *Schema) Count(a Archetype) int {
	n := 0
	for t := Tag(0); t < Tag(len(s.kinds)); t++ {
		if a.Has(t) && !s.void.Has(t) {
			n++
		}
	}
	return n
}

// Index returns the column position tag occupies within a bucket for
// archetype a. Precondition: tag is present in a and is not void;
// violating it is a PreconditionViolationError (panics when
// Config.DebugAssertions is true).
func (s *Schema) Index(a Archetype, tag Tag) int {
	if Config.DebugAssertions && (!a.Has(tag) || s.void.Has(tag)) {
		panic(bark.AddTrace(newPreconditionViolation(
			fmt.Sprintf("tag %d is absent or void in archetype", tag))))
	}
	idx := 0
	for t := Tag(0); t < tag; t++ {
		if a.Has(t) && !s.void.Has(t) {
			idx++
		}
	}
	return idx
}

// IndexOf is the non-panicking form of Index: it reports false instead of
// panicking when tag is absent or void.
func (s *Schema) IndexOf(a Archetype, tag Tag) (int, bool) {
	if !a.Has(tag) || s.void.Has(tag) {
		return 0, false
	}
	return s.Index(a, tag), true
}

// SchemaBuilder accumulates component-kind declarations ahead of Build.
// It is the runtime-checked schema binding spec.md's Design Notes describe
// for languages without compile-time reflection over generic type
// parameters: each Register call records a Tag -> reflect.Type -> size
// triple, interned through a SimpleCache, and Build freezes the result.
type SchemaBuilder struct {
	kinds []componentKind
	names Cache[componentKind]
	built bool
}

func newSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{
		names: &SimpleCache[componentKind]{
			itemIndices: make(map[string]int),
			maxCapacity: MaxTags,
		},
	}
}

func (b *SchemaBuilder) registerKind(name string, typ reflect.Type, size uintptr, isVoid bool) Tag {
	if b.built {
		panic("ecs: SchemaBuilder.Build already called")
	}
	if _, ok := b.names.GetIndex(name); ok {
		panic(fmt.Sprintf("ecs: component %s already registered", name))
	}
	tag := Tag(len(b.kinds))
	kind := componentKind{tag: tag, typ: typ, size: size, isVoid: isVoid}
	if _, err := b.names.Register(name, kind); err != nil {
		panic(fmt.Sprintf("ecs: %v", err))
	}
	b.kinds = append(b.kinds, kind)
	return tag
}

// Register declares a component kind backed by data of type T and returns
// a typed ComponentKind bound to the Tag it was assigned. T must not be
// zero-sized; use RegisterVoid for tag-only components.
func Register[T any](b *SchemaBuilder) ComponentKind[T] {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Size() == 0 {
		panic(fmt.Sprintf("ecs: component %T is zero-sized, use RegisterVoid", zero))
	}
	tag := b.registerKind(typ.String(), typ, typ.Size(), false)
	return ComponentKind[T]{tag: tag}
}

// RegisterVoid declares a tag-only component kind with no associated
// per-entity data and returns its Tag.
func RegisterVoid[T any](b *SchemaBuilder) Tag {
	var zero T
	typ := reflect.TypeOf(zero)
	return b.registerKind(typ.String(), typ, 0, true)
}

// Build freezes the schema. A schema with zero declared component kinds is
// rejected: the empty archetype's key (archetype zero) is reserved and
// would otherwise be indistinguishable from "no schema at all".
func (b *SchemaBuilder) Build() (*Schema, error) {
	if len(b.kinds) == 0 {
		return nil, fmt.Errorf("ecs: schema needs at least one component kind")
	}
	if len(b.kinds) > MaxTags {
		return nil, fmt.Errorf("ecs: schema declares %d component kinds, maximum is %d", len(b.kinds), MaxTags)
	}
	b.built = true
	var void Archetype
	for _, k := range b.kinds {
		if k.isVoid {
			void = void.With(k.tag)
		}
	}
	return &Schema{kinds: append([]componentKind(nil), b.kinds...), void: void}, nil
}
