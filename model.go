package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// Values supplies the data to write for a set of component tags in a
// single Insert/Extend/Update call. A void tag's entry carries a nil
// value: the tag still joins the target archetype, but no column write
// happens for it.
type Values map[Tag]any

const initialBucketCapacity = 8

// Model is the entity database: it owns entity id issuance, the
// entity -> Pointer-list index, and the archetype -> Bucket map, and
// drives migration between buckets as an entity's component set changes.
// A Model is a plain value-holding struct with no package-level state, so
// that independent instances never interfere with each other -- unlike
// the teacher's storage type, which kept its entity table behind package
// globals.
type Model struct {
	schema   *Schema
	manager  *EntityManager
	entities map[EntityId][]Pointer
	buckets  map[Archetype]*Bucket
	lock     mask.Mask256
	nextBit  uint32
	ops      operationQueue
	events   ModelEvents
}

// NewModel creates an empty Model bound to schema.
func NewModel(schema *Schema) *Model {
	return &Model{
		schema:   schema,
		manager:  newEntityManager(),
		entities: make(map[EntityId][]Pointer),
		buckets:  make(map[Archetype]*Bucket),
		events:   Config.modelEvents,
	}
}

// Schema returns the Model's bound Schema.
func (m *Model) Schema() *Schema { return m.schema }

// Locked reports whether any query currently holds the Model locked.
func (m *Model) Locked() bool { return !m.lock.IsEmpty() }

// Lock acquires one of the Model's 256 lock bits, used by Cursor to defer
// structural mutation for the duration of an iteration. The returned bit
// must be passed back to Unlock exactly once.
func (m *Model) Lock() uint32 {
	bit := m.nextBit
	m.nextBit = (m.nextBit + 1) % 256
	m.lock.Mark(bit)
	return bit
}

// Unlock releases a bit acquired by Lock. Once every bit is released, any
// operations enqueued while locked are applied, in order.
func (m *Model) Unlock(bit uint32) {
	m.lock.Unmark(bit)
	if m.lock.IsEmpty() {
		if err := m.ops.processAll(m); err != nil {
			panic(bark.AddTrace(fmt.Errorf("ecs: error processing queued operations: %w", err)))
		}
	}
}

// Enqueue defers op until the Model is fully unlocked. Systems that need
// to structurally mutate the Model while iterating a Cursor must route
// through Enqueue instead of calling Insert/Update/Remove/Delete directly.
func (m *Model) Enqueue(op ModelOperation) {
	m.ops.enqueue(op)
}

func (m *Model) bucketFor(a Archetype) *Bucket {
	b, ok := m.buckets[a]
	if ok {
		return b
	}
	b = newBucket(m.schema, a, initialBucketCapacity)
	m.buckets[a] = b
	if m.events.OnBucketCreated != nil {
		m.events.OnBucketCreated(a)
	}
	return b
}

func (m *Model) pointerIndex(id EntityId, key Key) (int, bool) {
	return key.indexIn(m.entities[id])
}

// New allocates a fresh EntityId with an empty Pointer list and no bucket
// membership.
func (m *Model) New() (EntityId, error) {
	id, err := m.manager.New()
	if err != nil {
		return InvalidEntityId, err
	}
	m.entities[id] = nil
	return id, nil
}

// Insert allocates a new entity, registers it under (component, role)
// from keyHint, and writes values via Update. On success it returns the
// full Key for the new registration.
func (m *Model) Insert(keyHint Key, values Values) (Key, error) {
	if m.Locked() {
		return Key{}, LockedModelError{}
	}
	id, err := m.New()
	if err != nil {
		return Key{}, err
	}
	m.entities[id] = append(m.entities[id], Pointer{
		Index:     InvalidIndex,
		Type:      Archetype{},
		Component: keyHint.Component,
		Role:      keyHint.Role,
	})
	key := Key{ID: id, Component: keyHint.Component, Role: keyHint.Role}
	if err := m.Update(key, values); err != nil {
		delete(m.entities, id)
		m.manager.Delete(id)
		return Key{}, err
	}
	return key, nil
}

// Extend registers id under an additional (component, role) pair not
// already held, then writes values via Update. Precondition: no existing
// Pointer for id already uses this (component, role).
func (m *Model) Extend(id EntityId, component Tag, role Role, values Values) (Key, error) {
	if m.Locked() {
		return Key{}, LockedModelError{}
	}
	key := Key{ID: id, Component: component, Role: role}
	if _, exists := m.pointerIndex(id, key); exists {
		if Config.DebugAssertions {
			panic(bark.AddTrace(ComponentExistsError{Tag: component}))
		}
		return Key{}, ComponentExistsError{Tag: component}
	}
	m.entities[id] = append(m.entities[id], Pointer{
		Index:     InvalidIndex,
		Type:      Archetype{},
		Component: component,
		Role:      role,
	})
	if err := m.Update(key, values); err != nil {
		ptrs := m.entities[id]
		m.entities[id] = ptrs[:len(ptrs)-1]
		return Key{}, err
	}
	return key, nil
}

// Update is the central structural operation. It computes the tag set
// implied by values, unions it with the current archetype, and either
// writes in place (already placed and shape unchanged) or migrates the
// entity to a new bucket (not yet placed, or shape changed), copying
// forward every value held for a tag common to the old and new
// archetype. A freshly Insert/Extend-ed registration is never yet placed
// (Pointer.Index == InvalidIndex), even when its archetype happens to be
// empty, so it always takes the migration path at least once.
func (m *Model) Update(key Key, values Values) error {
	if m.Locked() {
		return LockedModelError{}
	}
	ptrs := m.entities[key.ID]
	pi, ok := key.indexIn(ptrs)
	if !ok {
		return ComponentNotFoundError{Tag: key.Component}
	}
	current := ptrs[pi]
	placed := current.Index != InvalidIndex

	var added Archetype
	for tag := range values {
		added = added.With(tag)
	}
	target := current.Type.Merge(added)

	if placed && target.Equal(current.Type) {
		bucket := m.buckets[current.Type]
		for tag, value := range values {
			if value == nil || m.schema.void.Has(tag) {
				continue
			}
			bucket.set(current.Index, tag, value)
		}
		return nil
	}

	targetBucket := m.bucketFor(target)
	newIndex, err := targetBucket.reserve(key.ID)
	if err != nil {
		return err
	}

	if placed {
		sourceBucket := m.buckets[current.Type]
		shared := target.Intersection(current.Type)
		for tag := range shared.Iter() {
			if m.schema.void.Has(tag) {
				continue
			}
			srcCol, _ := sourceBucket.column(tag)
			dstCol, _ := targetBucket.column(tag)
			copyBytes(dstCol.at(newIndex), srcCol.at(current.Index), srcCol.elemSize)
		}
		oldLen := uint32(sourceBucket.Len())
		displaced, moved := sourceBucket.remove(current.Index)
		if moved {
			m.fixDisplaced(displaced, current.Type, oldLen-1, current.Index)
		}
	}

	ptrs[pi].Type = target
	ptrs[pi].Index = newIndex
	if m.events.OnMigrate != nil {
		m.events.OnMigrate(key.ID, current.Type, target)
	}

	for tag, value := range values {
		if value == nil || m.schema.void.Has(tag) {
			continue
		}
		targetBucket.set(newIndex, tag, value)
	}
	return nil
}

// fixDisplaced finds, among id's Pointer registrations, the one that
// pointed at (archetypeKey, oldLastIndex) -- the slot a swap-remove just
// vacated -- and repoints it at newIndex. (archetypeKey, oldLastIndex)
// uniquely identifies the displaced registration regardless of how many
// Pointers id otherwise holds.
func (m *Model) fixDisplaced(id EntityId, archetypeKey Archetype, oldLastIndex, newIndex uint32) {
	ptrs := m.entities[id]
	for i := range ptrs {
		if ptrs[i].Type.Equal(archetypeKey) && ptrs[i].Index == oldLastIndex {
			ptrs[i].Index = newIndex
			return
		}
	}
}

// Remove drops the given tags from the entity registered under key,
// migrating it to the resulting (smaller) archetype. A no-op if none of
// tags are present.
func (m *Model) Remove(key Key, tags ...Tag) error {
	if m.Locked() {
		return LockedModelError{}
	}
	ptrs := m.entities[key.ID]
	pi, ok := key.indexIn(ptrs)
	if !ok {
		return ComponentNotFoundError{Tag: key.Component}
	}
	current := ptrs[pi]
	var drop Archetype
	for _, t := range tags {
		drop = drop.With(t)
	}
	target := current.Type.Difference(drop)
	if target.Equal(current.Type) {
		return nil
	}

	targetBucket := m.bucketFor(target)
	newIndex, err := targetBucket.reserve(key.ID)
	if err != nil {
		return err
	}

	sourceBucket := m.buckets[current.Type]
	shared := target.Intersection(current.Type)
	for tag := range shared.Iter() {
		if m.schema.void.Has(tag) {
			continue
		}
		srcCol, _ := sourceBucket.column(tag)
		dstCol, _ := targetBucket.column(tag)
		copyBytes(dstCol.at(newIndex), srcCol.at(current.Index), srcCol.elemSize)
	}
	oldLen := uint32(sourceBucket.Len())
	displaced, moved := sourceBucket.remove(current.Index)
	if moved {
		m.fixDisplaced(displaced, current.Type, oldLen-1, current.Index)
	}

	ptrs[pi].Type = target
	ptrs[pi].Index = newIndex
	if m.events.OnMigrate != nil {
		m.events.OnMigrate(key.ID, current.Type, target)
	}
	return nil
}

// DeleteKey removes the single Pointer registration identified by key,
// without affecting the entity's other registrations (if any).
func (m *Model) DeleteKey(key Key) error {
	if m.Locked() {
		return LockedModelError{}
	}
	ptrs := m.entities[key.ID]
	pi, ok := key.indexIn(ptrs)
	if !ok {
		return ComponentNotFoundError{Tag: key.Component}
	}
	ptr := ptrs[pi]
	last := len(ptrs) - 1
	ptrs[pi] = ptrs[last]
	m.entities[key.ID] = ptrs[:last]

	m.removeFromBucket(key.ID, ptr)
	return nil
}

// Delete drops every Pointer registration held by id, removes it from
// every bucket it occupies, and returns id to the EntityManager's
// freelist for reuse.
func (m *Model) Delete(id EntityId) error {
	if m.Locked() {
		return LockedModelError{}
	}
	ptrs := m.entities[id]
	delete(m.entities, id)
	for _, ptr := range ptrs {
		m.removeFromBucket(id, ptr)
	}
	m.manager.Delete(id)
	return nil
}

func (m *Model) removeFromBucket(id EntityId, ptr Pointer) {
	if ptr.Index == InvalidIndex {
		return
	}
	bucket, ok := m.buckets[ptr.Type]
	if !ok {
		return
	}
	oldLen := uint32(bucket.Len())
	displaced, moved := bucket.remove(ptr.Index)
	if moved {
		m.fixDisplaced(displaced, ptr.Type, oldLen-1, ptr.Index)
	}
}

// Query returns a Cursor iterating every bucket whose archetype contains
// shape.
func (m *Model) Query(shape Archetype) *Cursor {
	return newCursor(NewQuery().And(shape), m)
}

// QueryNode returns a Cursor iterating every bucket matched by node,
// allowing AND/OR/NOT queries built with NewQuery.
func (m *Model) QueryNode(node QueryNode) *Cursor {
	return newCursor(node, m)
}

// Deinit releases every bucket's columns, the entity map, and the
// EntityManager's freelist.
func (m *Model) Deinit() {
	for _, b := range m.buckets {
		b.deinit()
	}
	m.buckets = nil
	m.entities = nil
	m.manager.Deinit()
}
