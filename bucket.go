package ecs

import "github.com/TheBitDrifter/bark"

// Bucket is the columnar store for every entity sharing one exact
// Archetype: a packed EntityId column plus one packed column per
// non-void component tag, all kept the same length by construction.
// Grounded on edwinsyarief-lazyecs' per-archetype column group and on
// delaneyj-arche's archetype.Add/Remove swap-remove choreography.
type Bucket struct {
	archetype Archetype
	entities  []EntityId
	columns   []*column
	schema    *Schema
}

func newBucket(schema *Schema, archetype Archetype, initialCap int) *Bucket {
	b := &Bucket{archetype: archetype, schema: schema}
	for t := Tag(0); t < Tag(len(schema.kinds)); t++ {
		if archetype.Has(t) && !schema.void.Has(t) {
			b.columns = append(b.columns, newColumn(schema.kinds[t], initialCap))
		}
	}
	return b
}

// Len returns the number of entities (rows) currently stored.
func (b *Bucket) Len() int { return len(b.entities) }

// Archetype returns the bucket's archetype.
func (b *Bucket) Archetype() Archetype { return b.archetype }

// Entities returns the bucket's packed entity-id column. The slice is a
// live view; callers must not mutate it.
func (b *Bucket) Entities() []EntityId { return b.entities }

// reserve appends id as a new row, growing every column to match. If any
// column fails to grow, every column grown so far in this call is shrunk
// back to its previous length and the appended id is popped, leaving the
// bucket exactly as it was before the call.
func (b *Bucket) reserve(id EntityId) (index uint32, err error) {
	prevLen := uint32(len(b.entities))
	newLen := prevLen + 1
	b.entities = append(b.entities, id)
	for i, c := range b.columns {
		if rerr := c.resize(newLen); rerr != nil {
			for _, prev := range b.columns[:i] {
				prev.shrink(prevLen)
			}
			b.entities = b.entities[:prevLen]
			return 0, rerr
		}
	}
	return prevLen, nil
}

// remove swap-removes row i. If i was not the last row, the entity that
// occupied the last row is moved into i and returned as displaced with
// moved = true; the caller must update that entity's Pointer accordingly.
func (b *Bucket) remove(i uint32) (displaced EntityId, moved bool) {
	last := uint32(len(b.entities) - 1)
	movedID := b.entities[last]
	if i != last {
		b.entities[i] = movedID
		moved = true
	}
	b.entities = b.entities[:last]
	for _, c := range b.columns {
		c.remove(i)
	}
	if moved {
		return movedID, true
	}
	return InvalidEntityId, false
}

// column returns the bucket's column for tag, if tag is present in the
// bucket's archetype and declared non-void.
func (b *Bucket) column(tag Tag) (*column, bool) {
	idx, ok := b.schema.IndexOf(b.archetype, tag)
	if !ok {
		return nil, false
	}
	return b.columns[idx], true
}

// set writes value into row index under tag. Precondition: tag is a
// non-void member of the bucket's archetype.
func (b *Bucket) set(index uint32, tag Tag, value any) {
	c, ok := b.column(tag)
	if !ok {
		if Config.DebugAssertions {
			panic(bark.AddTrace(newPreconditionViolation("tag is absent from bucket archetype")))
		}
		return
	}
	c.setAny(index, value)
}

// deinit releases every column and clears the bucket.
func (b *Bucket) deinit() {
	for _, c := range b.columns {
		c.deinit()
	}
	b.columns = nil
	b.entities = nil
}
