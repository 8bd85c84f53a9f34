package ecs

import "iter"

// Cursor iterates the Buckets of a Model matched by a QueryNode, one
// entity row at a time. While a Cursor is initialized it holds one of
// the Model's lock bits, deferring structural mutation until Reset
// releases it -- mirroring the teacher's Cursor/Storage lock protocol,
// but against Model instead of a package-global Storage.
type Cursor struct {
	node  QueryNode
	model *Model

	initialized bool
	lockBit     uint32
	matched     []*Bucket
	bucketIndex int
	rowIndex    int
	remaining   int
}

func newCursor(node QueryNode, model *Model) *Cursor {
	return &Cursor{node: node, model: model}
}

// Initialize locks the Model and snapshots the set of buckets the query
// currently matches. Calling Initialize more than once before Reset is a
// no-op.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}
	c.lockBit = c.model.Lock()
	c.matched = c.matched[:0]
	for archetype, bucket := range c.model.buckets {
		if bucket.Len() == 0 {
			continue
		}
		if c.node.evaluate(archetype) {
			c.matched = append(c.matched, bucket)
		}
	}
	if len(c.matched) > 0 {
		c.bucketIndex = 0
		c.remaining = c.matched[0].Len()
	}
	c.initialized = true
}

// Reset releases the Model lock and clears cursor position, so the
// Cursor can be reused with Initialize for another pass.
func (c *Cursor) Reset() {
	c.bucketIndex = 0
	c.rowIndex = 0
	c.remaining = 0
	c.matched = nil
	c.initialized = false
	c.model.Unlock(c.lockBit)
}

// Next advances the cursor to the next matching row, returning false and
// releasing the lock once every matched bucket is exhausted.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.Initialize()
	}
	if c.rowIndex < c.remaining {
		c.rowIndex++
		return true
	}
	for c.bucketIndex < len(c.matched) {
		c.remaining = c.matched[c.bucketIndex].Len()
		if c.rowIndex < c.remaining {
			c.rowIndex++
			return true
		}
		c.bucketIndex++
		c.rowIndex = 0
	}
	c.Reset()
	return false
}

// Buckets yields every matched bucket once each, for callers that want to
// operate on whole columns instead of row-by-row (the shape the system
// runner in SPEC_FULL.md drives).
func (c *Cursor) Buckets() iter.Seq[*Bucket] {
	return func(yield func(*Bucket) bool) {
		c.Initialize()
		for _, b := range c.matched {
			if b.Len() == 0 {
				continue
			}
			if !yield(b) {
				c.Reset()
				return
			}
		}
		c.Reset()
	}
}

func (c *Cursor) bucket() *Bucket {
	if !c.initialized || c.bucketIndex >= len(c.matched) {
		return nil
	}
	return c.matched[c.bucketIndex]
}

func (c *Cursor) index() uint32 {
	return uint32(c.rowIndex - 1)
}

// Archetype returns the archetype of the bucket the cursor currently
// points into.
func (c *Cursor) Archetype() Archetype {
	b := c.bucket()
	if b == nil {
		return Archetype{}
	}
	return b.Archetype()
}

// Entity returns the EntityId the cursor currently points at.
func (c *Cursor) Entity() EntityId {
	b := c.bucket()
	if b == nil {
		return InvalidEntityId
	}
	return b.Entities()[c.index()]
}

// TotalMatched returns the number of entities across every bucket the
// query matches. It initializes and resets the cursor as a side effect.
func (c *Cursor) TotalMatched() int {
	c.Initialize()
	total := 0
	for _, b := range c.matched {
		total += b.Len()
	}
	c.Reset()
	return total
}
