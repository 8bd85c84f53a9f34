package ecs

import "fmt"

// EntityManager issues and recycles EntityId values for one Model. It
// holds no package-level state: spec.md requires the Model (and therefore
// everything it owns) to be a plain value type with independent
// instances, which rules out the teacher's package-level
// globalEntryIndex/globalEntities pattern.
type EntityManager struct {
	index uint32
	dead  []EntityId
}

func newEntityManager() *EntityManager {
	return &EntityManager{}
}

// New returns a fresh or recycled EntityId. The only failure mode is
// OutOfMemoryError: either the id space is exhausted, or growing the
// freelist's reserved capacity ahead of time failed.
func (m *EntityManager) New() (EntityId, error) {
	if n := len(m.dead); n > 0 {
		id := m.dead[n-1]
		m.dead = m.dead[:n-1]
		return id, nil
	}
	if m.index == uint32(InvalidEntityId) {
		return InvalidEntityId, OutOfMemoryError{cause: fmt.Errorf("entity id space exhausted")}
	}
	if err := m.reserveDeadCapacity(int(m.index) + 1); err != nil {
		return InvalidEntityId, err
	}
	id := EntityId(m.index)
	m.index++
	return id, nil
}

// reserveDeadCapacity grows the freelist's backing array so that a future
// Delete of any of the m.index ids issued so far can never fail.
func (m *EntityManager) reserveDeadCapacity(n int) (err error) {
	if cap(m.dead) >= n {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = OutOfMemoryError{cause: fmt.Errorf("%v", r)}
		}
	}()
	newCap := cap(m.dead) * 2
	if newCap < n {
		newCap = n
	}
	grown := make([]EntityId, len(m.dead), newCap)
	copy(grown, m.dead)
	m.dead = grown
	return nil
}

// Delete returns id to the freelist for future reuse by New. It never
// fails: New always reserves the freelist capacity this call needs ahead
// of time.
func (m *EntityManager) Delete(id EntityId) {
	m.dead = append(m.dead, id)
}

// Deinit releases the freelist and resets the issued-id counter.
func (m *EntityManager) Deinit() {
	m.dead = nil
	m.index = 0
}
