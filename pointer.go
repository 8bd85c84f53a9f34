package ecs

// InvalidIndex is the sentinel Pointer.Index meaning "not yet placed in any
// bucket". It is distinct from the real row index 0, which is a valid
// position within the empty archetype's bucket.
const InvalidIndex uint32 = ^uint32(0)

// Pointer locates one registration of an entity: which Bucket row it
// occupies, and under which (Component, Role) pair it was registered.
// Component is NoTag and Role is RoleNone for an entity's primary,
// unkeyed registration. Index is InvalidIndex until the registration has
// actually been placed in a bucket by Update.
type Pointer struct {
	Index     uint32
	Type      Archetype
	Component Tag
	Role      Role
}

// Key identifies one of an entity's Pointer registrations for lookup or
// removal.
type Key struct {
	ID        EntityId
	Component Tag
	Role      Role
}

// indexIn returns the position within pointers whose Component and Role
// match key. EntityId is not compared: pointers is always already scoped
// to one entity's own registrations.
func (key Key) indexIn(pointers []Pointer) (int, bool) {
	for i, p := range pointers {
		if p.Component == key.Component && p.Role == key.Role {
			return i, true
		}
	}
	return 0, false
}
