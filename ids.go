package ecs

// EntityId is an opaque identifier for an entity. At most one live EntityId
// equals any given value at any time; a value is only reused after Delete.
type EntityId uint32

// InvalidEntityId is the sentinel value meaning "no entity". It is never
// issued as a live id: EntityManager.New returns it only together with an
// error. The "not yet placed" Pointer state uses InvalidIndex instead.
const InvalidEntityId EntityId = 0xFFFFFFFF

// Role disambiguates multiple registrations of the same EntityId under
// distinct Keys. The zero value, RoleNone, is the default registration.
type Role uint32

// RoleNone is the default Role used when a caller does not need to register
// an entity under more than one Key.
const RoleNone Role = 0

// Tag identifies one component kind within a Schema. Tags are assigned in
// ascending declaration order starting at zero.
type Tag uint32

// NoTag is the sentinel meaning "no component" in a Pointer or Key.
const NoTag Tag = ^Tag(0)

// MaxTags is the number of component kinds a single Archetype can encode,
// matching the bit width of the mask.Mask bitset that backs it.
const MaxTags = 64
