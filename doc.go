/*
Package ecs provides an archetype-based entity-component storage core for
games and simulations.

The package keeps component data partitioned by the exact set of components
an entity carries (its archetype), so that iteration over entities sharing a
shape is a contiguous walk over packed columns.

Core Concepts:

  - EntityId: a recyclable 32-bit identifier for a game object.
  - Archetype: the bitset of component kinds an entity currently carries.
  - Bucket: the columnar storage holding every entity of one archetype.
  - Model: the database mapping entities to Pointer locations and
    archetypes to their Bucket.
  - Query: finds buckets whose archetype is a superset of a requested shape.

Basic Usage:

	builder := ecs.Factory.NewSchemaBuilder()
	position := ecs.Register[Position](builder)
	velocity := ecs.Register[Velocity](builder)
	schema, _ := builder.Build()

	model := ecs.Factory.NewModel(schema)

	key, _ := model.Insert(ecs.Key{Component: ecs.NoTag}, ecs.Values{
		position.Tag(): Position{X: 1, Y: 2},
	})
	_ = key

	shape := ecs.NewArchetype(position.Tag())
	cursor := model.Query(shape)
	for cursor.Next() {
		positions, _ := position.Slice(cursor)
		for i := range positions {
			positions[i].X++
		}
	}

ecs is single-threaded and in-process; callers needing concurrent access must
provide their own external mutual exclusion.
*/
package ecs
