package ecs

// factory implements the factory pattern for ecs package construction,
// the single entrypoint for building the types this package assembles
// (schemas, models, queries, cursors, caches) instead of scattering
// exported constructors across every file.
type factory struct{}

// Factory is the package's construction entrypoint.
var Factory factory

// NewSchemaBuilder starts a new component schema declaration.
func (f factory) NewSchemaBuilder() *SchemaBuilder {
	return newSchemaBuilder()
}

// NewModel creates an empty Model bound to schema.
func (f factory) NewModel(schema *Schema) *Model {
	return NewModel(schema)
}

// NewQuery creates a new empty, composable Query.
func (f factory) NewQuery() Query {
	return NewQuery()
}

// NewCursor creates a new Cursor iterating the buckets of model matched
// by node.
func (f factory) NewCursor(node QueryNode, model *Model) *Cursor {
	return newCursor(node, model)
}

// NewRunner creates a Runner over model with the given systems.
func (f factory) NewRunner(model *Model, systems ...System) *Runner {
	return NewRunner(model, systems...)
}

// FactoryNewCache creates a new Cache with the specified capacity. A
// package-level function, not a Factory method: Go methods cannot carry
// their own type parameters.
func FactoryNewCache[T any](capacity int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: capacity,
	}
}
