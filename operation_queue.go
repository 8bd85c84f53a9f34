package ecs

// ModelOperation is a deferred structural mutation, applied to a Model
// once every Cursor holding it locked has released its lock bit.
// Mirrors the teacher's EntityOperation/EntityOperationsQueue split.
type ModelOperation interface {
	Apply(*Model) error
}

type operationQueue struct {
	operations []ModelOperation
}

func (q *operationQueue) enqueue(op ModelOperation) {
	q.operations = append(q.operations, op)
}

// processAll applies every queued operation, in order, and clears the
// queue. If the Model is still locked (a nested Lock/Unlock pair), queued
// operations are left untouched for the outer Unlock to process.
func (q *operationQueue) processAll(m *Model) error {
	if m.Locked() {
		return nil
	}
	for _, op := range q.operations {
		if err := op.Apply(m); err != nil {
			return err
		}
	}
	q.operations = nil
	return nil
}

// InsertOperation defers Model.Insert.
type InsertOperation struct {
	KeyHint Key
	Values  Values
}

// Apply implements ModelOperation.
func (op InsertOperation) Apply(m *Model) error {
	_, err := m.Insert(op.KeyHint, op.Values)
	return err
}

// UpdateOperation defers Model.Update.
type UpdateOperation struct {
	Key    Key
	Values Values
}

// Apply implements ModelOperation.
func (op UpdateOperation) Apply(m *Model) error {
	return m.Update(op.Key, op.Values)
}

// RemoveOperation defers Model.Remove.
type RemoveOperation struct {
	Key  Key
	Tags []Tag
}

// Apply implements ModelOperation.
func (op RemoveOperation) Apply(m *Model) error {
	return m.Remove(op.Key, op.Tags...)
}

// DeleteKeyOperation defers Model.DeleteKey.
type DeleteKeyOperation struct {
	Key Key
}

// Apply implements ModelOperation.
func (op DeleteKeyOperation) Apply(m *Model) error {
	return m.DeleteKey(op.Key)
}

// DeleteOperation defers Model.Delete.
type DeleteOperation struct {
	ID EntityId
}

// Apply implements ModelOperation.
func (op DeleteOperation) Apply(m *Model) error {
	return m.Delete(op.ID)
}
