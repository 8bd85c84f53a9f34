package ecs

import "testing"

type mHealth struct{ HP uint32 }
type mPosition struct{ X, Y int32 }
type mVelocity struct{ X, Y int32 }
type mTagFlag struct{}

func newHealthModel(t *testing.T) (*Model, ComponentKind[mHealth]) {
	t.Helper()
	builder := Factory.NewSchemaBuilder()
	hp := Register[mHealth](builder)
	schema, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return NewModel(schema), hp
}

// TestSeedS1 mirrors S1: insert a health value, read it back, remove the
// component, and confirm the entity lands in the empty bucket.
func TestSeedS1(t *testing.T) {
	m, hp := newHealthModel(t)

	key, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 100}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	bucket := m.buckets[NewArchetype(hp.Tag())]
	ptr := m.entities[key.ID][0]
	got := hp.Get(bucket, ptr.Index)
	if got.HP != 100 {
		t.Fatalf("read back HP = %d, want 100", got.HP)
	}

	if err := m.Remove(key, hp.Tag()); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	ptr = m.entities[key.ID][0]
	if !ptr.Type.Empty() {
		t.Fatalf("entity type after remove = %v, want empty", ptr.Type)
	}
	emptyBucket := m.buckets[Archetype{}]
	if emptyBucket == nil || emptyBucket.Len() != 1 {
		t.Fatalf("empty bucket len = %v, want 1", emptyBucket)
	}
	if _, ok := bucket.column(hp.Tag()); !ok {
		t.Fatal("health bucket should still have its column")
	}
}

type seedSchema struct {
	model *Model
	pos   ComponentKind[mPosition]
	vel   ComponentKind[mVelocity]
	flag  Tag
}

func newSeedSchema(t *testing.T) seedSchema {
	t.Helper()
	builder := Factory.NewSchemaBuilder()
	pos := Register[mPosition](builder)
	vel := Register[mVelocity](builder)
	flag := RegisterVoid[mTagFlag](builder)
	schema, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return seedSchema{model: NewModel(schema), pos: pos, vel: vel, flag: flag}
}

// TestSeedS2 mirrors S2: entities distributed across three archetypes;
// query(pos), query(vel), and query(tag_flag) each sum to the right count
// across however many buckets they touch.
func TestSeedS2(t *testing.T) {
	s := newSeedSchema(t)

	for i := 0; i < 3; i++ {
		_, err := s.model.Insert(Key{Component: NoTag}, Values{
			s.pos.Tag(): mPosition{}, s.vel.Tag(): mVelocity{},
		})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := s.model.Insert(Key{Component: NoTag}, Values{s.pos.Tag(): mPosition{}}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if _, err := s.model.Insert(Key{Component: NoTag}, Values{
		s.pos.Tag(): mPosition{}, s.vel.Tag(): mVelocity{}, s.flag: nil,
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if got := s.model.Query(NewArchetype(s.pos.Tag())).TotalMatched(); got != 6 {
		t.Errorf("query(pos) matched %d, want 6", got)
	}
	if got := s.model.Query(NewArchetype(s.vel.Tag())).TotalMatched(); got != 4 {
		t.Errorf("query(vel) matched %d, want 4", got)
	}
	if got := s.model.Query(NewArchetype(s.flag)).TotalMatched(); got != 1 {
		t.Errorf("query(tag_flag) matched %d, want 1", got)
	}
}

// TestSeedS3 continues S2: deleting the (pos, vel, tag_flag) entity
// leaves its bucket present but empty, skipped by queries, while every
// other entity keeps its index and values.
func TestSeedS3(t *testing.T) {
	s := newSeedSchema(t)

	var pvEntities []EntityId
	for i := 0; i < 3; i++ {
		key, err := s.model.Insert(Key{Component: NoTag}, Values{
			s.pos.Tag(): mPosition{X: int32(i)}, s.vel.Tag(): mVelocity{X: int32(i)},
		})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		pvEntities = append(pvEntities, key.ID)
	}

	full, err := s.model.Insert(Key{Component: NoTag}, Values{
		s.pos.Tag(): mPosition{X: 99}, s.vel.Tag(): mVelocity{X: 99}, s.flag: nil,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	fullArchetype := NewArchetype(s.pos.Tag(), s.vel.Tag(), s.flag)
	bucket := s.model.buckets[fullArchetype]

	s.model.Delete(full.ID)

	if bucket.Len() != 0 {
		t.Fatalf("bucket len after delete = %d, want 0", bucket.Len())
	}
	if got := s.model.Query(NewArchetype(s.flag)).TotalMatched(); got != 0 {
		t.Errorf("query(tag_flag) after delete matched %d, want 0 (empty bucket skipped)", got)
	}

	pvBucket := s.model.buckets[NewArchetype(s.pos.Tag(), s.vel.Tag())]
	for i, id := range pvEntities {
		ptr := s.model.entities[id][0]
		got := s.pos.Get(pvBucket, ptr.Index)
		if got.X != int32(i) {
			t.Errorf("entity %d position.X = %d, want %d", id, got.X, i)
		}
	}
}

// TestSeedS4 mirrors S4: adding a tag to an entity migrates it while
// preserving its existing component values, and shrinks the source
// bucket by one.
func TestSeedS4(t *testing.T) {
	s := newSeedSchema(t)

	key, err := s.model.Insert(Key{Component: NoTag}, Values{
		s.pos.Tag(): mPosition{X: 1, Y: 2}, s.vel.Tag(): mVelocity{X: 3, Y: 4},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	sourceBucket := s.model.buckets[NewArchetype(s.pos.Tag(), s.vel.Tag())]
	if sourceBucket.Len() != 1 {
		t.Fatalf("source bucket len = %d, want 1", sourceBucket.Len())
	}

	if err := s.model.Update(key, Values{s.flag: nil}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if sourceBucket.Len() != 0 {
		t.Errorf("source bucket len after migration = %d, want 0", sourceBucket.Len())
	}

	targetBucket := s.model.buckets[NewArchetype(s.pos.Tag(), s.vel.Tag(), s.flag)]
	ptr := s.model.entities[key.ID][0]
	pos := s.pos.Get(targetBucket, ptr.Index)
	vel := s.vel.Get(targetBucket, ptr.Index)
	if pos.X != 1 || pos.Y != 2 {
		t.Errorf("pos after migration = %+v, want {1 2}", pos)
	}
	if vel.X != 3 || vel.Y != 4 {
		t.Errorf("vel after migration = %+v, want {3 4}", vel)
	}
}

// TestSeedS5 mirrors S5: the entity manager's exhaustion and recovery
// behavior, at the EntityManager level (see entitymanager_test.go for the
// focused version); here it is exercised through the Model.
func TestSeedS5(t *testing.T) {
	m, hp := newHealthModel(t)
	m.manager.index = uint32(InvalidEntityId) - 1

	key, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 1}})
	if err != nil {
		t.Fatalf("Insert at edge of id space: %v", err)
	}

	if _, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 2}}); err == nil {
		t.Fatal("expected OutOfMemory once the id space is exhausted")
	}

	m.Delete(key.ID)

	again, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 3}})
	if err != nil {
		t.Fatalf("Insert after delete on exhausted manager: %v", err)
	}
	if again.ID != key.ID {
		t.Errorf("recycled id = %d, want %d", again.ID, key.ID)
	}
}

// TestSeedS6 mirrors S6: removing entity A out from under entity B swaps
// B into A's old slot, B's Pointer is fixed up, queries read B's values
// correctly, and A lands in the empty bucket.
func TestSeedS6(t *testing.T) {
	m, hp := newHealthModel(t)

	a, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 1}})
	if err != nil {
		t.Fatalf("Insert A: %v", err)
	}
	b, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 2}})
	if err != nil {
		t.Fatalf("Insert B: %v", err)
	}

	if err := m.Remove(a, hp.Tag()); err != nil {
		t.Fatalf("Remove A: %v", err)
	}

	bPtr := m.entities[b.ID][0]
	if bPtr.Index != 0 {
		t.Fatalf("B's index after A's removal = %d, want 0", bPtr.Index)
	}

	bucket := m.buckets[NewArchetype(hp.Tag())]
	got := hp.Get(bucket, bPtr.Index)
	if got.HP != 2 {
		t.Errorf("B's HP after swap = %d, want 2", got.HP)
	}

	aPtr := m.entities[a.ID][0]
	if !aPtr.Type.Empty() {
		t.Errorf("A's type after remove = %v, want empty", aPtr.Type)
	}
}

// TestLocationAndReverseConsistency checks invariants 3 and 4 across a
// sequence of inserts, updates, and removes.
func TestLocationAndReverseConsistency(t *testing.T) {
	s := newSeedSchema(t)

	var ids []EntityId
	for i := 0; i < 20; i++ {
		values := Values{s.pos.Tag(): mPosition{X: int32(i)}}
		if i%2 == 0 {
			values[s.vel.Tag()] = mVelocity{X: int32(i)}
		}
		key, err := s.model.Insert(Key{Component: NoTag}, values)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		ids = append(ids, key.ID)
	}

	for i := 0; i < len(ids); i += 3 {
		if err := s.model.Remove(Key{ID: ids[i], Component: NoTag}, s.pos.Tag()); err != nil {
			t.Fatalf("Remove: %v", err)
		}
	}

	checkModelConsistency(t, s.model)
}

func checkModelConsistency(t *testing.T, m *Model) {
	t.Helper()
	for id, ptrs := range m.entities {
		for _, p := range ptrs {
			bucket, ok := m.buckets[p.Type]
			if !ok {
				t.Errorf("entity %d points at archetype %v with no bucket", id, p.Type)
				continue
			}
			if int(p.Index) >= bucket.Len() {
				t.Errorf("entity %d index %d out of range for bucket len %d", id, p.Index, bucket.Len())
				continue
			}
			if bucket.entities[p.Index] != id {
				t.Errorf("location consistency violated: bucket[%v].entities[%d] = %d, want %d",
					p.Type, p.Index, bucket.entities[p.Index], id)
			}
		}
	}

	for archetype, bucket := range m.buckets {
		for i, id := range bucket.entities {
			ptrs := m.entities[id]
			count := 0
			for _, p := range ptrs {
				if p.Type.Equal(archetype) && int(p.Index) == i {
					count++
				}
			}
			if count != 1 {
				t.Errorf("reverse consistency violated: bucket[%v][%d] = entity %d has %d matching pointers, want 1",
					archetype, i, id, count)
			}
		}
		for _, c := range bucket.columns {
			if int(c.len) != bucket.Len() {
				t.Errorf("column parity violated in bucket %v: column len %d != bucket len %d", archetype, c.len, bucket.Len())
			}
		}
	}
}

// TestUpdateInPlaceWhenShapeUnchanged exercises Case B of Update: writing
// a value for a tag the entity already carries must not migrate it.
func TestUpdateInPlaceWhenShapeUnchanged(t *testing.T) {
	m, hp := newHealthModel(t)
	key, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 10}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	ptrBefore := m.entities[key.ID][0]

	if err := m.Update(key, Values{hp.Tag(): mHealth{HP: 20}}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ptrAfter := m.entities[key.ID][0]
	if ptrBefore.Type != ptrAfter.Type || ptrBefore.Index != ptrAfter.Index {
		t.Error("in-place update should not change the entity's bucket or row")
	}

	bucket := m.buckets[ptrAfter.Type]
	got := hp.Get(bucket, ptrAfter.Index)
	if got.HP != 20 {
		t.Errorf("HP after in-place update = %d, want 20", got.HP)
	}
}

// TestDeleteKeyLeavesOtherRegistrationsIntact exercises Extend/DeleteKey.
func TestDeleteKeyLeavesOtherRegistrationsIntact(t *testing.T) {
	m, hp := newHealthModel(t)
	key, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 5}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	secondaryRole := Role(1)
	secondary, err := m.Extend(key.ID, hp.Tag(), secondaryRole, Values{hp.Tag(): mHealth{HP: 5}})
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}

	if err := m.DeleteKey(secondary); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}

	if len(m.entities[key.ID]) != 1 {
		t.Fatalf("entity should retain its primary registration, got %d pointers", len(m.entities[key.ID]))
	}
	if _, ok := key.indexIn(m.entities[key.ID]); !ok {
		t.Error("primary registration should still be present after DeleteKey on the secondary")
	}
}

// TestInsertWithEmptyValuesPlacesEntityInEmptyBucket guards against a
// ghost registration: an Insert with no values must still reserve a real
// row in the empty archetype's bucket, not leave a Pointer claiming a row
// that was never allocated.
func TestInsertWithEmptyValuesPlacesEntityInEmptyBucket(t *testing.T) {
	m, hp := newHealthModel(t)

	empty, err := m.Insert(Key{Component: NoTag}, Values{})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ptr := m.entities[empty.ID][0]
	if !ptr.Type.Empty() {
		t.Fatalf("archetype = %v, want empty", ptr.Type)
	}
	emptyBucket := m.buckets[Archetype{}]
	if emptyBucket == nil || emptyBucket.Len() != 1 {
		t.Fatalf("empty bucket len = %v, want 1", emptyBucket)
	}
	if emptyBucket.Entities()[ptr.Index] != empty.ID {
		t.Fatalf("empty bucket row %d holds %d, want %d", ptr.Index, emptyBucket.Entities()[ptr.Index], empty.ID)
	}

	// A second, unrelated entity landing in the same empty bucket (via
	// Remove) must not collide with or be corrupted by deleting the first.
	withHP, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 1}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := m.Remove(withHP, hp.Tag()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if emptyBucket.Len() != 2 {
		t.Fatalf("empty bucket len = %d, want 2", emptyBucket.Len())
	}

	if err := m.Delete(empty.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if emptyBucket.Len() != 1 {
		t.Fatalf("empty bucket len after delete = %d, want 1", emptyBucket.Len())
	}
	if emptyBucket.Entities()[0] != withHP.ID {
		t.Errorf("surviving entity in empty bucket = %d, want %d", emptyBucket.Entities()[0], withHP.ID)
	}
}

// TestLockedMutatorsRejected confirms every structural mutator refuses to
// run while the Model is locked, returning LockedModelError instead of
// touching any bucket a live Cursor might be reading.
func TestLockedMutatorsRejected(t *testing.T) {
	m, hp := newHealthModel(t)
	key, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 1}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	bit := m.Lock()
	defer m.Unlock(bit)

	if _, err := m.Insert(Key{Component: NoTag}, Values{hp.Tag(): mHealth{HP: 2}}); !errorsIsLocked(err) {
		t.Errorf("Insert while locked = %v, want LockedModelError", err)
	}
	if _, err := m.Extend(key.ID, hp.Tag(), Role(1), Values{hp.Tag(): mHealth{HP: 2}}); !errorsIsLocked(err) {
		t.Errorf("Extend while locked = %v, want LockedModelError", err)
	}
	if err := m.Update(key, Values{hp.Tag(): mHealth{HP: 2}}); !errorsIsLocked(err) {
		t.Errorf("Update while locked = %v, want LockedModelError", err)
	}
	if err := m.Remove(key, hp.Tag()); !errorsIsLocked(err) {
		t.Errorf("Remove while locked = %v, want LockedModelError", err)
	}
	if err := m.DeleteKey(key); !errorsIsLocked(err) {
		t.Errorf("DeleteKey while locked = %v, want LockedModelError", err)
	}
	if err := m.Delete(key.ID); !errorsIsLocked(err) {
		t.Errorf("Delete while locked = %v, want LockedModelError", err)
	}
}

func errorsIsLocked(err error) bool {
	_, ok := err.(LockedModelError)
	return ok
}
