package ecs

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// column is type-erased packed storage for one component kind within a
// Bucket: a single contiguous backing array addressed through an unsafe
// pointer, grown by doubling like a Go slice. Grounded on the buffer
// layout delaneyj/arche's archetype uses (a reflect.Value array backing
// each component column, sliced with unsafe.Pointer arithmetic) rather
// than on any table.Table the teacher depends on, since Bucket/Column is
// exactly the storage layer this package now owns directly.
type column struct {
	buf      reflect.Value
	ptr      unsafe.Pointer
	elemType reflect.Type
	elemSize uintptr
	hash     uint64
	len      uint32
	cap      uint32
}

func typeHash(t reflect.Type) uint64 {
	h := fnv.New64a()
	h.Write([]byte(t.PkgPath()))
	h.Write([]byte("."))
	h.Write([]byte(t.String()))
	return h.Sum64()
}

func newColumn(kind componentKind, capacity int) *column {
	if capacity < 1 {
		capacity = 1
	}
	buf := reflect.New(reflect.ArrayOf(capacity, kind.typ)).Elem()
	return &column{
		buf:      buf,
		ptr:      buf.Addr().UnsafePointer(),
		elemType: kind.typ,
		elemSize: kind.size,
		hash:     typeHash(kind.typ),
		cap:      uint32(capacity),
	}
}

// resize grows the column's logical length to newLen, doubling the
// backing array first if that is not already enough room. On allocation
// failure the column is left exactly as it was and an OutOfMemoryError is
// returned.
func (c *column) resize(newLen uint32) (err error) {
	if newLen <= c.cap {
		c.len = newLen
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = OutOfMemoryError{cause: fmt.Errorf("column resize: %v", r)}
		}
	}()
	newCap := c.cap * 2
	if newCap < newLen {
		newCap = newLen
	}
	newBuf := reflect.New(reflect.ArrayOf(int(newCap), c.elemType)).Elem()
	reflect.Copy(newBuf, c.buf)
	c.buf = newBuf
	c.ptr = c.buf.Addr().UnsafePointer()
	c.cap = newCap
	c.len = newLen
	return nil
}

// shrink lowers the column's logical length without releasing capacity.
func (c *column) shrink(newLen uint32) {
	c.len = newLen
}

// remove swap-removes row i: the last row's bytes are copied over slot i,
// then the length is decremented. The caller is responsible for the
// corresponding EntityId bookkeeping.
func (c *column) remove(i uint32) {
	last := c.len - 1
	if i != last {
		copyBytes(c.at(i), c.at(last), c.elemSize)
	}
	c.len--
}

// deinit releases the column's backing storage.
func (c *column) deinit() {
	c.buf = reflect.Value{}
	c.ptr = nil
	c.len = 0
	c.cap = 0
}

// at returns an unsafe pointer to the element at row i.
func (c *column) at(i uint32) unsafe.Pointer {
	return unsafe.Add(c.ptr, uintptr(i)*c.elemSize)
}

// setAny writes value, boxed as any, into row index. Config.DebugAssertions
// gates a type check against the column's declared element type.
func (c *column) setAny(index uint32, value any) {
	rv := reflect.ValueOf(value)
	if Config.DebugAssertions && rv.Type() != c.elemType {
		panic(bark.AddTrace(newPreconditionViolation(
			fmt.Sprintf("value type %s does not match declared component type %s", rv.Type(), c.elemType))))
	}
	holder := reflect.New(c.elemType)
	holder.Elem().Set(rv)
	copyBytes(c.at(index), holder.UnsafePointer(), c.elemSize)
}

func copyBytes(dst, src unsafe.Pointer, size uintptr) {
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}

// columnCast downcasts c to a typed slice view over its live rows. The
// stored type hash is checked against T's hash; a mismatch is a
// PreconditionViolationError (panics when Config.DebugAssertions is true).
func columnCast[T any](c *column) []T {
	if Config.DebugAssertions {
		var zero T
		want := typeHash(reflect.TypeOf(zero))
		if c.hash != want {
			panic(bark.AddTrace(newPreconditionViolation(
				fmt.Sprintf("column type mismatch: stored %s, requested %T", c.elemType, zero))))
		}
	}
	if c.len == 0 || c.ptr == nil {
		return nil
	}
	return unsafe.Slice((*T)(c.ptr), c.len)
}
