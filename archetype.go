package ecsvault

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// reflectTypeOf documents intent at call sites that build the
// TypeId->reflect.Type maps archetype construction consumes.
type reflectTypeOf = reflect.Type

var handleReflectType = reflect.TypeFor[Handle]()

// archetype is the equivalence class of entities sharing exactly the
// same TypeId set: a Column per stored component type (including a
// dedicated Handle column), a set of tag TypeIds that carry no column,
// a per-archetype RWMutex, and a monotonically increasing change
// counter bumped on any structural mutation that could invalidate an
// outstanding Ref.
type archetype struct {
	hash  uint64
	types []TypeId // sorted, includes handleTypeID and tag ids
	tags  map[TypeId]struct{}

	sig mask.Mask // bit signature of the type set, see typeid.go; membership checks use types/columns/tags

	mu            sync.RWMutex
	columns       map[TypeId]*column
	handleCol     *column
	changeCounter atomic.Uint64
}

// newArchetype builds an empty archetype for the given component
// TypeId->reflect.Type set plus tags. types must already include
// handleTypeID.
func newArchetype(hash uint64, componentTypes map[TypeId]reflectTypeOf, tags map[TypeId]struct{}) *archetype {
	a := &archetype{
		hash:    hash,
		tags:    tags,
		columns: make(map[TypeId]*column, len(componentTypes)),
	}
	for id, t := range componentTypes {
		a.columns[id] = newColumn(t)
		a.markSig(id)
	}
	for id := range tags {
		a.markSig(id)
	}
	a.handleCol = a.columns[handleTypeID]
	if a.handleCol == nil {
		panic(bark.AddTrace(assertionError{"archetype missing handle column"}))
	}

	a.types = make([]TypeId, 0, len(componentTypes)+len(tags))
	for id := range componentTypes {
		a.types = append(a.types, id)
	}
	for id := range tags {
		a.types = append(a.types, id)
	}
	sort.Slice(a.types, func(i, j int) bool { return a.types[i] < a.types[j] })
	return a
}

func (a *archetype) markSig(id TypeId) {
	if bit, ok := maskBitFor(id); ok {
		a.sig.Mark(bit)
	}
}

// has reports whether id is in this archetype's type set, component or
// tag alike.
func (a *archetype) has(id TypeId) bool {
	if id == handleTypeID {
		return true
	}
	if _, ok := a.columns[id]; ok {
		return true
	}
	_, ok := a.tags[id]
	return ok
}

func (a *archetype) hasAll(ids []TypeId) bool {
	for _, id := range ids {
		if !a.has(id) {
			return false
		}
	}
	return true
}

func (a *archetype) hasAny(ids []TypeId) bool {
	for _, id := range ids {
		if a.has(id) {
			return true
		}
	}
	return false
}

// size returns the number of live rows; every column has this same
// length.
func (a *archetype) size() int {
	return a.handleCol.size()
}

func (a *archetype) bump() {
	a.changeCounter.Add(1)
}

func (a *archetype) counter() uint64 {
	return a.changeCounter.Load()
}

// insert appends a new row for h, writing values (keyed by TypeId) into
// their columns and zero-filling any component column not present in
// values. Returns the new row. Caller must hold a.mu (write).
func (a *archetype) insert(h Handle, values map[TypeId]any) int {
	row := -1
	for id, col := range a.columns {
		if id == handleTypeID {
			continue
		}
		if v, ok := values[id]; ok {
			r := col.push(v)
			row = r
		} else {
			r := col.pushEmpty()
			row = r
		}
	}
	row = a.handleCol.push(h)
	a.bump()
	return row
}

// get returns the boxed value of component id at row. Caller must hold
// at least a.mu (read).
func (a *archetype) get(id TypeId, row int) (any, error) {
	col, ok := a.columns[id]
	if !ok {
		return nil, MissingComponentError{Type: id}
	}
	if row < 0 || row >= col.size() {
		return nil, OutOfRangeError{Row: row, Size: col.size()}
	}
	return col.value(row), nil
}

// ptr returns a *T (boxed as any) addressing component id at row, for
// Ref[T]/generic accessors. Caller must hold at least a.mu (read) for
// the lifetime of the dereference.
func (a *archetype) ptr(id TypeId, row int) (any, error) {
	col, ok := a.columns[id]
	if !ok {
		return nil, MissingComponentError{Type: id}
	}
	if row < 0 || row >= col.size() {
		return nil, OutOfRangeError{Row: row, Size: col.size()}
	}
	return col.ptr(row), nil
}

// put overwrites the columns named in values at row. Caller must hold
// a.mu (write) and must already know a.hasAll(keys(values)).
func (a *archetype) put(row int, values map[TypeId]any) {
	for id, v := range values {
		col, ok := a.columns[id]
		if !ok {
			panic(bark.AddTrace(MissingComponentError{Type: id}))
		}
		col.setValue(row, v)
	}
	a.bump()
}

func (a *archetype) handleAt(row int) Handle {
	return a.handleCol.value(row).(Handle)
}

// erase drops row via swap-with-last on every column and returns the
// handle that used to occupy the tail and now lives at row (NilHandle
// if row was already the tail). Caller must
// hold a.mu (write).
func (a *archetype) erase(row int) Handle {
	n := a.size()
	last := n - 1
	var moved Handle
	if row != last {
		moved = a.handleAt(last)
	}
	for _, col := range a.columns {
		col.erase(row)
	}
	a.bump()
	return moved
}

// swap exchanges two rows in place across every column. Caller must
// hold a.mu (write).
func (a *archetype) swap(rowA, rowB int) {
	if rowA == rowB {
		return
	}
	for _, col := range a.columns {
		col.swap(rowA, rowB)
	}
	a.bump()
}

// moveRowFrom appends a row to a (the destination) built from src's row
// srcRow: for every type a carries, copy it from src if src has it,
// else push an empty value; then erase srcRow from src. Returns the new
// row in a and the handle (if any) displaced in src by the erase.
// Caller must hold both locks, acquired in ascending-hash order
// (lockArchetypePairInOrder in the Registry).
func (a *archetype) moveRowFrom(src *archetype, srcRow int) (newRow int, displaced Handle) {
	for id, dstCol := range a.columns {
		if id == handleTypeID {
			continue
		}
		if srcCol, ok := src.columns[id]; ok {
			if err := dstCol.copyFrom(srcCol, srcRow); err != nil {
				panic(bark.AddTrace(err))
			}
		} else {
			dstCol.pushEmpty()
		}
	}
	h := src.handleAt(srcRow)
	newRow = a.handleCol.push(h)
	a.bump()
	displaced = src.erase(srcRow)
	return newRow, displaced
}

// cloneWithout returns the column type map and tag set other would
// carry with every id in ignore dropped, for the Registry to
// find-or-create the destination archetype of a component-erase
// migration (EraseComponents). Never builds an archetype
// directly, since the registry's archetype cache, not this function,
// owns deduplication by type set.
func cloneWithout(other *archetype, ignore map[TypeId]struct{}) (map[TypeId]reflectTypeOf, map[TypeId]struct{}) {
	types := make(map[TypeId]reflectTypeOf, len(other.columns))
	for id, col := range other.columns {
		if id == handleTypeID {
			continue
		}
		if _, skip := ignore[id]; skip {
			continue
		}
		types[id] = col.typ
	}
	tags := make(map[TypeId]struct{}, len(other.tags))
	for id := range other.tags {
		if _, skip := ignore[id]; skip {
			continue
		}
		tags[id] = struct{}{}
	}
	return types, tags
}

// assertionError marks an invariant violation detected internally.
// Internal invariants are asserted rather than returned as errors: a
// violation means storage bookkeeping has already gone wrong, so it is
// always wrapped with bark.AddTrace and panicked rather than handed
// back to the caller.
type assertionError struct{ msg string }

func (e assertionError) Error() string { return "ecsvault: invariant violation: " + e.msg }
