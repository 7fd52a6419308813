package ecsvault

import (
	"reflect"
	"sort"
	"sync"

	"github.com/TheBitDrifter/bark"
)

// Registry owns every archetype and the SlotMap binding handles to
// their current storage location. Locking follows a strict hierarchy
// registry lock, then archetype lock(s), then the
// SlotMap's own lock. Operations touching two archetypes (Put, Erase of
// a component set, AddTags, EraseTags, migration in general) always
// acquire both archetype locks in ascending hash order to avoid the
// classic two-lock deadlock, regardless of which archetype is logically
// the "source."
type Registry struct {
	mu         sync.RWMutex
	archetypes map[uint64]*archetype
	slots      *slotMap
}

// NewRegistry returns an empty Registry ready for use.
func NewRegistry() *Registry {
	return &Registry{
		archetypes: make(map[uint64]*archetype),
		slots:      newSlotMap(Config.SlotMapInitialCapacity),
	}
}

// componentSet describes the pending insert/put: a TypeId per value,
// plus the reflect.Type needed to build a column the first time an
// archetype for this set is seen.
type componentSet struct {
	ids   []TypeId
	types map[TypeId]reflect.Type
	vals  map[TypeId]any
}

func buildComponentSet(values []any) componentSet {
	cs := componentSet{
		ids:   make([]TypeId, 0, len(values)),
		types: make(map[TypeId]reflect.Type, len(values)),
		vals:  make(map[TypeId]any, len(values)),
	}
	for _, v := range values {
		t := reflect.TypeOf(v)
		id := idForType(t)
		if _, dup := cs.vals[id]; dup {
			panic(bark.AddTrace(DuplicateTypeError{Type: id}))
		}
		cs.ids = append(cs.ids, id)
		cs.types[id] = t
		cs.vals[id] = v
	}
	return cs
}

// archetypeKey hashes a component/tag TypeId set into the Registry's
// map key, independent of handleTypeID (every archetype implicitly
// carries the handle column).
func archetypeKey(componentIDs []TypeId, tags map[TypeId]struct{}) uint64 {
	all := make([]TypeId, 0, len(componentIDs)+len(tags))
	all = append(all, componentIDs...)
	for id := range tags {
		all = append(all, id)
	}
	return archetypeHash(all)
}

// getOrCreateArchetype looks up (and if needed builds) the archetype
// for exactly this component-type map + tag set. Takes the registry
// write lock only on the creation path.
func (r *Registry) getOrCreateArchetype(types map[TypeId]reflect.Type, tags map[TypeId]struct{}) *archetype {
	ids := make([]TypeId, 0, len(types))
	for id := range types {
		ids = append(ids, id)
	}
	key := archetypeKey(ids, tags)

	r.mu.RLock()
	a, ok := r.archetypes[key]
	r.mu.RUnlock()
	if ok {
		return a
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.archetypes[key]; ok {
		return a
	}

	cols := make(map[TypeId]reflect.Type, len(types)+1)
	for id, t := range types {
		cols[id] = t
	}
	cols[handleTypeID] = handleReflectType

	a = newArchetype(key, cols, cloneTagSet(tags))
	r.archetypes[key] = a
	return a
}

func cloneTagSet(tags map[TypeId]struct{}) map[TypeId]struct{} {
	out := make(map[TypeId]struct{}, len(tags))
	for id := range tags {
		out[id] = struct{}{}
	}
	return out
}

// Insert creates a new entity carrying values as its initial
// components, returning its Handle.
func (r *Registry) Insert(values ...any) Handle {
	cs := buildComponentSet(values)
	arch := r.getOrCreateArchetype(cs.types, nil)

	arch.mu.Lock()
	h := r.slots.alloc(arch, -1)
	row := arch.insert(h, cs.vals)
	arch.mu.Unlock()

	if err := r.slots.rebind(h, arch, row); err != nil {
		panic(bark.AddTrace(assertionError{"rebind of freshly-allocated slot failed"}))
	}
	return h
}

// Exists reports whether h currently names a live entity.
func (r *Registry) Exists(h Handle) bool {
	return r.slots.exists(h)
}

// Has reports whether h's entity carries component/tag id.
func (r *Registry) Has(h Handle, id TypeId) (bool, error) {
	arch, _, err := r.slots.get(h)
	if err != nil {
		return false, err
	}
	return arch.has(id), nil
}

// HasAll reports whether h's entity carries every id in ids.
func (r *Registry) HasAll(h Handle, ids []TypeId) (bool, error) {
	arch, _, err := r.slots.get(h)
	if err != nil {
		return false, err
	}
	return arch.hasAll(ids), nil
}

// lockRowRead resolves h to its current (archetype, row) and returns
// with that archetype's RLock held, re-resolving until the slot still
// names the same archetype after the lock is acquired -- a migration
// racing the lookup can move h to a different archetype entirely, in
// which case the wrong lock was taken and the attempt is retried.
func (r *Registry) lockRowRead(h Handle) (*archetype, int, error) {
	for {
		arch, row, err := r.slots.get(h)
		if err != nil {
			return nil, 0, err
		}
		arch.mu.RLock()
		arch2, row2, err := r.slots.get(h)
		if err != nil {
			arch.mu.RUnlock()
			return nil, 0, err
		}
		if arch2 != arch {
			arch.mu.RUnlock()
			continue
		}
		return arch, row2, nil
	}
}

// lockRowWrite is lockRowRead's write-lock counterpart.
func (r *Registry) lockRowWrite(h Handle) (*archetype, int, error) {
	for {
		arch, row, err := r.slots.get(h)
		if err != nil {
			return nil, 0, err
		}
		arch.mu.Lock()
		arch2, row2, err := r.slots.get(h)
		if err != nil {
			arch.mu.Unlock()
			return nil, 0, err
		}
		if arch2 != arch {
			arch.mu.Unlock()
			continue
		}
		return arch, row2, nil
	}
}

// Get returns the boxed value of component id on entity h.
func (r *Registry) Get(h Handle, id TypeId) (any, error) {
	arch, row, err := r.lockRowRead(h)
	if err != nil {
		return nil, err
	}
	defer arch.mu.RUnlock()
	return arch.get(id, row)
}

// ptrFor is the internal accessor GetRef uses: it returns a
// live *T addressing h's component id, validated for the caller's
// arch/row pairing. Caller must not retain the pointer past the next
// structural mutation of arch.
func (r *Registry) ptrFor(h Handle, id TypeId) (*archetype, int, any, error) {
	arch, row, err := r.lockRowRead(h)
	if err != nil {
		return nil, 0, nil, err
	}
	defer arch.mu.RUnlock()
	p, err := arch.ptr(id, row)
	if err != nil {
		return nil, 0, nil, err
	}
	return arch, row, p, nil
}

// Put writes values onto h. A value whose type is already present on h
// overwrites it in place; a value whose type is not yet present
// migrates h to the archetype for its current type set union the new
// types, same as AddTags but carrying data instead of a bare tag.
func (r *Registry) Put(h Handle, values ...any) error {
	cs := buildComponentSet(values)

	src, _, err := r.slots.get(h)
	if err != nil {
		return err
	}
	if !src.hasAll(cs.ids) {
		return r.putMigrate(h, cs)
	}

	arch, row, err := r.lockRowWrite(h)
	if err != nil {
		return err
	}
	defer arch.mu.Unlock()
	arch.put(row, cs.vals)
	return nil
}

// putMigrate handles the Put case where one or more values name a
// component type not yet on h: find-or-create the destination
// archetype for the union type set, move the row across, then write
// the new values into it.
func (r *Registry) putMigrate(h Handle, cs componentSet) error {
	src, srcRow, err := r.slots.get(h)
	if err != nil {
		return err
	}

	types := make(map[TypeId]reflect.Type, len(src.columns)+len(cs.ids))
	for id, col := range src.columns {
		if id == handleTypeID {
			continue
		}
		types[id] = col.typ
	}
	for id, t := range cs.types {
		types[id] = t
	}
	dst := r.getOrCreateArchetype(types, src.tags)

	first, second := lockArchetypePairInOrder(src, dst)
	first.mu.Lock()
	if first != second {
		second.mu.Lock()
	}

	newRow, displaced := dst.moveRowFrom(src, srcRow)
	dst.put(newRow, cs.vals)

	if first != second {
		second.mu.Unlock()
	}
	first.mu.Unlock()

	if err := r.slots.rebind(h, dst, newRow); err != nil {
		panic(bark.AddTrace(assertionError{"rebind after put migration failed"}))
	}
	if !displaced.IsNil() {
		if err := r.slots.rebind(displaced, src, srcRow); err != nil {
			panic(bark.AddTrace(assertionError{"rebind of displaced handle after put migration failed"}))
		}
	}
	return nil
}

// Erase removes h entirely: its row is dropped from its archetype (via
// swap-with-last) and its slot is freed.
func (r *Registry) Erase(h Handle) error {
	arch, row, err := r.lockRowWrite(h)
	if err != nil {
		return err
	}
	moved := arch.erase(row)

	if !moved.IsNil() {
		if err := r.slots.rebind(moved, arch, row); err != nil {
			arch.mu.Unlock()
			panic(bark.AddTrace(assertionError{"rebind after swap-erase failed"}))
		}
	}
	r.slots.free(h)
	arch.mu.Unlock()
	return nil
}

// EraseComponents migrates h into the archetype identical to its
// current one minus the given component/tag ids (no-op for ids not
// present), unlike Erase which drops the entity entirely.
func (r *Registry) EraseComponents(h Handle, ids ...TypeId) error {
	src, srcRow, err := r.slots.get(h)
	if err != nil {
		return err
	}

	ignore := make(map[TypeId]struct{}, len(ids))
	for _, id := range ids {
		ignore[id] = struct{}{}
	}

	types, tags := cloneWithout(src, ignore)
	dst := r.getOrCreateArchetype(types, tags)
	if dst == src {
		return nil
	}

	first, second := lockArchetypePairInOrder(src, dst)
	first.mu.Lock()
	if first != second {
		second.mu.Lock()
	}

	newRow, displaced := dst.moveRowFrom(src, srcRow)

	if first != second {
		second.mu.Unlock()
	}
	first.mu.Unlock()

	if err := r.slots.rebind(h, dst, newRow); err != nil {
		panic(bark.AddTrace(assertionError{"rebind after component erase failed"}))
	}
	if !displaced.IsNil() {
		if err := r.slots.rebind(displaced, src, srcRow); err != nil {
			panic(bark.AddTrace(assertionError{"rebind of displaced handle after component erase failed"}))
		}
	}
	return nil
}

// AddTags migrates h into the archetype identical to its current one
// plus the given tag ids (no-op for tags already present).
func (r *Registry) AddTags(h Handle, tags ...TypeId) error {
	return r.migrateTags(h, tags, nil)
}

// EraseTags migrates h into the archetype identical to its current one
// minus the given tag ids (no-op for tags not present).
func (r *Registry) EraseTags(h Handle, tags ...TypeId) error {
	return r.migrateTags(h, nil, tags)
}

func (r *Registry) migrateTags(h Handle, add, remove []TypeId) error {
	src, srcRow, err := r.slots.get(h)
	if err != nil {
		return err
	}

	newTags := cloneTagSet(src.tags)
	for _, id := range add {
		newTags[id] = struct{}{}
	}
	for _, id := range remove {
		delete(newTags, id)
	}

	types := make(map[TypeId]reflect.Type, len(src.columns))
	for id, col := range src.columns {
		if id == handleTypeID {
			continue
		}
		types[id] = col.typ
	}
	dst := r.getOrCreateArchetype(types, newTags)
	if dst == src {
		return nil
	}

	first, second := lockArchetypePairInOrder(src, dst)
	first.mu.Lock()
	if first != second {
		second.mu.Lock()
	}

	newRow, displaced := dst.moveRowFrom(src, srcRow)

	if first != second {
		second.mu.Unlock()
	}
	first.mu.Unlock()

	if err := r.slots.rebind(h, dst, newRow); err != nil {
		panic(bark.AddTrace(assertionError{"rebind after tag migration failed"}))
	}
	if !displaced.IsNil() {
		if err := r.slots.rebind(displaced, src, srcRow); err != nil {
			panic(bark.AddTrace(assertionError{"rebind of displaced handle after tag migration failed"}))
		}
	}
	return nil
}

// lockArchetypePairInOrder returns a and b reordered so the one with
// the smaller hash is acquired first, enforcing the ascending-hash
// two-archetype lock order that every operation touching two
// archetypes at once must follow.
func lockArchetypePairInOrder(a, b *archetype) (first, second *archetype) {
	if a == b || a.hash <= b.hash {
		return a, b
	}
	return b, a
}

// GetView returns a View over every archetype whose type set contains
// every id in include and none of the ids in exclude.
func (r *Registry) GetView(include, exclude []TypeId) *View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	archs := make([]*archetype, 0, len(r.archetypes))
	for _, a := range r.archetypes {
		archs = append(archs, a)
	}
	sort.Slice(archs, func(i, j int) bool { return archs[i].hash < archs[j].hash })
	return newView(archs, include, exclude)
}

// Clear drops every archetype and every slot; the Registry is left as
// if newly constructed.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archetypes = make(map[uint64]*archetype)
	r.slots.reset()
}

// Size returns the number of live entities across every archetype.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.archetypes {
		a.mu.RLock()
		n += a.size()
		a.mu.RUnlock()
	}
	return n
}
