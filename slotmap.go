package ecsvault

import "sync"

// slot is one entry of the SlotMap: either a live binding to
// (archetype, row) at the current generation, or a dead entry linked
// into the free list via nextFree.
type slot struct {
	arch       *archetype
	row        int
	generation uint32
	alive      bool
	nextFree   int32 // -1 if none
}

// slotMap maps a Handle's Index to its current (archetype, row),
// guarded by its own RWMutex independent of any archetype's lock. Rows
// shift as entities migrate; callers update a slot's (arch, row)
// under this lock whenever a migration or swap-erase relocates the
// row it names.
type slotMap struct {
	mu       sync.RWMutex
	slots    []slot
	freeHead int32 // -1 if none
}

func newSlotMap(initialCap int) *slotMap {
	return &slotMap{
		slots:    make([]slot, 0, initialCap),
		freeHead: -1,
	}
}

// alloc reserves a slot for a new entity at (arch, row) and returns its
// Handle. Reuses a freed slot when available; free already bumped its
// generation, so the new handle's generation is strictly greater than
// that of the handle last freed from the index. reset discards every
// slot, so indices handed out after it start again at generation 1.
func (m *slotMap) alloc(arch *archetype, row int) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.freeHead >= 0 {
		idx := m.freeHead
		s := &m.slots[idx]
		m.freeHead = s.nextFree
		s.arch = arch
		s.row = row
		s.alive = true
		return Handle{Index: uint32(idx), Generation: s.generation}
	}

	idx := uint32(len(m.slots))
	m.slots = append(m.slots, slot{arch: arch, row: row, alive: true, generation: 1})
	return Handle{Index: idx, Generation: 1}
}

// get resolves h to its current (archetype, row). Returns DeadHandleError
// if h's generation doesn't match the slot's current generation.
func (m *slotMap) get(h Handle) (*archetype, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(h)
}

// getLocked is get without acquiring the lock; callers that already
// hold m.mu (read or write) use this to avoid recursive locking.
func (m *slotMap) getLocked(h Handle) (*archetype, int, error) {
	if int(h.Index) >= len(m.slots) {
		return nil, 0, DeadHandleError{Handle: h}
	}
	s := &m.slots[h.Index]
	if !s.alive || s.generation != h.Generation {
		return nil, 0, DeadHandleError{Handle: h}
	}
	return s.arch, s.row, nil
}

func (m *slotMap) exists(h Handle) bool {
	_, _, err := m.get(h)
	return err == nil
}

// rebind updates a live slot's (archetype, row) in place, e.g. after a
// migration or after a sibling row was moved into it by swap-erase.
func (m *slotMap) rebind(h Handle, arch *archetype, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(h.Index) >= len(m.slots) {
		return DeadHandleError{Handle: h}
	}
	s := &m.slots[h.Index]
	if !s.alive || s.generation != h.Generation {
		return DeadHandleError{Handle: h}
	}
	s.arch = arch
	s.row = row
	return nil
}

// free invalidates h's slot, bumping its generation and linking it
// into the free list. No-op if h is already dead.
func (m *slotMap) free(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(h.Index) >= len(m.slots) {
		return
	}
	s := &m.slots[h.Index]
	if !s.alive || s.generation != h.Generation {
		return
	}
	s.alive = false
	s.arch = nil
	s.generation++
	s.nextFree = m.freeHead
	m.freeHead = int32(h.Index)
}

func (m *slotMap) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}

// reset drops every slot, returning the map to empty (Registry.Clear).
func (m *slotMap) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = m.slots[:0]
	m.freeHead = -1
}
