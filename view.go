package ecsvault

import "iter"

// chunk pairs an archetype with the row count it had when the owning
// View materialized, for parallel dispatch over a stable extent even
// if the archetype keeps growing afterward.
type chunk struct {
	arch *archetype
	size int
}

// View is a predicate over archetypes -- every type in include must be
// present, none in exclude may be. The candidate archetypes are the
// registry's as of GetView; the predicate and row counts are applied
// once, on first use. An archetype created after GetView is never
// observed, even if it would otherwise match.
type View struct {
	all     []*archetype
	include []TypeId
	exclude []TypeId

	materialized bool
	chunks       []chunk
}

func newView(all []*archetype, include, exclude []TypeId) *View {
	return &View{all: all, include: include, exclude: exclude}
}

func (v *View) materialize() {
	if v.materialized {
		return
	}
	v.materialized = true
	for _, a := range v.all {
		if !a.hasAll(v.include) {
			continue
		}
		if len(v.exclude) > 0 && a.hasAny(v.exclude) {
			continue
		}
		a.mu.RLock()
		n := a.size()
		a.mu.RUnlock()
		v.chunks = append(v.chunks, chunk{arch: a, size: n})
	}
}

// Chunks returns the (archetype, size) pairs matched by this View, for
// callers (e.g. the ThreadPool dispatch in manager.go) that want to
// split work themselves rather than iterate row-by-row.
func (v *View) Chunks() []chunk {
	v.materialize()
	return v.chunks
}

// Len returns the total number of rows across every matched archetype,
// as of materialization time.
func (v *View) Len() int {
	v.materialize()
	n := 0
	for _, c := range v.chunks {
		n += c.size
	}
	return n
}

// Handles iterates every Handle the View matched, in archetype order.
func (v *View) Handles() iter.Seq[Handle] {
	v.materialize()
	return func(yield func(Handle) bool) {
		for _, c := range v.chunks {
			c.arch.mu.RLock()
			n := c.size
			if cur := c.arch.size(); cur < n {
				n = cur
			}
			handles := make([]Handle, n)
			for i := 0; i < n; i++ {
				handles[i] = c.arch.handleAt(i)
			}
			c.arch.mu.RUnlock()
			for _, h := range handles {
				if !yield(h) {
					return
				}
			}
		}
	}
}

// All iterates (Handle, row) pairs for every row the View matched. The row index is only valid while the caller holds no
// assumption about ordering stability across mutation; use Ref[T] to
// hold a reference past a single pass.
func (v *View) All() iter.Seq2[Handle, int] {
	v.materialize()
	return func(yield func(Handle, int) bool) {
		for _, c := range v.chunks {
			n := c.size
			if cur := c.arch.size(); cur < n {
				n = cur
			}
			for row := 0; row < n; row++ {
				c.arch.mu.RLock()
				h := c.arch.handleAt(row)
				c.arch.mu.RUnlock()
				if !yield(h, row) {
					return
				}
			}
		}
	}
}
