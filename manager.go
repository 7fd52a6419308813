package ecsvault

import "sync"

// Manager is a façade over a Registry that dispatches bulk work (a
// callback applied to every row of a View, or a batch of inserts/
// erases) onto a ThreadPool, sequencing registry/archetype/slot locks
// the same way Registry's own single-entity operations do. Grounded on
// a lock-bit dispatch pattern reshaped around the registry>archetype>
// slot hierarchy instead of a single lock-bit mask.
type Manager struct {
	Registry *Registry
	pool     *ThreadPool
}

// NewManager builds a Manager over a fresh Registry, with a ThreadPool
// sized per Config.DefaultPoolSize.
func NewManager() *Manager {
	return &Manager{
		Registry: NewRegistry(),
		pool:     NewThreadPool(Config.DefaultPoolSize),
	}
}

// Close releases the Manager's ThreadPool. The underlying Registry is
// left usable.
func (m *Manager) Close() {
	m.pool.Close()
}

// ForEachView dispatches fn over every (Handle, row) the View matched, splitting by archetype chunk across the ThreadPool and
// blocking until every chunk has run.
func (m *Manager) ForEachView(v *View, fn func(h Handle, row int)) {
	chunks := v.Chunks()
	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for _, c := range chunks {
		c := c
		m.pool.Enqueue(func() {
			defer wg.Done()
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
			for row, h := range handles {
				fn(h, row)
			}
		})
	}
	wg.Wait()
	logger.Debugw("ForEachView dispatch complete", "chunks", len(chunks))
}

// InsertBulk inserts every entry in specs concurrently, returning
// Handles in the same order as specs. Each entry is a slice of
// component values for one entity, as would be passed to Insert.
func (m *Manager) InsertBulk(specs [][]any) []Handle {
	handles := make([]Handle, len(specs))
	var wg sync.WaitGroup
	wg.Add(len(specs))
	for i, values := range specs {
		i, values := i, values
		m.pool.Enqueue(func() {
			defer wg.Done()
			handles[i] = m.Registry.Insert(values...)
		})
	}
	wg.Wait()
	logger.Debugw("InsertBulk dispatch complete", "count", len(specs))
	return handles
}

// EraseBulk erases every handle in hs concurrently, returning the
// first error encountered (if any); all erases are still attempted.
func (m *Manager) EraseBulk(hs []Handle) error {
	errs := make([]error, len(hs))
	var wg sync.WaitGroup
	wg.Add(len(hs))
	for i, h := range hs {
		i, h := i, h
		m.pool.Enqueue(func() {
			defer wg.Done()
			errs[i] = m.Registry.Erase(h)
		})
	}
	wg.Wait()

	failed := 0
	var first error
	for _, err := range errs {
		if err != nil {
			failed++
			if first == nil {
				first = err
			}
		}
	}
	logger.Debugw("EraseBulk dispatch complete", "count", len(hs), "failed", failed)
	return first
}
