package ecsvault

import (
	"sync/atomic"
	"testing"
)

func TestManagerInsertBulk(t *testing.T) {
	m := NewManager()
	defer m.Close()

	specs := make([][]any, 10)
	for i := range specs {
		specs[i] = []any{posComponent{X: float64(i)}}
	}
	handles := m.InsertBulk(specs)
	if len(handles) != 10 {
		t.Fatalf("len(handles) = %d, want 10", len(handles))
	}
	if m.Registry.Size() != 10 {
		t.Fatalf("Registry.Size() = %d, want 10", m.Registry.Size())
	}
	for _, h := range handles {
		if !m.Registry.Exists(h) {
			t.Fatalf("handle %v from InsertBulk does not exist", h)
		}
	}
}

func TestManagerEraseBulk(t *testing.T) {
	m := NewManager()
	defer m.Close()

	specs := make([][]any, 5)
	for i := range specs {
		specs[i] = []any{posComponent{X: float64(i)}}
	}
	handles := m.InsertBulk(specs)

	if err := m.EraseBulk(handles); err != nil {
		t.Fatalf("EraseBulk() error = %v", err)
	}
	if m.Registry.Size() != 0 {
		t.Fatalf("Registry.Size() after EraseBulk = %d, want 0", m.Registry.Size())
	}
}

func TestManagerForEachViewVisitsEveryEntity(t *testing.T) {
	m := NewManager()
	defer m.Close()

	for i := 0; i < 50; i++ {
		m.Registry.Insert(posComponent{X: float64(i)})
	}
	view := View1[posComponent](m.Registry)

	var visited atomic.Int64
	m.ForEachView(view, func(h Handle, row int) {
		visited.Add(1)
	})
	if got := visited.Load(); got != 50 {
		t.Fatalf("ForEachView visited %d entities, want 50", got)
	}
}
