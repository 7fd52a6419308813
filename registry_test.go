package ecsvault

import "testing"

func TestRegistryInsertGetErase(t *testing.T) {
	r := NewRegistry()
	h := r.Insert(posComponent{X: 1, Y: 2})

	if !r.Exists(h) {
		t.Fatalf("Exists() = false right after Insert")
	}

	v, err := r.Get(h, TypeOf[posComponent]())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v.(posComponent) != (posComponent{X: 1, Y: 2}) {
		t.Fatalf("Get() = %+v, want {1 2}", v)
	}

	if err := r.Erase(h); err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	if r.Exists(h) {
		t.Fatalf("Exists() = true after Erase")
	}
	if _, err := r.Get(h, TypeOf[posComponent]()); err == nil {
		t.Fatalf("Get() on an erased handle did not error")
	}
}

func TestRegistryInsertSameArchetypeReused(t *testing.T) {
	r := NewRegistry()
	r.Insert(posComponent{X: 1})
	r.Insert(posComponent{X: 2})
	if len(r.archetypes) != 1 {
		t.Fatalf("len(archetypes) = %d, want 1 (same component set)", len(r.archetypes))
	}
}

func TestRegistryPutOverwritesInPlace(t *testing.T) {
	r := NewRegistry()
	h := r.Insert(posComponent{X: 1})
	if err := r.Put(h, posComponent{X: 42}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	v, _ := r.Get(h, TypeOf[posComponent]())
	if v.(posComponent).X != 42 {
		t.Fatalf("Get() after Put = %+v, want X=42", v)
	}
}

func TestRegistryPutMigratesToNewArchetype(t *testing.T) {
	r := NewRegistry()
	h := r.Insert(posComponent{X: 1})
	before, _, _ := r.slots.get(h)

	if err := r.Put(h, velComponent{X: 9}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	after, _, err := r.slots.get(h)
	if err != nil {
		t.Fatalf("get() after Put error = %v", err)
	}
	if after == before {
		t.Fatalf("Put() of a new component type did not migrate archetypes")
	}

	pos, err := r.Get(h, TypeOf[posComponent]())
	if err != nil || pos.(posComponent).X != 1 {
		t.Fatalf("position lost across Put migration: %v, %v", pos, err)
	}
	vel, err := r.Get(h, TypeOf[velComponent]())
	if err != nil || vel.(velComponent).X != 9 {
		t.Fatalf("Get(velComponent) after Put = %v, %v, want X=9", vel, err)
	}
}

func TestRegistryEraseComponentsMigratesToSmallerArchetype(t *testing.T) {
	r := NewRegistry()
	h := r.Insert(posComponent{X: 1}, velComponent{X: 2})
	before, _, _ := r.slots.get(h)

	if err := r.EraseComponents(h, TypeOf[velComponent]()); err != nil {
		t.Fatalf("EraseComponents() error = %v", err)
	}

	after, _, err := r.slots.get(h)
	if err != nil {
		t.Fatalf("get() after EraseComponents error = %v", err)
	}
	if after == before {
		t.Fatalf("EraseComponents() did not migrate archetypes")
	}

	has, err := r.Has(h, TypeOf[velComponent]())
	if err != nil || has {
		t.Fatalf("Has(velComponent) after EraseComponents = %v, %v, want false", has, err)
	}
	pos, err := r.Get(h, TypeOf[posComponent]())
	if err != nil || pos.(posComponent).X != 1 {
		t.Fatalf("position lost across EraseComponents migration: %v, %v", pos, err)
	}
}

func TestRegistryAddTagsMigratesArchetype(t *testing.T) {
	r := NewRegistry()
	h := r.Insert(posComponent{X: 1})
	before, _, _ := r.slots.get(h)

	tag := TypeOf[struct{ frozenTag int }]()
	if err := r.AddTags(h, tag); err != nil {
		t.Fatalf("AddTags() error = %v", err)
	}
	after, _, err := r.slots.get(h)
	if err != nil {
		t.Fatalf("get() after AddTags error = %v", err)
	}
	if after == before {
		t.Fatalf("AddTags() did not migrate to a new archetype")
	}
	has, _ := r.Has(h, tag)
	if !has {
		t.Fatalf("Has(tag) = false after AddTags")
	}

	v, err := r.Get(h, TypeOf[posComponent]())
	if err != nil || v.(posComponent).X != 1 {
		t.Fatalf("component lost across AddTags migration: %v, %v", v, err)
	}
}

func TestRegistryEraseTagsMigratesBack(t *testing.T) {
	r := NewRegistry()
	h := r.Insert(posComponent{X: 1})
	tag := TypeOf[struct{ frozenTag2 int }]()
	r.AddTags(h, tag)

	if err := r.EraseTags(h, tag); err != nil {
		t.Fatalf("EraseTags() error = %v", err)
	}
	has, _ := r.Has(h, tag)
	if has {
		t.Fatalf("Has(tag) = true after EraseTags")
	}
}

func TestRegistryMigrationPreservesOtherEntityOnDisplace(t *testing.T) {
	r := NewRegistry()
	h1 := r.Insert(posComponent{X: 1})
	h2 := r.Insert(posComponent{X: 2})

	tag := TypeOf[struct{ frozenTag3 int }]()
	if err := r.AddTags(h1, tag); err != nil {
		t.Fatalf("AddTags() error = %v", err)
	}

	v, err := r.Get(h2, TypeOf[posComponent]())
	if err != nil {
		t.Fatalf("Get(h2) error = %v after an unrelated entity migrated", err)
	}
	if v.(posComponent).X != 2 {
		t.Fatalf("Get(h2) = %+v, want X=2", v)
	}
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.Insert(posComponent{X: 1})
	r.Insert(velComponent{X: 2})
	r.Clear()
	if r.Size() != 0 {
		t.Fatalf("Size() after Clear = %d, want 0", r.Size())
	}
	if len(r.archetypes) != 0 {
		t.Fatalf("len(archetypes) after Clear = %d, want 0", len(r.archetypes))
	}
}

func TestRegistrySize(t *testing.T) {
	r := NewRegistry()
	r.Insert(posComponent{X: 1})
	r.Insert(posComponent{X: 2})
	r.Insert(velComponent{X: 3})
	if r.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", r.Size())
	}
}

func TestRegistryDuplicateComponentTypeInInsertPanics(t *testing.T) {
	r := NewRegistry()
	defer func() {
		if recover() == nil {
			t.Fatalf("Insert() with two values of the same type did not panic")
		}
	}()
	r.Insert(posComponent{X: 1}, posComponent{X: 2})
}
