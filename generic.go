package ecsvault

// Thin arity-1/2/3 generic wrappers over the dynamic []any/[]TypeId
// core in registry.go. Compile-time variadic type lists don't lower
// directly to Go generics (a generic function can't
// be instantiated from a reflect.Type discovered at runtime, which the
// Registry's storage core requires), so the dynamic core is canonical
// and these wrappers exist purely for caller ergonomics at known
// arities, the way most Go ECS libraries in the wild expose Get1/Get2/
// Get3-style helpers alongside a dynamic core.

// Insert1 creates a new entity carrying a single component.
func Insert1[A any](r *Registry, a A) Handle {
	return r.Insert(a)
}

// Insert2 creates a new entity carrying two components.
func Insert2[A, B any](r *Registry, a A, b B) Handle {
	return r.Insert(a, b)
}

// Insert3 creates a new entity carrying three components.
func Insert3[A, B, C any](r *Registry, a A, b B, c C) Handle {
	return r.Insert(a, b, c)
}

// Get1 returns a copy of h's component A.
func Get1[A any](r *Registry, h Handle) (A, error) {
	var zero A
	v, err := r.Get(h, TypeOf[A]())
	if err != nil {
		return zero, err
	}
	return v.(A), nil
}

// Get2 returns copies of h's components A and B.
func Get2[A, B any](r *Registry, h Handle) (A, B, error) {
	var za A
	var zb B
	a, err := Get1[A](r, h)
	if err != nil {
		return za, zb, err
	}
	b, err := Get1[B](r, h)
	if err != nil {
		return za, zb, err
	}
	return a, b, nil
}

// Get3 returns copies of h's components A, B and C.
func Get3[A, B, C any](r *Registry, h Handle) (A, B, C, error) {
	var za A
	var zb B
	var zc C
	a, err := Get1[A](r, h)
	if err != nil {
		return za, zb, zc, err
	}
	b, err := Get1[B](r, h)
	if err != nil {
		return za, zb, zc, err
	}
	c, err := Get1[C](r, h)
	if err != nil {
		return za, zb, zc, err
	}
	return a, b, c, nil
}

// Put1 overwrites h's component A.
func Put1[A any](r *Registry, h Handle, a A) error {
	return r.Put(h, a)
}

// Put2 overwrites h's components A and B.
func Put2[A, B any](r *Registry, h Handle, a A, b B) error {
	return r.Put(h, a, b)
}

// Put3 overwrites h's components A, B and C.
func Put3[A, B, C any](r *Registry, h Handle, a A, b B, c C) error {
	return r.Put(h, a, b, c)
}

// Erase1 drops component A from h, migrating it to the archetype
// without A.
func Erase1[A any](r *Registry, h Handle) error {
	return r.EraseComponents(h, TypeOf[A]())
}

// Erase2 drops components A and B from h.
func Erase2[A, B any](r *Registry, h Handle) error {
	return r.EraseComponents(h, TypeOf[A](), TypeOf[B]())
}

// Erase3 drops components A, B and C from h.
func Erase3[A, B, C any](r *Registry, h Handle) error {
	return r.EraseComponents(h, TypeOf[A](), TypeOf[B](), TypeOf[C]())
}

// GetRef captures a staleness-checked Ref to h's component A.
func GetRef[A any](r *Registry, h Handle) (Ref[A], error) {
	typ := TypeOf[A]()
	arch, row, _, err := r.ptrFor(h, typ)
	if err != nil {
		return Ref[A]{}, err
	}
	return newRef[A](r, h, typ, arch, row, arch.counter()), nil
}

// View1 returns a View over every archetype carrying component A.
func View1[A any](r *Registry) *View {
	return r.GetView([]TypeId{TypeOf[A]()}, nil)
}

// View2 returns a View over every archetype carrying components A and B.
func View2[A, B any](r *Registry) *View {
	return r.GetView([]TypeId{TypeOf[A](), TypeOf[B]()}, nil)
}

// View3 returns a View over every archetype carrying components A, B
// and C.
func View3[A, B, C any](r *Registry) *View {
	return r.GetView([]TypeId{TypeOf[A](), TypeOf[B](), TypeOf[C]()}, nil)
}
