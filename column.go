package ecsvault

import (
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// column is dense, type-erased storage for one component type within
// one archetype: push, erase-by-swap, copy-from, swap, clone-empty. It
// is backed by a reflect.Value slice rather than a Go generic
// instantiation, because the Registry's dynamic core (Insert/Get/Put
// against []any) must create and index columns for component types it
// only knows as a reflect.Type at runtime -- Go generics can't be
// instantiated from a reflect.Type. This mirrors how a
// reflection-based component store writes into a column found by
// scanning element types rather than a type parameter: a single
// struct operating over an untyped buffer rather than a v-table of
// generated methods per type.
type column struct {
	typ  reflect.Type
	data reflect.Value // addressable slice of typ
}

func newColumn(t reflect.Type) *column {
	return &column{typ: t, data: reflect.MakeSlice(reflect.SliceOf(t), 0, 0)}
}

func (c *column) size() int { return c.data.Len() }

// pushEmpty appends a zero-valued element and returns its row.
func (c *column) pushEmpty() int {
	c.data = reflect.Append(c.data, reflect.Zero(c.typ))
	return c.data.Len() - 1
}

// push appends v, coercing it to the column's element type, and
// returns its row (the previous size).
func (c *column) push(v any) int {
	c.data = reflect.Append(c.data, c.coerce(v))
	return c.data.Len() - 1
}

func (c *column) at(row int) reflect.Value {
	if row < 0 || row >= c.data.Len() {
		panic(bark.AddTrace(OutOfRangeError{Row: row, Size: c.data.Len()}))
	}
	return c.data.Index(row)
}

// value boxes the element at row as an any.
func (c *column) value(row int) any { return c.at(row).Interface() }

// ptr returns a *T (boxed as any, T == c.typ) addressing row in the
// backing slice. Valid only until the next structural mutation of this
// column; Ref[T] detects such mutations through the archetype's change
// counter.
func (c *column) ptr(row int) any { return c.at(row).Addr().Interface() }

func (c *column) setValue(row int, v any) { c.at(row).Set(c.coerce(v)) }

func (c *column) coerce(v any) reflect.Value {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return reflect.Zero(c.typ)
	}
	if rv.Type() != c.typ {
		panic(bark.AddTrace(TypeMismatchError{Want: idForType(c.typ), Got: idForType(rv.Type())}))
	}
	return rv
}

// erase swaps the value at row with the tail value and truncates,
// returning row (the index the former tail now occupies). Per
// section 4.1. Callers that need to know which handle moved must read
// the Handle column at `last` before calling erase.
func (c *column) erase(row int) int {
	n := c.data.Len()
	if row < 0 || row >= n {
		panic(bark.AddTrace(OutOfRangeError{Row: row, Size: n}))
	}
	last := n - 1
	if row != last {
		c.data.Index(row).Set(c.data.Index(last))
	}
	c.data = c.data.Slice(0, last)
	return row
}

func (c *column) swap(a, b int) {
	n := c.data.Len()
	if a < 0 || a >= n || b < 0 || b >= n {
		panic(bark.AddTrace(OutOfRangeError{Row: maxInt(a, b), Size: n}))
	}
	if a == b {
		return
	}
	tmp := reflect.New(c.typ).Elem()
	tmp.Set(c.data.Index(a))
	c.data.Index(a).Set(c.data.Index(b))
	c.data.Index(b).Set(tmp)
}

func (c *column) cloneEmpty() *column { return newColumn(c.typ) }

// copyFrom appends a deep copy of other[row] to c. Fails with
// TypeMismatch if the two columns hold different element types, or
// OutOfRange if row >= other.size().
func (c *column) copyFrom(other *column, row int) error {
	if other.typ != c.typ {
		return TypeMismatchError{Want: idForType(c.typ), Got: idForType(other.typ)}
	}
	n := other.data.Len()
	if row < 0 || row >= n {
		return OutOfRangeError{Row: row, Size: n}
	}
	c.data = reflect.Append(c.data, other.data.Index(row))
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
