package ecsvault

import (
	"reflect"
	"testing"
)

func TestColumnPushAndValue(t *testing.T) {
	c := newColumn(reflect.TypeOf(posComponent{}))
	row := c.push(posComponent{X: 1, Y: 2})
	if row != 0 {
		t.Fatalf("first push row = %d, want 0", row)
	}
	got := c.value(row).(posComponent)
	if got.X != 1 || got.Y != 2 {
		t.Fatalf("value(%d) = %+v, want {1 2}", row, got)
	}
	if c.size() != 1 {
		t.Fatalf("size() = %d, want 1", c.size())
	}
}

func TestColumnPushEmptyZeroes(t *testing.T) {
	c := newColumn(reflect.TypeOf(posComponent{}))
	row := c.pushEmpty()
	got := c.value(row).(posComponent)
	if got != (posComponent{}) {
		t.Fatalf("pushEmpty() value = %+v, want zero value", got)
	}
}

func TestColumnEraseSwapsWithLast(t *testing.T) {
	c := newColumn(reflect.TypeOf(0))
	c.push(10)
	c.push(20)
	c.push(30)

	c.erase(0)
	if c.size() != 2 {
		t.Fatalf("size() after erase = %d, want 2", c.size())
	}
	if got := c.value(0).(int); got != 30 {
		t.Fatalf("erase(0) left value(0) = %d, want 30 (tail moved in)", got)
	}
	if got := c.value(1).(int); got != 20 {
		t.Fatalf("erase(0) left value(1) = %d, want 20 (unmoved)", got)
	}
}

func TestColumnEraseOfTailIsPlainTruncate(t *testing.T) {
	c := newColumn(reflect.TypeOf(0))
	c.push(10)
	c.push(20)
	c.erase(1)
	if c.size() != 1 {
		t.Fatalf("size() = %d, want 1", c.size())
	}
	if got := c.value(0).(int); got != 10 {
		t.Fatalf("value(0) = %d, want 10", got)
	}
}

func TestColumnSwap(t *testing.T) {
	c := newColumn(reflect.TypeOf(0))
	c.push(1)
	c.push(2)
	c.swap(0, 1)
	if got := c.value(0).(int); got != 2 {
		t.Fatalf("value(0) after swap = %d, want 2", got)
	}
	if got := c.value(1).(int); got != 1 {
		t.Fatalf("value(1) after swap = %d, want 1", got)
	}
}

func TestColumnCopyFromTypeMismatch(t *testing.T) {
	a := newColumn(reflect.TypeOf(0))
	b := newColumn(reflect.TypeOf(""))
	b.push("x")
	if err := a.copyFrom(b, 0); err == nil {
		t.Fatalf("copyFrom across mismatched element types did not error")
	}
}

func TestColumnCopyFromOutOfRange(t *testing.T) {
	a := newColumn(reflect.TypeOf(0))
	b := newColumn(reflect.TypeOf(0))
	if err := a.copyFrom(b, 0); err == nil {
		t.Fatalf("copyFrom from an empty column did not error")
	}
}

func TestColumnPtrAllowsMutation(t *testing.T) {
	c := newColumn(reflect.TypeOf(posComponent{}))
	c.push(posComponent{X: 1})
	p := c.ptr(0).(*posComponent)
	p.X = 99
	if got := c.value(0).(posComponent).X; got != 99 {
		t.Fatalf("mutation through ptr() not visible via value(): got %v", got)
	}
}

func TestColumnOutOfRangePanics(t *testing.T) {
	c := newColumn(reflect.TypeOf(0))
	defer func() {
		if recover() == nil {
			t.Fatalf("at() with an out-of-range row did not panic")
		}
	}()
	c.at(0)
}
