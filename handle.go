package ecsvault

import "fmt"

// Handle is an opaque, stable identifier for an entity: a storage
// index plus a generation counter that is bumped every time the slot
// is reused. Two handles compare equal iff every field matches
// by value; a handle whose generation no longer matches its
// slot's current generation is dead.
type Handle struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"gen"`
	Reserved   uint32 `json:"-"`
}

// NilHandle is the zero Handle; it never names a live entity.
var NilHandle = Handle{}

// IsNil reports whether h is the zero Handle.
func (h Handle) IsNil() bool {
	return h == NilHandle
}

func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d/%d)", h.Index, h.Generation)
}
