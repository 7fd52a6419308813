package ecsvault

import (
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// TypeId is a compile-time-stable hash identifying a component type.
// It is derived from the Go type's runtime identity and is globally
// unique for the lifetime of the process.
type TypeId uint64

var typeRegistry = struct {
	mu    sync.RWMutex
	ids   map[reflect.Type]TypeId
	names map[TypeId]string
}{
	ids:   make(map[reflect.Type]TypeId),
	names: make(map[TypeId]string),
}

// idForType returns the stable TypeId for t, allocating one on first
// sight. The hash is seeded from a named type's package path and name
// (from the String form for an unnamed type) so that two processes (or
// two runs of the same process) agree on the id for a given type
// without a shared explicit registry.
func idForType(t reflect.Type) TypeId {
	typeRegistry.mu.RLock()
	if id, ok := typeRegistry.ids[t]; ok {
		typeRegistry.mu.RUnlock()
		return id
	}
	typeRegistry.mu.RUnlock()

	typeRegistry.mu.Lock()
	defer typeRegistry.mu.Unlock()
	if id, ok := typeRegistry.ids[t]; ok {
		return id
	}

	name := t.String()
	if t.PkgPath() != "" {
		name = t.PkgPath() + "." + t.Name()
	}
	id := TypeId(xxhash.Sum64String(name))
	// Resolve the astronomically unlikely hash collision by salting
	// until the id is free; keeps TypeId a pure function of type
	// identity in the overwhelmingly common case.
	for {
		if existing, taken := typeRegistry.names[id]; !taken || existing == name {
			break
		}
		id = TypeId(xxhash.Sum64String(name)) ^ (id<<1 | id>>63)
	}
	typeRegistry.ids[t] = id
	typeRegistry.names[id] = name
	return id
}

// TypeOf returns the stable TypeId for T.
func TypeOf[T any]() TypeId {
	return idForType(reflect.TypeFor[T]())
}

// typeName returns the best-effort display name registered for id, or
// an empty string if id has never been seen by idForType.
func typeName(id TypeId) string {
	typeRegistry.mu.RLock()
	defer typeRegistry.mu.RUnlock()
	return typeRegistry.names[id]
}

// handleTypeID is the reserved TypeId for the Handle pseudo-component
// every archetype carries.
var handleTypeID = TypeOf[Handle]()

const maxMaskBits = 64

var maskBits = struct {
	mu   sync.Mutex
	next uint32
	bits map[TypeId]uint32
}{bits: make(map[TypeId]uint32)}

// maskBitFor returns the bit index assigned to id for the mask.Mask
// archetype signature, and false once maxMaskBits have been handed out.
// Membership checks (archetype has/hasAll/hasAny, View materialization)
// read the archetype's TypeId set, column map and tag map, not the
// signature, so running out of bits is not an error.
func maskBitFor(id TypeId) (uint32, bool) {
	maskBits.mu.Lock()
	defer maskBits.mu.Unlock()
	if b, ok := maskBits.bits[id]; ok {
		return b, true
	}
	if maskBits.next >= maxMaskBits {
		return 0, false
	}
	b := maskBits.next
	maskBits.next++
	maskBits.bits[id] = b
	return b, true
}
