/*
Package ecsvault is an archetype-based Entity-Component-System storage
engine.

It keeps entities that share the same set of component types packed
together in columnar storage (an Archetype), hands callers a stable
Handle that survives entities moving between archetypes, and offers a
View mechanism for enumerating entities matching an include/exclude
predicate. A Manager façade sequences the registry/archetype/slot lock
hierarchy and fans bulk work out across a fixed-size ThreadPool.

Core Concepts:

  - Handle: an opaque, stable identifier for an entity.
  - Archetype: the set of component types an entity carries, plus the
    columnar storage for those components.
  - Registry: owns every archetype and the slot map from Handle to
    (archetype, row); performs insert/get/put/erase and migration.
  - View: a snapshot of the archetypes matching an include/exclude
    predicate over component TypeIds.
  - Ref[T]: a short-lived component reference that detects staleness
    via a per-archetype change counter.

Basic usage:

	registry := ecsvault.NewRegistry()
	h := ecsvault.Insert2(registry, Position{X: 1}, Velocity{X: 2})

	pos, err := ecsvault.Get1[Position](registry, h)
	if err != nil {
		log.Fatal(err)
	}
	pos.X += 1

	view := ecsvault.View1[Position](registry)
	for h := range view.Handles() {
		ref, err := ecsvault.GetRef[Position](registry, h)
		if err != nil {
			continue
		}
		pos, err := ref.Get()
		if err != nil {
			continue
		}
		pos.X += 1
	}

ecsvault is the storage core of a larger simulation framework, but it
also works standalone.
*/
package ecsvault
