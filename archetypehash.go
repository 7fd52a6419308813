package ecsvault

import "sort"

// archetypeHash combines a set of TypeIds into the single uint64 key the
// Registry uses to look up an archetype, independent of the order ids
// were supplied in. The mix follows the classic boost::hash_combine
// recurrence, applied over the ids in sorted order so the
// same type set always produces the same hash regardless of insertion
// order.
func archetypeHash(ids []TypeId) uint64 {
	sorted := make([]TypeId, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var seed uint64
	for _, id := range sorted {
		seed = combine(seed, uint64(id))
	}
	return seed
}

// combine mixes h into seed the way boost::hash_combine mixes a golden
// ratio constant and shifted copies of the seed.
func combine(seed, h uint64) uint64 {
	const magic = 0x9e3779b97f4a7c15
	h += magic
	h += seed << 6
	h += seed >> 2
	return seed ^ h
}
