package runtime

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// pyHash implements py_hash: consistent with pyEq for every
// hashable value (1, 1.0, and True must hash identically since they
// compare equal). Returns a hash for unhashable values too — callers
// that need the Python "unhashable type" TypeError check isHashable
// first; pyHash itself is total so it can also key dict internals.
func pyHash(v Value, heap *Heap, interns *Interner) uint64 {
	switch v.Tag {
	case TagNone:
		return mix(0x9e3779b97f4a7c15)
	case TagEllipsis:
		return mix(0xe111951505)
	case TagBool, TagInt, TagFloat:
		return hashNumeric(v)
	case TagInternString:
		// Must agree with hashRef's *HeapString case: a literal and a
		// runtime-built str of identical content compare equal (see
		// pyEq) and so must hash identically, e.g. for dict lookups
		// keyed by one representation and probed with the other.
		return xxhash.Sum64String(interns.Resolve(v.N))
	case TagBuiltin:
		return mix(0xb0117 ^ uint64(v.Fn))
	case TagRef:
		return hashRef(v.Obj, heap, interns)
	}
	return 0
}

func mix(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// hashNumeric gives int/float/bool values that compare equal
// (numericEq) the same hash, as Python requires for dict keys.
func hashNumeric(v Value) uint64 {
	f := asFloat(v)
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return mix(uint64(int64(f)))
	}
	return mix(math.Float64bits(f))
}

func hashRef(id ObjectID, heap *Heap, interns *Interner) uint64 {
	switch d := heap.Get(id).(type) {
	case *HeapString:
		return xxhash.Sum64String(d.Text)
	case *HeapBytes:
		return xxhash.Sum64(d.Data)
	case *HeapTuple:
		h := uint64(0x7a7a7a7a)
		for _, item := range d.Items {
			h = mix(h ^ pyHash(item, heap, interns))
		}
		return h
	case *HeapException:
		h := mix(0xe4c ^ uint64(d.Kind))
		if d.HasMsg {
			h = mix(h ^ xxhash.Sum64String(d.Message))
		}
		return h
	default:
		// list/dict: unhashable, but pyHash must still return something
		// deterministic for internal bookkeeping that never surfaces.
		return mix(uint64(id.index))
	}
}
