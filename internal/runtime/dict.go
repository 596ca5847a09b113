package runtime

// NewDict allocates an empty dict whose entries preserve insertion
// order, the way Python (and ordering guarantees) require.
func NewDict() *HeapDict {
	return &HeapDict{index: make(map[uint64][]int)}
}

func (d *HeapDict) len() int {
	n := 0
	for _, e := range d.entries {
		if !e.deleted {
			n++
		}
	}
	return n
}

// find returns the entry index for key, using py_hash for bucketing and
// py_eq (Python equality, not Go ==) to disambiguate collisions and
// cross-type numeric equality (1 == 1.0 == True).
func (d *HeapDict) find(key Value, heap *Heap, interns *Interner) (int, bool) {
	h := pyHash(key, heap, interns)
	for _, idx := range d.index[h] {
		e := &d.entries[idx]
		if !e.deleted && pyEq(e.key, key, heap, interns) {
			return idx, true
		}
	}
	return 0, false
}

// Set inserts or overwrites key -> val, taking ownership of both (the
// caller must not use them again without a fresh IncRefIfHeap). Returns
// true if this was a fresh insertion (new key).
func (d *HeapDict) Set(key, val Value, heap *Heap, interns *Interner) bool {
	if idx, ok := d.find(key, heap, interns); ok {
		old := d.entries[idx].val
		d.entries[idx].val = val
		key.Drop(heap)
		old.Drop(heap)
		return false
	}
	h := pyHash(key, heap, interns)
	idx := len(d.entries)
	d.entries = append(d.entries, dictEntry{key: key, val: val})
	d.index[h] = append(d.index[h], idx)
	return true
}

// Get returns the value for key and whether it was present.
func (d *HeapDict) Get(key Value, heap *Heap, interns *Interner) (Value, bool) {
	if idx, ok := d.find(key, heap, interns); ok {
		return d.entries[idx].val, true
	}
	return Value{}, false
}

// Delete removes key, dropping its owned key/value. Returns whether it
// was present.
func (d *HeapDict) Delete(key Value, heap *Heap, interns *Interner) bool {
	idx, ok := d.find(key, heap, interns)
	if !ok {
		return false
	}
	e := &d.entries[idx]
	e.key.Drop(heap)
	e.val.Drop(heap)
	e.deleted = true
	e.key = Value{}
	e.val = Value{}
	return true
}

// Items iterates live entries in insertion order.
func (d *HeapDict) Items(fn func(key, val Value)) {
	for _, e := range d.entries {
		if !e.deleted {
			fn(e.key, e.val)
		}
	}
}

// Keys returns live keys in insertion order (does not transfer
// ownership — callers that store these must IncRefIfHeap).
func (d *HeapDict) Keys() []Value {
	out := make([]Value, 0, d.len())
	d.Items(func(k, _ Value) { out = append(out, k) })
	return out
}
