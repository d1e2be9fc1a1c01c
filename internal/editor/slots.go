package editor

import "iter"

type slot[T any] struct {
	value T
	refs  int
	used  bool
}

// SlotTable stores values under stable integer ids. Ids are never
// renumbered; a released id is reused by a later Insert. Each slot carries
// a reference count and is freed when it drops to zero.
type SlotTable[T any] struct {
	slots []slot[T]
	free  []int
	count int
}

// Insert stores v with one reference and returns its id.
func (t *SlotTable[T]) Insert(v T) int {
	t.count++
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[id] = slot[T]{value: v, refs: 1, used: true}
		return id
	}
	t.slots = append(t.slots, slot[T]{value: v, refs: 1, used: true})
	return len(t.slots) - 1
}

func (t *SlotTable[T]) valid(id int) bool {
	return id >= 0 && id < len(t.slots) && t.slots[id].used
}

// Get returns the value stored under id.
func (t *SlotTable[T]) Get(id int) (T, bool) {
	if !t.valid(id) {
		var zero T
		return zero, false
	}
	return t.slots[id].value, true
}

// Retain adds a reference to id.
func (t *SlotTable[T]) Retain(id int) bool {
	if !t.valid(id) {
		return false
	}
	t.slots[id].refs++
	return true
}

// Release drops a reference. When the last one goes the slot is freed and
// its value returned with true.
func (t *SlotTable[T]) Release(id int) (T, bool) {
	var zero T
	if !t.valid(id) {
		return zero, false
	}
	s := &t.slots[id]
	s.refs--
	if s.refs > 0 {
		return zero, false
	}
	v := s.value
	*s = slot[T]{}
	t.free = append(t.free, id)
	t.count--
	return v, true
}

// Refs returns the reference count of id, or 0 when it is free.
func (t *SlotTable[T]) Refs(id int) int {
	if !t.valid(id) {
		return 0
	}
	return t.slots[id].refs
}

// Len returns the number of occupied slots.
func (t *SlotTable[T]) Len() int { return t.count }

// All yields occupied slots in id order.
func (t *SlotTable[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for id, s := range t.slots {
			if s.used && !yield(id, s.value) {
				return
			}
		}
	}
}
