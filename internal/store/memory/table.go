package memory

import "sync"

// table is a mutex-protected slice of records keyed by an int64 id.
// Every read hands out copies.
type table[T any] struct {
	mu    sync.RWMutex
	items []T
	id    func(*T) *int64
}

func newTable[T any](id func(*T) *int64, seed []T) *table[T] {
	return &table[T]{id: id, items: append([]T(nil), seed...)}
}

func (t *table[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]T(nil), t.items...)
}

func (t *table[T]) filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0)
	for _, v := range t.items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, v := range t.items {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) indexOf(id int64) int {
	for i := range t.items {
		if *t.id(&t.items[i]) == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexOf(id); i >= 0 {
		return t.items[i], true
	}
	var zero T
	return zero, false
}

// insert assigns the next id (highest existing id + 1) and stores v.
func (t *table[T]) insert(v T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	var maxID int64
	for i := range t.items {
		if id := *t.id(&t.items[i]); id > maxID {
			maxID = id
		}
	}
	*t.id(&v) = maxID + 1
	t.items = append(t.items, v)
	return v
}

// modify replaces the record with fn(old). The id is restored afterwards so
// fn cannot change it.
func (t *table[T]) modify(id int64, fn func(old T) T) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	next := fn(t.items[i])
	*t.id(&next) = id
	t.items[i] = next
	return next, true
}

func (t *table[T]) remove(id int64) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	removed := t.items[i]
	t.items = append(t.items[:i], t.items[i+1:]...)
	return removed, true
}
