package ast

import "sync"

// NodeList is the growable, insertion-ordered child container used by every
// node that owns a variable number of children of one kind.
//
// Storage is allocated on the first Add with room for four entries and
// doubles when full. Remove leaves a hole; holes are compacted away on the
// next read, so indices are only meaningful between reads. Reads and
// writes are serialized, so a list with holes may be read concurrently.
type NodeList[T interface {
	comparable
	Node
}] struct {
	mu    sync.Mutex
	items []T
	size  int
	holes int
}

const initialListCapacity = 4

// Add appends child to the list
func (l *NodeList[T]) Add(child T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		l.items = make([]T, initialListCapacity)
	}
	if l.size == len(l.items) {
		grown := make([]T, len(l.items)*2)
		copy(grown, l.items)
		l.items = grown
	}
	l.items[l.size] = child
	l.size++
}

// Remove nulls out the entry at index i of the current backing storage,
// leaving a hole. It reports whether an entry was removed.
func (l *NodeList[T]) Remove(i int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if i < 0 || i >= l.size || l.items[i] == zero {
		return false
	}
	l.items[i] = zero
	l.holes++
	return true
}

// All returns the children in insertion order. The result must be treated
// as read-only. A list that was never populated returns a shared empty
// slice rather than nil.
func (l *NodeList[T]) All() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.size == 0 {
		return emptyOf[T]()
	}
	if l.holes > 0 {
		l.compact()
	}
	if l.size == 0 {
		return emptyOf[T]()
	}
	return l.items[:l.size:l.size]
}

// Len returns the number of children, not counting holes
func (l *NodeList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size - l.holes
}

// Cap returns the capacity of the backing storage
func (l *NodeList[T]) Cap() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// compact copies the surviving entries into freshly sized storage
func (l *NodeList[T]) compact() {
	var zero T
	live := l.size - l.holes
	if live == 0 {
		l.items, l.size, l.holes = nil, 0, 0
		return
	}
	fresh := make([]T, live)
	n := 0
	for _, item := range l.items[:l.size] {
		if item != zero {
			fresh[n] = item
			n++
		}
	}
	l.items = fresh
	l.size = n
	l.holes = 0
}

// emptyOf returns a non-nil zero-length slice backed by the runtime's zero base
func emptyOf[T any]() []T {
	return []T{}
}
