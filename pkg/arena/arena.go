// Package arena provides a growable record store that hands out stable integer
// handles, reuses freed slots and broadcasts growth to registered observers.
package arena

import (
	"iter"
	"math"
	"slices"
)

// Handle identifies a record inside an Arena. Handles stay valid until the
// record is removed; afterwards the slot may be handed out again.
type Handle int32

// InvalidHandle is never returned by Insert.
const InvalidHandle Handle = -1

// maxHandle is the largest handle an Arena can hand out.
const maxHandle = math.MaxInt32 - 1

// Observer is notified every time an Arena grows its storage.
type Observer interface {
	Notify()
}

// Arena stores records of type T. It is not safe for concurrent use: growth
// notifications assume a single writer.
type Arena[T any] struct {
	storage   []T
	live      []bool
	gaps      []Handle
	observers []Observer
}

// New creates an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{
		storage: []T{},
		live:    []bool{},
		gaps:    []Handle{},
	}
}

// Insert stores value and returns its handle. The most recently freed slot is
// reused first; otherwise the storage grows and every observer is notified.
func (arena *Arena[T]) Insert(value T) Handle {
	if n := len(arena.gaps); n > 0 {
		handle := arena.gaps[n-1]
		arena.gaps = arena.gaps[:n-1]
		arena.storage[handle] = value
		arena.live[handle] = true

		return handle
	}

	size := len(arena.storage)
	if size > maxHandle {
		panic("arena: handle space exhausted")
	}

	arena.storage = append(arena.storage, value)
	arena.live = append(arena.live, true)

	for _, observer := range arena.observers {
		observer.Notify()
	}

	return Handle(size)
}

// Remove frees the slot behind handle. Removing a dead handle panics.
func (arena *Arena[T]) Remove(handle Handle) {
	doAssert(arena.Contains(handle), "remove of a dead handle")

	var zero T

	arena.storage[handle] = zero
	arena.live[handle] = false
	arena.gaps = append(arena.gaps, handle)
}

// Get returns a pointer to the record behind handle. The pointer is only valid
// until the next Insert. Accessing a dead handle panics.
func (arena *Arena[T]) Get(handle Handle) *T {
	doAssert(arena.Contains(handle), "access to a dead handle")

	return &arena.storage[handle]
}

// Contains reports whether handle refers to a live record.
func (arena *Arena[T]) Contains(handle Handle) bool {
	return handle >= 0 && int(handle) < len(arena.storage) && arena.live[handle]
}

// Len returns the number of live records.
func (arena *Arena[T]) Len() int {
	return len(arena.storage) - len(arena.gaps)
}

// MaxHandle returns an exclusive upper bound of every handle ever issued.
// Handle-indexed side arrays size themselves with it.
func (arena *Arena[T]) MaxHandle() int {
	return len(arena.storage)
}

// All iterates the live records in handle order.
func (arena *Arena[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for idx := range arena.storage {
			if !arena.live[idx] {
				continue
			}

			if !yield(Handle(idx), &arena.storage[idx]) {
				return
			}
		}
	}
}

// Subscribe registers observer for growth notifications.
func (arena *Arena[T]) Subscribe(observer Observer) {
	arena.observers = append(arena.observers, observer)
}

// Unsubscribe removes a previously registered observer. Unknown observers are
// ignored.
func (arena *Arena[T]) Unsubscribe(observer Observer) {
	idx := slices.Index(arena.observers, observer)
	if idx < 0 {
		return
	}

	arena.observers = slices.Delete(arena.observers, idx, idx+1)
}

func doAssert(condition bool, message string) {
	if !condition {
		panic("arena: " + message)
	}
}
