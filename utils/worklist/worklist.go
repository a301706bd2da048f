package worklist

import "sync"

type Worklist[T any] struct {
	list []T
	mu   sync.Mutex
}

// Start worklist execution with a preloaded queue and an iteration
// function. The iteration function exposes the next element and a function with
// which to add more elements to the worklist.
func StartV[T any](start []T, do func(next T, add func(el T))) {
	W := Empty[T]()
	for _, e := range start {
		W.Add(e)
	}

	W.Process(do)
}

func Empty[T any]() Worklist[T] {
	return Worklist[T]{}
}

func (w *Worklist[T]) GetNext() (ret T) {
	if len(w.list) == 0 {
		return
	}
	next := w.list[0]
	w.list = w.list[1:]
	return next
}

func (w *Worklist[T]) IsEmpty() bool {
	return len(w.list) == 0
}

func (w *Worklist[T]) Len() int {
	return len(w.list)
}

func (w *Worklist[T]) Process(
	do func(
		next T,
		add func(element T))) {
	for !w.IsEmpty() {
		do(w.GetNext(), w.Add)
	}
}

func (w *Worklist[T]) Add(el T) {
	w.list = append(w.list, el)
}

// Unique is a FIFO worklist in which an element is queued at most once at a
// time. An element may be added again after it has been taken out.
// All operations are safe for concurrent use.
type Unique[T comparable] struct {
	Worklist[T]
	queued map[T]struct{}
}

func NewUnique[T comparable]() *Unique[T] {
	return &Unique[T]{queued: make(map[T]struct{})}
}

// Add queues el unless it is already queued. Returns whether el was queued.
func (w *Unique[T]) Add(el T) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, found := w.queued[el]; found {
		return false
	}
	w.queued[el] = struct{}{}
	w.Worklist.Add(el)
	return true
}

// TryNext dequeues the next element. The boolean is false if the worklist
// was empty.
func (w *Unique[T]) TryNext() (ret T, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.Worklist.IsEmpty() {
		return ret, false
	}
	ret = w.Worklist.GetNext()
	delete(w.queued, ret)
	return ret, true
}

func (w *Unique[T]) IsEmpty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Worklist.IsEmpty()
}

func (w *Unique[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Worklist.Len()
}
