package worklist

import (
	"sync"
	"testing"
)

func TestStartVProcessesAdded(t *testing.T) {
	seen := []int{}
	StartV([]int{0}, func(next int, add func(int)) {
		seen = append(seen, next)
		if next < 3 {
			add(next + 1)
		}
	})

	if len(seen) != 4 || seen[3] != 3 {
		t.Errorf("Processed %v, expected [0 1 2 3]", seen)
	}
}

func TestUniqueDeduplicates(t *testing.T) {
	w := NewUnique[string]()

	if !w.Add("a") {
		t.Error("First add of a was rejected")
	}
	if w.Add("a") {
		t.Error("Second add of a was accepted while queued")
	}
	w.Add("b")

	if w.Len() != 2 {
		t.Errorf("Length is %d, expected 2", w.Len())
	}

	if next, ok := w.TryNext(); !ok || next != "a" {
		t.Errorf("Dequeued %q, expected a", next)
	}
	if !w.Add("a") {
		t.Error("Re-adding a after dequeue was rejected")
	}

	if next, _ := w.TryNext(); next != "b" {
		t.Errorf("Dequeued %q, expected b", next)
	}
	w.TryNext()

	if _, ok := w.TryNext(); ok {
		t.Error("Dequeued from an empty worklist")
	}
	if !w.IsEmpty() {
		t.Error("Worklist is not empty")
	}
}

func TestUniqueConcurrentAdd(t *testing.T) {
	w := NewUnique[int]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				w.Add(j)
			}
		}()
	}
	wg.Wait()

	if w.Len() != 100 {
		t.Errorf("Length is %d, expected 100", w.Len())
	}
}
