// Package detect contains the local pattern detectors that produce
// classification facts from the program model: recognition of lock guarded
// lazy initialization and extraction of generic type parameter dependences.
package detect

import (
	"fmt"

	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/analysis/model"
)

// Verdict is the outcome of lazy initialization detection.
type Verdict struct {
	Value L.ReferenceElement
	// Lock guarding the initialization, if recognized.
	Lock string
	// Reason explains a negative verdict.
	Reason string
}

func (v Verdict) String() string {
	if v.Value == L.LazyInitializedThreadSafeReference {
		return fmt.Sprintf("%s (guarded by %s)", v.Value, v.Lock)
	}
	return fmt.Sprintf("%s: %s", v.Value, v.Reason)
}

func mutable(format string, args ...any) Verdict {
	return Verdict{Value: L.MutableReference, Reason: fmt.Sprintf(format, args...)}
}

// LazyInit recognizes double-checked lazy initialization of a field. The
// field is lazily initialized in a thread safe way when
//   - it has a single write site, storing a non-null value,
//   - every write happens while holding the same lock,
//   - some access happens outside that lock,
//   - the writing method null checks the field outside the lock, acquires
//     the lock, and null checks the field again before writing it.
//
// Null stores during construction are default initialization and ignored.
// Anything else results in a mutable reference.
func LazyInit(f *model.Field) Verdict {
	var site *model.WriteSite
	count := 0
	for _, w := range f.Writes {
		if w.Constructor && !w.NonNull {
			continue
		}
		count++
		site = w
	}

	switch {
	case count == 0:
		return mutable("field is never lazily written")
	case count > 1:
		return mutable("field has %d write sites", count)
	case !site.NonNull:
		return mutable("write %s may store null", site.ID)
	}

	// Every write event must hold a common lock.
	var writes []model.Access
	for _, tr := range f.Traces {
		for _, a := range tr.Events {
			if a.Kind == model.Write {
				writes = append(writes, a)
			}
		}
	}
	if len(writes) == 0 {
		return mutable("no access trace contains write %s", site.ID)
	}

	lock := ""
	for _, cand := range writes[0].Held {
		if cand == "" {
			continue
		}
		common := true
		for _, w := range writes[1:] {
			common = common && w.Holds(cand)
		}
		if common {
			lock = cand
			break
		}
	}
	switch {
	case len(writes[0].Held) == 0:
		return mutable("write %s happens outside of any lock", site.ID)
	case lock == "" && anyNamed(writes[0].Held):
		return mutable("writes are not guarded by a common lock")
	case lock == "":
		return mutable("ambiguous lock object")
	}

	outside := false
	for _, tr := range f.Traces {
		for _, a := range tr.Events {
			if (a.Kind == model.Read || a.Kind == model.NullCheck) && !a.Holds(lock) {
				outside = true
			}
		}
	}
	if !outside {
		return mutable("field is never read outside of %s", lock)
	}

	for _, tr := range f.Traces {
		if !containsWrite(tr) {
			continue
		}
		if reason := checkDoubleCheck(tr, lock, site.ID); reason != "" {
			return mutable("%s: %s", tr.Method, reason)
		}
	}

	return Verdict{Value: L.LazyInitializedThreadSafeReference, Lock: lock}
}

func anyNamed(locks []string) bool {
	for _, l := range locks {
		if l != "" {
			return true
		}
	}
	return false
}

func containsWrite(tr model.Trace) bool {
	for _, a := range tr.Events {
		if a.Kind == model.Write {
			return true
		}
	}
	return false
}

type dclState int

const (
	dclStart dclState = iota
	// The field was null checked outside of the lock.
	dclChecked
	// The lock was acquired after the first check.
	dclLocked
	// The field was checked again inside the lock.
	dclRechecked
)

// checkDoubleCheck replays a trace containing the write and returns a
// non-empty reason if the write is not preceded by the check-lock-check
// sequence.
func checkDoubleCheck(tr model.Trace, lock, site string) string {
	state := dclStart
	written := false

	for _, a := range tr.Events {
		switch a.Kind {
		case model.NullCheck, model.Read:
			switch state {
			case dclStart:
				if a.Kind == model.NullCheck && !a.Holds(lock) {
					state = dclChecked
				}
			case dclLocked:
				if a.Kind != model.NullCheck {
					return "first access after acquiring " + lock + " is not a null check"
				}
				state = dclRechecked
			}
		case model.Lock:
			if a.Lock == lock && !a.Holds(lock) && state == dclChecked {
				state = dclLocked
			}
		case model.Unlock:
			if a.Lock == lock && state == dclRechecked && !written {
				// Released without initializing: the next acquisition
				// must check again.
				state = dclChecked
			}
		case model.Write:
			if state != dclRechecked || !a.Holds(lock) {
				return "write " + a.Site + " is not preceded by a double check"
			}
			if a.Site != "" && a.Site != site {
				return "unexpected write site " + a.Site
			}
			written = true
		}
	}

	if !written {
		return "write " + site + " not found"
	}
	return ""
}
