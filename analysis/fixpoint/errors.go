package fixpoint

import "errors"

// ErrNonMonotonicRefinement signals that a recomputation would lower the
// value of a node. It is always a defect in a detector or a lattice
// operation, and aborts the solve.
var ErrNonMonotonicRefinement = errors.New("non-monotonic refinement")

// ErrUnstableResult signals that re-solving a converged graph changed a
// final classification.
var ErrUnstableResult = errors.New("classification changed on re-solve")
