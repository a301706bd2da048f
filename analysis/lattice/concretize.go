package lattice

// Contribution is the value a type argument contributes when it replaces a
// type parameter of a dependent value. Deep and dependent arguments keep
// their value, everything else is at most shallowly immutable.
func Contribution(arg FieldElement) FieldElement {
	switch arg.level {
	case fieldDeep, fieldDependent:
		return arg
	}
	return fieldShallowElement
}

// Concretize materializes a class or type value for a generic
// instantiation. Every type parameter of a dependent value is replaced by
// the contribution of the argument bound to it, and the contributions are
// combined with meet. Parameters that bind reports as unbound stay
// symbolic.
//
// Deep values concretize to DeepImmutableField, shallow and mutable values
// to ShallowImmutableField: the instantiated object itself is never
// reassigned through the field. Capped values concretize to at most
// ShallowImmutableField.
func (e ObjectElement) Concretize(bind func(param string) (FieldElement, bool)) FieldElement {
	switch e.level {
	case objectDeep:
		return fieldDeepElement
	case objectMutable, objectShallow:
		return fieldShallowElement
	}

	res := fieldDeepElement
	var symbolic Params
	e.params.ForEach(func(p string) {
		if arg, bound := bind(p); bound {
			res = res.MeetField(Contribution(arg))
		} else {
			symbolic = symbolic.Add(p)
		}
	})

	if !symbolic.Empty() {
		res = res.MeetField(fieldLattice.Dependent(symbolic))
	}
	if e.capped {
		res = res.MeetField(fieldShallowElement)
	}
	return res
}
