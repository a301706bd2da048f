package slices

// OneOf is true if x equals one of xs.
func OneOf[T comparable](x T, xs ...T) bool {
	for _, x2 := range xs {
		if x == x2 {
			return true
		}
	}
	return false
}
