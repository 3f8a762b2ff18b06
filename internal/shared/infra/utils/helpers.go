package utils

// FirstNonZero devuelve el primer valor distinto del valor cero de T, o el
// valor cero si todos lo son.
func FirstNonZero[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
