package memutils

// Validatable is implemented by every rack container. Validate reports the first broken
// structural invariant it finds, or nil if the container is consistent.
type Validatable interface {
	Validate() error
}
