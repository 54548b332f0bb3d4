package memutils

// ElementOps describes how a container duplicates and tears down the values it holds. The
// containers in rack keep allocation of slot storage separate from the lifetime of the values
// placed in those slots: a slot is constructed by Construct, filled from another value by
// Copy, and emptied by Destroy, independently of when the backing memory comes and goes.
//
// The zero ElementOps treats T as a plain value: copying is assignment and destruction zeroes the
// slot so that anything it referenced can be collected.
type ElementOps[T any] struct {
	// Copy, if set, is called to copy-construct dst from src. dst is always an unconstructed slot.
	Copy func(dst *T, src *T)
	// Destroy, if set, is called before a live slot is returned to the unconstructed state.
	Destroy func(value *T)
}

// CopyConstruct copy-constructs the unconstructed slot at dst from src
func (o ElementOps[T]) CopyConstruct(dst *T, src *T) {
	if o.Copy != nil {
		o.Copy(dst, src)
		return
	}
	*dst = *src
}

// Construct runs construct against the unconstructed slot at dst, or leaves the zero value in
// place if construct is nil
func (o ElementOps[T]) Construct(dst *T, construct func(slot *T)) {
	if construct != nil {
		construct(dst)
	}
}

// DestroyAt destroys the live value at value and zeroes the slot
func (o ElementOps[T]) DestroyAt(value *T) {
	if o.Destroy != nil {
		o.Destroy(value)
	}
	var zero T
	*value = zero
}

// DestroyRange destroys every live value in values, in order
func (o ElementOps[T]) DestroyRange(values []T) {
	for i := range values {
		o.DestroyAt(&values[i])
	}
}

// Relocate moves the live value at src into the unconstructed slot at dst by copy-constructing it
// and then destroying the source, mirroring how a buffer that has been outgrown is emptied.
func (o ElementOps[T]) Relocate(dst *T, src *T) {
	o.CopyConstruct(dst, src)
	o.DestroyAt(src)
}
