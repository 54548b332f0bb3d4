package shared

// WeakPtr observes a value managed by Ptr without keeping it alive. It keeps the control block
// reachable so that Lock and Expired stay answerable after the value has been destroyed.
type WeakPtr[T any] struct {
	cb *controlBlock[T]
}

// Lock returns a new strong Ptr to the observed value, or an empty Ptr if the value has already
// been destroyed
func (w *WeakPtr[T]) Lock() *Ptr[T] {
	if w.Expired() {
		return &Ptr[T]{}
	}

	w.cb.retain()
	return &Ptr[T]{ptr: w.cb.value, cb: w.cb}
}

// Expired reports whether the observed value has been destroyed
func (w *WeakPtr[T]) Expired() bool {
	return w.UseCount() == 0
}

// UseCount returns the number of strong owners of the observed value
func (w *WeakPtr[T]) UseCount() int {
	if w.cb == nil {
		return 0
	}

	return w.cb.strong
}

// Clone returns a new WeakPtr observing the same value
func (w *WeakPtr[T]) Clone() *WeakPtr[T] {
	if w.cb != nil {
		w.cb.retainWeak()
	}

	return &WeakPtr[T]{cb: w.cb}
}

// Reset stops observing the value and leaves w empty
func (w *WeakPtr[T]) Reset() {
	if w.cb != nil {
		w.cb.releaseWeak()
	}
	w.cb = nil
}
