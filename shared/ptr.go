package shared

// Ptr is a reference-counted owning pointer. Every Ptr that shares a control block counts as one
// strong reference; the managed value's deleter runs exactly once, when the last of them lets go.
//
// The zero Ptr is empty and ready to use. Ptr values are not safe for concurrent use, and neither
// are separate Ptr values that share a control block.
type Ptr[T any] struct {
	ptr *T
	cb  *controlBlock[T]
}

// New takes ownership of value with a strong count of 1. A nil value produces an empty Ptr.
func New[T any](value *T) *Ptr[T] {
	return NewWithDeleter(value, nil)
}

// NewWithDeleter takes ownership of value, and arranges for deleter to be called with it when the
// last strong reference is released. A nil value produces an empty Ptr and deleter is never called.
func NewWithDeleter[T any](value *T, deleter func(value *T)) *Ptr[T] {
	return newPtr(value, deleter, nil)
}

// Make allocates a new T holding value and wraps it in a Ptr in one step
func Make[T any](value T) *Ptr[T] {
	allocated := new(T)
	*allocated = value
	return New(allocated)
}

func newPtr[T any](value *T, deleter func(value *T), tracker *Tracker) *Ptr[T] {
	if value == nil {
		return &Ptr[T]{}
	}

	return &Ptr[T]{
		ptr: value,
		cb:  newControlBlock(value, deleter, tracker),
	}
}

// Clone returns a new Ptr sharing ownership with p. Cloning an empty Ptr returns an empty Ptr.
func (p *Ptr[T]) Clone() *Ptr[T] {
	if p.cb != nil {
		p.cb.retain()
	}

	return &Ptr[T]{ptr: p.ptr, cb: p.cb}
}

// Assign releases p's current ownership and makes p share ownership with other. Assigning a Ptr
// to itself, or to another Ptr that already shares its control block, changes nothing.
func (p *Ptr[T]) Assign(other *Ptr[T]) {
	if p.cb == other.cb {
		return
	}

	if other.cb != nil {
		other.cb.retain()
	}
	p.release()

	p.ptr = other.ptr
	p.cb = other.cb
}

// Reset releases p's ownership and leaves it empty
func (p *Ptr[T]) Reset() {
	p.release()
	p.ptr = nil
	p.cb = nil
}

// ResetTo releases p's ownership and then takes ownership of value with a fresh control block.
// A nil value leaves p empty. The new control block is never tracked.
func (p *Ptr[T]) ResetTo(value *T) {
	p.Reset()

	if value != nil {
		p.ptr = value
		p.cb = newControlBlock(value, nil, nil)
	}
}

// Swap exchanges the managed values and control blocks of p and other
func (p *Ptr[T]) Swap(other *Ptr[T]) {
	p.ptr, other.ptr = other.ptr, p.ptr
	p.cb, other.cb = other.cb, p.cb
}

// Move returns a new Ptr that has taken over p's ownership, leaving p empty. The strong count is
// unchanged.
func (p *Ptr[T]) Move() *Ptr[T] {
	moved := &Ptr[T]{ptr: p.ptr, cb: p.cb}
	p.ptr = nil
	p.cb = nil
	return moved
}

// MoveFrom releases p's ownership and takes over other's, leaving other empty
func (p *Ptr[T]) MoveFrom(other *Ptr[T]) {
	if p == other {
		return
	}

	p.release()
	p.ptr = other.ptr
	p.cb = other.cb
	other.ptr = nil
	other.cb = nil
}

// Get returns the managed value, or nil if p is empty
func (p *Ptr[T]) Get() *T {
	return p.ptr
}

// UseCount returns the number of Ptr values sharing ownership with p, or 0 if p is empty
func (p *Ptr[T]) UseCount() int {
	if p.cb == nil {
		return 0
	}

	return p.cb.strong
}

// Unique reports whether p is the only owner of its value
func (p *Ptr[T]) Unique() bool {
	return p.UseCount() == 1
}

// Valid reports whether p manages a value
func (p *Ptr[T]) Valid() bool {
	return p.ptr != nil
}

// Weak returns a WeakPtr observing p's value without owning it
func (p *Ptr[T]) Weak() *WeakPtr[T] {
	if p.cb != nil {
		p.cb.retainWeak()
	}

	return &WeakPtr[T]{cb: p.cb}
}

func (p *Ptr[T]) release() {
	if p.cb != nil {
		p.cb.release()
	}
}
