package shared

import (
	"fmt"

	"github.com/vkngwrapper/rack/memutils"
)

// controlBlock holds the bookkeeping shared by every Ptr and WeakPtr that refer to the same
// managed value. The value is destroyed when strong drops to zero and the block itself is
// released once weak has also dropped to zero.
type controlBlock[T any] struct {
	value   *T
	deleter func(value *T)

	strong int
	weak   int

	tracker *Tracker
	id      uint64
}

func newControlBlock[T any](value *T, deleter func(value *T), tracker *Tracker) *controlBlock[T] {
	cb := &controlBlock[T]{
		value:   value,
		deleter: deleter,
		strong:  1,
	}

	if tracker != nil {
		tracker.register(cb)
	}

	return cb
}

func (cb *controlBlock[T]) retain() {
	cb.strong++
}

func (cb *controlBlock[T]) retainWeak() {
	cb.weak++
}

// release drops one strong reference, destroying the value on the last one
func (cb *controlBlock[T]) release() {
	memutils.DebugAssert(cb.strong > 0, "strong count underflow on control block %d", cb.id)
	if cb.strong <= 0 {
		return
	}

	cb.strong--
	if cb.strong > 0 {
		return
	}

	value := cb.value
	cb.value = nil
	if cb.deleter != nil {
		cb.deleter(value)
	}

	if cb.weak == 0 {
		cb.releaseBlock()
	}
}

// releaseWeak drops one weak reference, releasing the block if nothing refers to it anymore
func (cb *controlBlock[T]) releaseWeak() {
	memutils.DebugAssert(cb.weak > 0, "weak count underflow on control block %d", cb.id)
	if cb.weak <= 0 {
		return
	}

	cb.weak--
	if cb.weak == 0 && cb.strong == 0 {
		cb.releaseBlock()
	}
}

func (cb *controlBlock[T]) releaseBlock() {
	if cb.tracker != nil {
		cb.tracker.unregister(cb)
	}
	cb.deleter = nil
}

func (cb *controlBlock[T]) counts() (strong, weak int) {
	return cb.strong, cb.weak
}

func (cb *controlBlock[T]) blockID() uint64 {
	return cb.id
}

func (cb *controlBlock[T]) setTracking(tracker *Tracker, id uint64) {
	cb.tracker = tracker
	cb.id = id
}

func (cb *controlBlock[T]) valueType() string {
	return fmt.Sprintf("%T", (*T)(nil))
}
