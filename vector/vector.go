package vector

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rack/memutils"
	"golang.org/x/exp/slog"
)

// CreateOptions configures a new Vector
type CreateOptions[T any] struct {
	// Logger receives debug records when the buffer is reallocated. It may be nil.
	Logger *slog.Logger
	// Ops controls how elements are copied into and destroyed in the buffer. The zero value
	// treats T as a plain value.
	Ops memutils.ElementOps[T]
	// InitialCapacity, if positive, allocates a buffer of exactly this many slots up front
	// rather than on first insertion
	InitialCapacity int
}

// Vector is a contiguous, growable array. The buffer is allocated on first insertion and doubles
// every time it fills (capacity 0, 1, 2, 4, ...). It never shrinks on its own.
//
// Slots [0, Size()) hold live values. Slots [Size(), Capacity()) are allocated but unconstructed
// and always hold the zero value of T.
//
// The zero Vector is empty and ready to use. A Vector is not safe for concurrent use.
type Vector[T any] struct {
	logger *slog.Logger
	ops    memutils.ElementOps[T]

	buffer      []T
	size        int
	growthCount int
}

var _ memutils.Validatable = &Vector[int]{}

// New creates an empty Vector with no buffer
func New[T any]() *Vector[T] {
	return &Vector[T]{}
}

// NewWithOptions creates an empty Vector configured by options
func NewWithOptions[T any](options CreateOptions[T]) *Vector[T] {
	v := &Vector[T]{
		logger: options.Logger,
		ops:    options.Ops,
	}

	if options.InitialCapacity > 0 {
		v.buffer = make([]T, options.InitialCapacity)
	}

	return v
}

// NewFilled creates a Vector holding count copies of value. The buffer is sized to exactly count slots.
func NewFilled[T any](count int, value T) *Vector[T] {
	v := &Vector[T]{}
	if count <= 0 {
		return v
	}

	v.buffer = make([]T, count)
	for i := 0; i < count; i++ {
		v.ops.CopyConstruct(&v.buffer[i], &value)
	}
	v.size = count

	return v
}

// Size returns the number of live elements
func (v *Vector[T]) Size() int { return v.size }

// Capacity returns the number of allocated slots
func (v *Vector[T]) Capacity() int { return len(v.buffer) }

// Empty returns true if the Vector holds no live elements
func (v *Vector[T]) Empty() bool { return v.size == 0 }

// At returns a pointer to the live element at index. If index does not address a live element, an
// error wrapping memutils.ErrOutOfRange (as a *memutils.IndexError) is returned and the Vector is
// unchanged. The pointer is invalidated by any operation that reallocates the buffer.
func (v *Vector[T]) At(index int) (*T, error) {
	if err := memutils.CheckIndex(index, v.size); err != nil {
		return nil, err
	}
	return &v.buffer[index], nil
}

// Get returns a copy of the element at index, or an error wrapping memutils.ErrOutOfRange
func (v *Vector[T]) Get(index int) (T, error) {
	var zero T
	ptr, err := v.At(index)
	if err != nil {
		return zero, err
	}
	return *ptr, nil
}

// Set overwrites the element at index with value, or returns an error wrapping memutils.ErrOutOfRange
func (v *Vector[T]) Set(index int, value T) error {
	ptr, err := v.At(index)
	if err != nil {
		return err
	}

	v.ops.DestroyAt(ptr)
	v.ops.CopyConstruct(ptr, &value)
	return nil
}

// Front returns a pointer to the first element. The Vector must not be empty.
func (v *Vector[T]) Front() *T {
	memutils.DebugAssert(v.size > 0, "Front called on an empty vector")
	return &v.buffer[0]
}

// Back returns a pointer to the last element. The Vector must not be empty.
func (v *Vector[T]) Back() *T {
	memutils.DebugAssert(v.size > 0, "Back called on an empty vector")
	return &v.buffer[v.size-1]
}

// Data returns the live elements as a slice aliasing the buffer, for use with range algorithms
// such as those in golang.org/x/exp/slices. It returns nil when the Vector is empty. The slice is
// invalidated by any operation that reallocates the buffer.
func (v *Vector[T]) Data() []T {
	if v.size == 0 {
		return nil
	}
	return v.buffer[:v.size:v.size]
}

// Reserve ensures the buffer has at least capacity slots. It never shrinks the buffer.
func (v *Vector[T]) Reserve(capacity int) {
	if capacity <= len(v.buffer) {
		return
	}
	v.reallocate(capacity)
}

// PushBack appends a copy of value. When the buffer is full it is reallocated at twice its
// capacity (or 1 slot if there was no buffer) and existing elements are relocated in order.
func (v *Vector[T]) PushBack(value T) {
	v.ensureSlot()
	v.ops.CopyConstruct(&v.buffer[v.size], &value)
	v.size++

	memutils.DebugValidate(v)
}

// EmplaceBack appends a new element constructed in place by construct, which receives a pointer
// to the unconstructed slot. A nil construct appends the zero value.
func (v *Vector[T]) EmplaceBack(construct func(slot *T)) {
	v.ensureSlot()
	v.ops.Construct(&v.buffer[v.size], construct)
	v.size++

	memutils.DebugValidate(v)
}

// PopBack destroys the last element. The Vector must not be empty.
func (v *Vector[T]) PopBack() {
	memutils.DebugAssert(v.size > 0, "PopBack called on an empty vector")
	if v.size == 0 {
		return
	}

	v.size--
	v.ops.DestroyAt(&v.buffer[v.size])
}

// Insert places a copy of value before position pos, shifting the elements at [pos, Size()) one
// slot toward the back. pos may equal Size(), which appends. Any other position outside
// [0, Size()] returns an error wrapping memutils.ErrOutOfRange.
func (v *Vector[T]) Insert(value T, pos int) error {
	if pos < 0 || pos > v.size {
		return errors.WithStack(&memutils.IndexError{Index: pos, Size: v.size})
	}

	v.ensureSlot()
	for i := v.size; i > pos; i-- {
		v.buffer[i] = v.buffer[i-1]
	}

	var zero T
	v.buffer[pos] = zero
	v.ops.CopyConstruct(&v.buffer[pos], &value)
	v.size++

	memutils.DebugValidate(v)
	return nil
}

// Erase destroys the element at pos and shifts the elements after it one slot toward the front.
// If pos does not address a live element, an error wrapping memutils.ErrOutOfRange is returned.
func (v *Vector[T]) Erase(pos int) error {
	if err := memutils.CheckIndex(pos, v.size); err != nil {
		return err
	}

	v.ops.DestroyAt(&v.buffer[pos])
	copy(v.buffer[pos:v.size-1], v.buffer[pos+1:v.size])
	v.size--

	var zero T
	v.buffer[v.size] = zero

	memutils.DebugValidate(v)
	return nil
}

// Clear destroys every element. The buffer and its capacity are kept.
func (v *Vector[T]) Clear() {
	v.ops.DestroyRange(v.buffer[:v.size])
	v.size = 0
}

// Resize changes the number of live elements to count. Growing appends zero values, reallocating
// to the larger of count and twice the current capacity if necessary; shrinking destroys the tail.
func (v *Vector[T]) Resize(count int) {
	if count < 0 {
		count = 0
	}

	if count < v.size {
		v.ops.DestroyRange(v.buffer[count:v.size])
		v.size = count
		return
	}

	if count > len(v.buffer) {
		newCapacity := len(v.buffer) * 2
		if newCapacity < count {
			newCapacity = count
		}
		v.reallocate(newCapacity)
	}

	// Slots past size are already zero
	v.size = count
	memutils.DebugValidate(v)
}

// Destroy destroys every element and drops the buffer, returning the Vector to its zero state
func (v *Vector[T]) Destroy() {
	v.Clear()
	v.buffer = nil
}

// Clone returns an independent Vector with a copy of every element. The copy's capacity equals
// this Vector's size.
func (v *Vector[T]) Clone() *Vector[T] {
	clone := &Vector[T]{
		logger: v.logger,
		ops:    v.ops,
	}
	clone.copyElements(v)
	return clone
}

// CopyFrom replaces the contents of this Vector with copies of other's elements
func (v *Vector[T]) CopyFrom(other *Vector[T]) {
	if other == v {
		return
	}

	v.Destroy()
	v.copyElements(other)
}

// Move returns a new Vector that has taken ownership of this Vector's buffer. This Vector is left
// empty with no buffer.
func (v *Vector[T]) Move() *Vector[T] {
	moved := &Vector[T]{
		logger:      v.logger,
		ops:         v.ops,
		buffer:      v.buffer,
		size:        v.size,
		growthCount: v.growthCount,
	}

	v.buffer = nil
	v.size = 0
	v.growthCount = 0
	return moved
}

// MoveFrom destroys this Vector's contents and takes ownership of other's buffer. other is left
// empty with no buffer.
func (v *Vector[T]) MoveFrom(other *Vector[T]) {
	if other == v {
		return
	}

	v.Destroy()
	v.buffer = other.buffer
	v.size = other.size
	v.growthCount = other.growthCount

	other.buffer = nil
	other.size = 0
	other.growthCount = 0
}

// Begin returns a cursor at the first element
func (v *Vector[T]) Begin() Cursor[T] {
	return Cursor[T]{owner: v, pos: 0}
}

// End returns a cursor one past the last element
func (v *Vector[T]) End() Cursor[T] {
	return Cursor[T]{owner: v, pos: v.size}
}

// Validate performs internal consistency checks on the Vector
func (v *Vector[T]) Validate() error {
	if v.size < 0 {
		return errors.Newf("vector size is negative: %d", v.size)
	}

	if v.size > len(v.buffer) {
		return errors.Newf("vector size %d exceeds capacity %d", v.size, len(v.buffer))
	}

	if v.buffer != nil && len(v.buffer) == 0 {
		return errors.New("vector holds a non-nil buffer with zero capacity")
	}

	return nil
}

// String renders the live elements for diagnostics, e.g. "[ 1, 2, 3 ]"
func (v *Vector[T]) String() string {
	if v.size == 0 {
		return "[ ]"
	}

	var sb strings.Builder
	sb.WriteString("[ ")
	for i := 0; i < v.size; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", v.buffer[i])
	}
	sb.WriteString(" ]")
	return sb.String()
}

// AddStatistics sums this Vector's storage into stats
func (v *Vector[T]) AddStatistics(stats *memutils.Statistics) {
	if v.buffer == nil {
		return
	}
	stats.AddBlock(len(v.buffer), v.size, v.elemSize())
}

// AddDetailedStatistics sums this Vector's storage and growth history into stats
func (v *Vector[T]) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.GrowthCount += v.growthCount
	if v.buffer == nil {
		return
	}
	stats.AddBlock(len(v.buffer), v.size, v.elemSize())
}

// BuildStatsString returns a json document describing this Vector's storage
func (v *Vector[T]) BuildStatsString() string {
	var stats memutils.DetailedStatistics
	stats.Clear()
	v.AddDetailedStatistics(&stats)

	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("Size").Int(v.size)
	obj.Name("Capacity").Int(len(v.buffer))
	stats.WriteJson(&obj)
	obj.End()

	return string(writer.Bytes())
}

func (v *Vector[T]) elemSize() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// ensureSlot guarantees that slot v.size is allocated, growing by doubling if the buffer is full
func (v *Vector[T]) ensureSlot() {
	if v.size < len(v.buffer) {
		return
	}

	newCapacity := 1
	if len(v.buffer) > 0 {
		newCapacity = len(v.buffer) * 2
	}
	v.reallocate(newCapacity)
}

// reallocate moves every live element into a fresh buffer of capacity slots. Relocation
// copy-constructs each element into the new buffer and destroys it in the old one.
func (v *Vector[T]) reallocate(capacity int) {
	if v.logger != nil {
		v.logger.Debug("Vector::grow", slog.Int("Size", v.size), slog.Int("OldCapacity", len(v.buffer)), slog.Int("NewCapacity", capacity))
	}

	newBuffer := make([]T, capacity)
	for i := 0; i < v.size; i++ {
		v.ops.Relocate(&newBuffer[i], &v.buffer[i])
	}

	if v.buffer != nil {
		v.growthCount++
	}
	v.buffer = newBuffer
}

func (v *Vector[T]) copyElements(other *Vector[T]) {
	if other.size == 0 {
		return
	}

	v.buffer = make([]T, other.size)
	for i := 0; i < other.size; i++ {
		v.ops.CopyConstruct(&v.buffer[i], &other.buffer[i])
	}
	v.size = other.size
}
