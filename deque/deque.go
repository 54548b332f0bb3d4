package deque

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rack/memutils"
	"golang.org/x/exp/slog"
)

// DefaultChunkBytes is the target size in bytes of a single chunk when none is specified
const DefaultChunkBytes = 4096

// CreateOptions configures a new Deque
type CreateOptions[T any] struct {
	// Logger receives debug records when the directory grows or a chunk is allocated. It may be nil.
	Logger *slog.Logger
	// Ops controls how elements are copied into and destroyed in chunk slots
	Ops memutils.ElementOps[T]
	// ChunkBytes is the target size of each chunk in bytes. Chunks hold ChunkBytes / sizeof(T)
	// elements, and never fewer than one. Values <= 0 select DefaultChunkBytes.
	ChunkBytes int
}

// Deque is a double-ended sequence stored in fixed-size chunks. A directory holds one entry per
// chunk; entries outside the chunks in use are nil, get a chunk the first time a cursor crosses
// into them, and lose it again when a pop moves the cursor back out. When either end reaches the
// edge of the directory, the chunks in use are re-centered, in place if the directory is at most
// half full and in a doubled directory otherwise, so growth costs O(chunk count) and no element
// is ever relocated.
//
// The front and back cursors are (chunk index, offset) pairs. Both start in the middle of the
// first chunk. An empty Deque keeps its cursors wherever the last element was removed.
//
// A Deque is not safe for concurrent use.
type Deque[T any] struct {
	logger *slog.Logger
	ops    memutils.ElementOps[T]

	chunkBytes int
	chunkSize  int
	chunks     [][]T
	size       int

	frontChunk, frontOffset int
	backChunk, backOffset   int

	growthCount int
}

var _ memutils.Validatable = &Deque[int]{}

// New creates an empty Deque using DefaultChunkBytes
func New[T any]() *Deque[T] {
	return NewWithOptions[T](CreateOptions[T]{})
}

// NewWithChunkBytes creates an empty Deque whose chunks target chunkBytes bytes
func NewWithChunkBytes[T any](chunkBytes int) *Deque[T] {
	return NewWithOptions[T](CreateOptions[T]{ChunkBytes: chunkBytes})
}

// NewWithOptions creates an empty Deque configured by options
func NewWithOptions[T any](options CreateOptions[T]) *Deque[T] {
	chunkBytes := options.ChunkBytes
	if chunkBytes <= 0 {
		chunkBytes = DefaultChunkBytes
	}

	var zero T
	d := &Deque[T]{
		logger:     options.Logger,
		ops:        options.Ops,
		chunkBytes: chunkBytes,
		chunkSize:  memutils.ChunkCapacity(chunkBytes, unsafe.Sizeof(zero)),
	}
	d.init()

	return d
}

func (d *Deque[T]) init() {
	d.chunks = make([][]T, 1)
	d.chunks[0] = make([]T, d.chunkSize)
	d.size = 0

	d.frontChunk = 0
	d.frontOffset = d.chunkSize / 2
	d.backChunk = 0
	d.backOffset = d.chunkSize / 2
}

// Size returns the number of live elements
func (d *Deque[T]) Size() int { return d.size }

// Empty returns true if the Deque holds no live elements
func (d *Deque[T]) Empty() bool { return d.size == 0 }

// ChunkSize returns the number of element slots in each chunk
func (d *Deque[T]) ChunkSize() int { return d.chunkSize }

// ChunkCount returns the number of directory entries, allocated or not
func (d *Deque[T]) ChunkCount() int { return len(d.chunks) }

// Front returns a pointer to the first element. The Deque must not be empty.
func (d *Deque[T]) Front() *T {
	memutils.DebugAssert(d.size > 0, "Front called on an empty deque")
	return &d.chunks[d.frontChunk][d.frontOffset]
}

// Back returns a pointer to the last element. The Deque must not be empty.
func (d *Deque[T]) Back() *T {
	memutils.DebugAssert(d.size > 0, "Back called on an empty deque")
	return &d.chunks[d.backChunk][d.backOffset]
}

// At returns a pointer to the element index positions from the front. If index does not address a
// live element, an error wrapping memutils.ErrOutOfRange (as a *memutils.IndexError) is returned.
func (d *Deque[T]) At(index int) (*T, error) {
	if err := memutils.CheckIndex(index, d.size); err != nil {
		return nil, err
	}

	position := d.frontChunk*d.chunkSize + d.frontOffset + index
	return &d.chunks[position/d.chunkSize][position%d.chunkSize], nil
}

// Each calls visit for every element from front to back, stopping early if visit returns false
func (d *Deque[T]) Each(visit func(index int, value *T) bool) {
	chunk, offset := d.frontChunk, d.frontOffset
	for i := 0; i < d.size; i++ {
		if !visit(i, &d.chunks[chunk][offset]) {
			return
		}

		offset++
		if offset == d.chunkSize {
			chunk++
			offset = 0
		}
	}
}

// PushFront inserts a copy of value before the first element
func (d *Deque[T]) PushFront(value T) {
	// A one-entry directory doubles without gaining a slot in front, so keep making room until
	// the front cursor can move
	for d.size > 0 && d.frontChunk == 0 && d.frontOffset == 0 {
		d.makeRoom()
	}

	if d.size > 0 {
		if d.frontOffset == 0 {
			d.frontChunk--
			d.frontOffset = d.chunkSize - 1
			d.ensureChunk(d.frontChunk)
		} else {
			d.frontOffset--
		}
	}

	d.ops.CopyConstruct(&d.chunks[d.frontChunk][d.frontOffset], &value)
	d.size++

	memutils.DebugValidate(d)
}

// PushBack inserts a copy of value after the last element
func (d *Deque[T]) PushBack(value T) {
	for d.size > 0 && d.backChunk == len(d.chunks)-1 && d.backOffset == d.chunkSize-1 {
		d.makeRoom()
	}

	if d.size > 0 {
		if d.backOffset == d.chunkSize-1 {
			d.backChunk++
			d.backOffset = 0
			d.ensureChunk(d.backChunk)
		} else {
			d.backOffset++
		}
	}

	d.ops.CopyConstruct(&d.chunks[d.backChunk][d.backOffset], &value)
	d.size++

	memutils.DebugValidate(d)
}

// PopFront destroys the first element. The Deque must not be empty.
func (d *Deque[T]) PopFront() {
	memutils.DebugAssert(d.size > 0, "PopFront called on an empty deque")
	if d.size == 0 {
		return
	}

	d.ops.DestroyAt(&d.chunks[d.frontChunk][d.frontOffset])
	d.size--

	if d.size == 0 {
		return
	}

	if d.frontOffset == d.chunkSize-1 {
		d.releaseChunk(d.frontChunk)
		d.frontChunk++
		d.frontOffset = 0
	} else {
		d.frontOffset++
	}

	memutils.DebugValidate(d)
}

// PopBack destroys the last element. The Deque must not be empty.
func (d *Deque[T]) PopBack() {
	memutils.DebugAssert(d.size > 0, "PopBack called on an empty deque")
	if d.size == 0 {
		return
	}

	d.ops.DestroyAt(&d.chunks[d.backChunk][d.backOffset])
	d.size--

	if d.size == 0 {
		return
	}

	if d.backOffset == 0 {
		d.releaseChunk(d.backChunk)
		d.backChunk--
		d.backOffset = d.chunkSize - 1
	} else {
		d.backOffset--
	}

	memutils.DebugValidate(d)
}

// Resize changes the number of live elements to count, appending zero values to or destroying
// elements from the back
func (d *Deque[T]) Resize(count int) {
	if count < 0 {
		count = 0
	}

	var zero T
	for d.size < count {
		d.PushBack(zero)
	}

	for d.size > count {
		d.PopBack()
	}
}

// Clear destroys every element, drops every chunk and the directory, and returns the Deque to
// the state it was created in: a single chunk with both cursors at its center
func (d *Deque[T]) Clear() {
	d.destroyElements()
	d.init()
}

// Destroy destroys every element and drops every chunk and the directory. The Deque must not be
// used again until Clear is called.
func (d *Deque[T]) Destroy() {
	d.destroyElements()
	d.chunks = nil
	d.size = 0
}

// Validate performs internal consistency checks on the Deque
func (d *Deque[T]) Validate() error {
	if d.chunkSize < 1 {
		return errors.Newf("chunk size %d is less than one", d.chunkSize)
	}

	if err := memutils.CheckPow2(len(d.chunks), "directory length"); err != nil {
		return err
	}

	if d.size < 0 {
		return errors.Newf("deque size is negative: %d", d.size)
	}

	if d.frontChunk < 0 || d.frontChunk >= len(d.chunks) || d.frontOffset < 0 || d.frontOffset >= d.chunkSize {
		return errors.Newf("front cursor (%d, %d) lies outside the directory", d.frontChunk, d.frontOffset)
	}

	if d.backChunk < 0 || d.backChunk >= len(d.chunks) || d.backOffset < 0 || d.backOffset >= d.chunkSize {
		return errors.Newf("back cursor (%d, %d) lies outside the directory", d.backChunk, d.backOffset)
	}

	front := d.frontChunk*d.chunkSize + d.frontOffset
	back := d.backChunk*d.chunkSize + d.backOffset

	if d.size == 0 {
		if front != back {
			return errors.Newf("empty deque has front cursor at %d but back cursor at %d", front, back)
		}
	} else if back-front+1 != d.size {
		return errors.Newf("cursors span %d slots but the deque holds %d elements", back-front+1, d.size)
	}

	for chunk := range d.chunks {
		inUse := chunk >= d.frontChunk && chunk <= d.backChunk
		if inUse && d.chunks[chunk] == nil {
			return errors.Newf("chunk %d lies between the cursors but is not allocated", chunk)
		}
		if !inUse && d.chunks[chunk] != nil {
			return errors.Newf("chunk %d lies outside the cursors but is still allocated", chunk)
		}
	}

	return nil
}

// String renders the internal layout for diagnostics: directory length, chunk size, cursor
// positions and the contents of every chunk. Unallocated directory entries print as [] and
// unconstructed slots as _.
func (d *Deque[T]) String() string {
	var sb strings.Builder
	sb.WriteString("-------------------------------\n")
	fmt.Fprintf(&sb, "Num chunks: %d\n", len(d.chunks))
	fmt.Fprintf(&sb, "Chunk size: %d\n", d.chunkSize)
	fmt.Fprintf(&sb, "Front: %d %d\n", d.frontChunk, d.frontOffset)
	fmt.Fprintf(&sb, "Back: %d %d\n", d.backChunk, d.backOffset)

	front := d.frontChunk*d.chunkSize + d.frontOffset
	for chunk := range d.chunks {
		if chunk > 0 {
			sb.WriteString(", ")
		}

		if d.chunks[chunk] == nil {
			sb.WriteString("[]")
			continue
		}

		sb.WriteString("[")
		for offset := 0; offset < d.chunkSize; offset++ {
			if offset > 0 {
				sb.WriteString(",")
			}

			position := chunk*d.chunkSize + offset
			if d.size > 0 && position >= front && position < front+d.size {
				fmt.Fprintf(&sb, "%v", d.chunks[chunk][offset])
			} else {
				sb.WriteString("_")
			}
		}
		sb.WriteString("]")
	}

	sb.WriteString("\n-------------------------------\n")
	return sb.String()
}

// AddStatistics sums this Deque's storage into stats
func (d *Deque[T]) AddStatistics(stats *memutils.Statistics) {
	elemSize := d.elemSize()
	d.visitChunks(func(slots, live int) {
		stats.AddBlock(slots, live, elemSize)
	})
}

// AddDetailedStatistics sums this Deque's storage, directory occupancy and growth history into stats
func (d *Deque[T]) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.GrowthCount += d.growthCount
	stats.DirectorySlots += len(d.chunks)

	elemSize := d.elemSize()
	for _, chunk := range d.chunks {
		if chunk == nil {
			stats.UnallocatedDirectorySlots++
		}
	}

	d.visitChunks(func(slots, live int) {
		stats.AddBlock(slots, live, elemSize)
	})
}

// BuildStatsString returns a json document describing this Deque's storage, including the
// number of live elements in each directory entry (null for unallocated entries)
func (d *Deque[T]) BuildStatsString() string {
	var stats memutils.DetailedStatistics
	stats.Clear()
	d.AddDetailedStatistics(&stats)

	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("Size").Int(d.size)
	obj.Name("ChunkSize").Int(d.chunkSize)
	obj.Name("ChunkBytes").Int(d.chunkBytes)
	stats.WriteJson(&obj)

	chunks := obj.Name("Chunks").Array()
	for chunk := range d.chunks {
		if d.chunks[chunk] == nil {
			chunks.Null()
			continue
		}
		chunks.Int(d.liveInChunk(chunk))
	}
	chunks.End()
	obj.End()

	return string(writer.Bytes())
}

func (d *Deque[T]) elemSize() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func (d *Deque[T]) visitChunks(visit func(slots, live int)) {
	for chunk := range d.chunks {
		if d.chunks[chunk] != nil {
			visit(d.chunkSize, d.liveInChunk(chunk))
		}
	}
}

// liveInChunk returns the number of live elements stored in the given directory entry
func (d *Deque[T]) liveInChunk(chunk int) int {
	if d.size == 0 || chunk < d.frontChunk || chunk > d.backChunk {
		return 0
	}

	first, last := 0, d.chunkSize-1
	if chunk == d.frontChunk {
		first = d.frontOffset
	}
	if chunk == d.backChunk {
		last = d.backOffset
	}
	return last - first + 1
}

func (d *Deque[T]) destroyElements() {
	d.Each(func(_ int, value *T) bool {
		d.ops.DestroyAt(value)
		return true
	})
}

func (d *Deque[T]) ensureChunk(chunk int) {
	if d.chunks[chunk] != nil {
		return
	}

	if d.logger != nil {
		d.logger.Debug("Deque::allocateChunk", slog.Int("Chunk", chunk), slog.Int("ChunkSize", d.chunkSize))
	}
	d.chunks[chunk] = make([]T, d.chunkSize)
}

// releaseChunk drops a chunk that a cursor has just left
func (d *Deque[T]) releaseChunk(chunk int) {
	if d.logger != nil {
		d.logger.Debug("Deque::releaseChunk", slog.Int("Chunk", chunk))
	}
	d.chunks[chunk] = nil
}

// makeRoom gives the exhausted end of the directory at least one free entry. When at least half
// of the directory (and never less than two entries) lies outside the chunks in use, those chunks
// are re-centered in place; otherwise the directory grows.
func (d *Deque[T]) makeRoom() {
	used := d.backChunk - d.frontChunk + 1
	free := len(d.chunks) - used
	if free < 2 || free < used {
		d.grow()
		return
	}

	start := free / 2
	if d.logger != nil {
		d.logger.Debug("Deque::recenter", slog.Int("ChunkCount", len(d.chunks)), slog.Int("OldFront", d.frontChunk), slog.Int("NewFront", start))
	}

	copy(d.chunks[start:start+used], d.chunks[d.frontChunk:d.backChunk+1])
	for chunk := range d.chunks {
		if chunk < start || chunk >= start+used {
			d.chunks[chunk] = nil
		}
	}

	d.backChunk += start - d.frontChunk
	d.frontChunk = start
}

// grow doubles the directory and copies the existing chunk pointers into its middle half,
// leaving the outer quarters unallocated. Chunks themselves are never copied.
func (d *Deque[T]) grow() {
	newCount := len(d.chunks) * 2
	centerOffset := newCount / 4

	if d.logger != nil {
		d.logger.Debug("Deque::grow", slog.Int("OldChunkCount", len(d.chunks)), slog.Int("NewChunkCount", newCount), slog.Int("CenterOffset", centerOffset))
	}

	newChunks := make([][]T, newCount)
	copy(newChunks[centerOffset:], d.chunks)

	d.chunks = newChunks
	d.frontChunk += centerOffset
	d.backChunk += centerOffset
	d.growthCount++

	memutils.DebugCheckPow2(len(d.chunks), "directory length")
}
