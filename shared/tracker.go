package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rack/memutils"
	"golang.org/x/exp/slog"
)

type trackedBlock interface {
	counts() (strong, weak int)
	blockID() uint64
	setTracking(tracker *Tracker, id uint64)
	valueType() string
}

// Tracker records every control block created through it until that block is released, so that
// tests and diagnostics can find Ptr values that were never reset. A Tracker may be shared
// between Ptr values of different element types.
type Tracker struct {
	logger *slog.Logger

	nextID   uint64
	live     *swiss.Map[uint64, trackedBlock]
	created  int
	released int
}

var _ memutils.Validatable = &Tracker{}

// NewTracker creates an empty Tracker. A nil logger disables logging.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		logger: logger,
		live:   swiss.NewMap[uint64, trackedBlock](42),
	}
}

// NewTracked takes ownership of value like NewWithDeleter, and registers the new control block
// with tracker
func NewTracked[T any](tracker *Tracker, value *T, deleter func(value *T)) *Ptr[T] {
	return newPtr(value, deleter, tracker)
}

// MakeTracked allocates a new T holding value and wraps it in a Ptr registered with tracker
func MakeTracked[T any](tracker *Tracker, value T) *Ptr[T] {
	allocated := new(T)
	*allocated = value
	return newPtr(allocated, nil, tracker)
}

// Live returns the number of control blocks that have not yet been released
func (t *Tracker) Live() int {
	return t.live.Count()
}

// Created returns the number of control blocks ever registered with this Tracker
func (t *Tracker) Created() int {
	return t.created
}

// Released returns the number of registered control blocks that have been released
func (t *Tracker) Released() int {
	return t.released
}

// Check returns an error describing every control block still live, or nil if there are none
func (t *Tracker) Check() error {
	blocks := t.sortedBlocks()
	if len(blocks) == 0 {
		return nil
	}

	var leaks strings.Builder
	for i, block := range blocks {
		if i > 0 {
			leaks.WriteString(", ")
		}
		strong, weak := block.counts()
		fmt.Fprintf(&leaks, "%d (%s strong=%d weak=%d)", block.blockID(), block.valueType(), strong, weak)
	}

	return errors.Newf("%d control blocks still live: %s", len(blocks), leaks.String())
}

// Validate verifies that the tracker's counters agree with its registry, and that no registered
// block has outlived both its strong and weak references
func (t *Tracker) Validate() error {
	if t.Live() != t.created-t.released {
		return errors.Newf("tracker has %d live blocks but created %d and released %d", t.Live(), t.created, t.released)
	}

	var err error
	t.live.Iter(func(id uint64, block trackedBlock) bool {
		strong, weak := block.counts()
		if strong <= 0 && weak <= 0 {
			err = errors.Newf("control block %d is registered with no references", id)
			return true
		}
		return false
	})
	return err
}

// BuildStatsString returns a json document describing the tracker's counters and every live
// control block
func (t *Tracker) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("Created").Int(t.created)
	obj.Name("Released").Int(t.released)
	obj.Name("Live").Int(t.Live())

	blocks := obj.Name("Blocks").Array()
	for _, block := range t.sortedBlocks() {
		strong, weak := block.counts()

		blockObj := blocks.Object()
		blockObj.Name("Id").Int(int(block.blockID()))
		blockObj.Name("Type").String(block.valueType())
		blockObj.Name("Strong").Int(strong)
		blockObj.Name("Weak").Int(weak)
		blockObj.End()
	}
	blocks.End()
	obj.End()

	return string(writer.Bytes())
}

func (t *Tracker) register(block trackedBlock) {
	t.nextID++
	block.setTracking(t, t.nextID)
	t.live.Put(t.nextID, block)
	t.created++
}

func (t *Tracker) unregister(block trackedBlock) {
	_, ok := t.live.Get(block.blockID())
	if !ok {
		return
	}
	t.live.Delete(block.blockID())
	t.released++
	memutils.DebugValidate(t)

	if t.logger != nil {
		t.logger.Debug("Tracker::release", slog.Uint64("Id", block.blockID()), slog.String("Type", block.valueType()))
	}
}

func (t *Tracker) sortedBlocks() []trackedBlock {
	blocks := make([]trackedBlock, 0, t.live.Count())
	t.live.Iter(func(_ uint64, block trackedBlock) bool {
		blocks = append(blocks, block)
		return false
	})

	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].blockID() < blocks[j].blockID()
	})
	return blocks
}
