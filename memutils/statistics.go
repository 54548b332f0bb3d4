package memutils

import (
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics summarizes the storage held by one or more containers. A block is one backing
// allocation: the buffer of a vector or a single chunk of a deque.
type Statistics struct {
	BlockCount   int
	SlotCount    int
	ElementCount int
	BlockBytes   int
	ElementBytes int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.SlotCount = 0
	s.ElementCount = 0
	s.BlockBytes = 0
	s.ElementBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.SlotCount += other.SlotCount
	s.ElementCount += other.ElementCount
	s.BlockBytes += other.BlockBytes
	s.ElementBytes += other.ElementBytes
}

// AddBlock records a backing allocation of slots element slots holding live elements, each
// elemSize bytes wide
func (s *Statistics) AddBlock(slots, live int, elemSize uintptr) {
	s.BlockCount++
	s.SlotCount += slots
	s.ElementCount += live
	s.BlockBytes += slots * int(elemSize)
	s.ElementBytes += live * int(elemSize)
}

// WriteJson populates a json object with these statistics
func (s *Statistics) WriteJson(json *jwriter.ObjectState) {
	json.Name("Blocks").Int(s.BlockCount)
	json.Name("Slots").Int(s.SlotCount)
	json.Name("Elements").Int(s.ElementCount)
	json.Name("TotalBytes").Int(s.BlockBytes)
	json.Name("UnusedBytes").Int(s.BlockBytes - s.ElementBytes)
}

// DetailedStatistics extends Statistics with growth and occupancy data
type DetailedStatistics struct {
	Statistics
	// GrowthCount is the number of reallocations of a buffer or chunk directory
	GrowthCount int
	// DirectorySlots is the number of chunk directory entries, allocated or not
	DirectorySlots int
	// UnallocatedDirectorySlots is the number of directory entries with no chunk behind them
	UnallocatedDirectorySlots int
	BlockOccupancyMin         int
	BlockOccupancyMax         int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.GrowthCount = 0
	s.DirectorySlots = 0
	s.UnallocatedDirectorySlots = 0
	s.BlockOccupancyMin = math.MaxInt
	s.BlockOccupancyMax = 0
}

// AddBlock records a backing allocation and folds its occupancy into the min/max values
func (s *DetailedStatistics) AddBlock(slots, live int, elemSize uintptr) {
	s.Statistics.AddBlock(slots, live, elemSize)

	if live < s.BlockOccupancyMin {
		s.BlockOccupancyMin = live
	}

	if live > s.BlockOccupancyMax {
		s.BlockOccupancyMax = live
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.GrowthCount += other.GrowthCount
	s.DirectorySlots += other.DirectorySlots
	s.UnallocatedDirectorySlots += other.UnallocatedDirectorySlots

	if other.BlockOccupancyMin < s.BlockOccupancyMin {
		s.BlockOccupancyMin = other.BlockOccupancyMin
	}

	if other.BlockOccupancyMax > s.BlockOccupancyMax {
		s.BlockOccupancyMax = other.BlockOccupancyMax
	}
}

// WriteJson populates a json object with these statistics
func (s *DetailedStatistics) WriteJson(json *jwriter.ObjectState) {
	s.Statistics.WriteJson(json)
	json.Name("Growths").Int(s.GrowthCount)
	json.Name("DirectorySlots").Int(s.DirectorySlots)
	json.Name("UnallocatedDirectorySlots").Int(s.UnallocatedDirectorySlots)

	if s.BlockCount > 0 {
		json.Name("BlockOccupancyMin").Int(s.BlockOccupancyMin)
		json.Name("BlockOccupancyMax").Int(s.BlockOccupancyMax)
	}
}
