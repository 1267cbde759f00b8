package physics

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/psryland/rylogic-code-sub010/actor"
)

// CellKey is the integer coordinate of a grid cell.
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies overlapping it.
type Cell struct {
	bodyIndices []int
}

// SpatialGrid is a uniform hashed grid broad phase. Distant cells may hash to
// the same bucket; that only costs extra bounding box tests.
type SpatialGrid struct {
	// Workers is the number of goroutines searching for pairs
	Workers int

	cellSize float64
	cells    []Cell
	cellMask int
}

// NewSpatialGrid creates a grid of cubic cells of side cellSize, hashed into
// numCells buckets (rounded up to a power of two).
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		Workers:  DefaultWorkers,
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds the body to every cell its bounding box touches.
func (sg *SpatialGrid) Insert(bodyIndex int, box actor.AABB) {
	sg.visit(box, func(cellIdx int) {
		sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

// visit calls fn with the bucket of every cell box touches.
func (sg *SpatialGrid) visit(box actor.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (sg *SpatialGrid) EnumeratePairs(bodies []*actor.RigidBody, fn func(a, b *actor.RigidBody)) {
	boxes := make([]actor.AABB, len(bodies))
	indices := make([]int, 0, len(bodies))
	sg.Clear()
	for i, body := range bodies {
		if body.Shape() == nil {
			continue
		}
		boxes[i] = body.BBoxWS()
		if !finite(boxes[i]) {
			continue
		}
		sg.Insert(i, boxes[i])
		indices = append(indices, i)
	}

	// Each body collects its partners with a higher index, so pairs are
	// found once and reported in body order whatever the worker count
	partners := make([][]int, len(bodies))
	task(max(DefaultWorkers, sg.Workers), indices, func(i int) {
		seen := map[int]bool{}
		sg.visit(boxes[i], func(cellIdx int) {
			for _, j := range sg.cells[cellIdx].bodyIndices {
				if j <= i || seen[j] {
					continue
				}
				seen[j] = true
				if candidate(bodies[i], bodies[j]) && boxes[i].Overlaps(boxes[j]) {
					partners[i] = append(partners[i], j)
				}
			}
		})
		slices.Sort(partners[i])
	})

	for i, list := range partners {
		for _, j := range list {
			fn(bodies[i], bodies[j])
		}
	}
}

func finite(box actor.AABB) bool {
	for i := 0; i < 3; i++ {
		if math.IsInf(box.Min[i], 0) || math.IsInf(box.Max[i], 0) || math.IsNaN(box.Min[i]) || math.IsNaN(box.Max[i]) {
			return false
		}
	}
	return true
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
