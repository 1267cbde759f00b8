package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/psryland/rylogic-code-sub010/actor"
)

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fractional", mgl64.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"large", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16) // mask = 15

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origin", CellKey{0, 0, 0}, 0},
		{"simple", CellKey{1, 2, 3}, 6},
		{"negative", CellKey{-1, -2, -3}, 10},
		{"large", CellKey{100, 200, 300}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.hashCell(tt.key)
			if result < 0 || result >= len(grid.cells) {
				t.Fatalf("hashCell(%v) = %d, out of range [0, %d)", tt.key, result, len(grid.cells))
			}
			if result != tt.expected {
				t.Errorf("hashCell(%v) = %d, want %d", tt.key, result, tt.expected)
			}
		})
	}
}

func TestHashCellDistribution(t *testing.T) {
	grid := NewSpatialGrid(1.0, 1024)

	cellCounts := make(map[int]int)
	for x := -50; x <= 50; x++ {
		for y := -50; y <= 50; y++ {
			for z := -50; z <= 50; z++ {
				cellCounts[grid.hashCell(CellKey{x, y, z})]++
			}
		}
	}

	minCount := int(^uint(0) >> 1)
	maxCount := 0
	for _, count := range cellCounts {
		minCount = min(minCount, count)
		maxCount = max(maxCount, count)
	}

	t.Logf("Hash distribution: min=%d, max=%d, buckets=%d", minCount, maxCount, len(cellCounts))
	if len(cellCounts) < len(grid.cells)/2 {
		t.Errorf("only %d of %d buckets used", len(cellCounts), len(grid.cells))
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want int }{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {16, 16}, {17, 32}, {1000, 1024},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestInsertAndClear(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)
	box := actor.NewAABB(mgl64.Vec3{1.5, 2.5, 3.5}, mgl64.Vec3{0.4, 0.4, 0.4})
	grid.Insert(7, box)

	found := false
	grid.visit(box, func(cellIdx int) {
		for _, idx := range grid.cells[cellIdx].bodyIndices {
			if idx == 7 {
				found = true
			}
		}
	})
	if !found {
		t.Fatalf("body 7 not found in the cells of its box")
	}

	grid.Clear()
	for i, cell := range grid.cells {
		if len(cell.bodyIndices) != 0 {
			t.Fatalf("cell %d holds %v after Clear", i, cell.bodyIndices)
		}
	}
}

func TestInsertSpanningManyCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 1024)
	box := actor.NewAABB(mgl64.Vec3{}, mgl64.Vec3{2.5, 2.5, 2.5})
	grid.Insert(0, box)

	// [-2.5, 2.5] touches cells -3..2 on each axis
	visited := 0
	grid.visit(box, func(int) { visited++ })
	if visited != 6*6*6 {
		t.Errorf("visited %d cells, want %d", visited, 6*6*6)
	}
}

func TestFinite(t *testing.T) {
	if !finite(actor.NewAABB(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})) {
		t.Errorf("unit box reported as not finite")
	}
	if finite(actor.EmptyAABB()) {
		t.Errorf("empty box reported as finite")
	}
}
