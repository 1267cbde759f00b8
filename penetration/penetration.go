// Package penetration implements the accumulators that separating axis tests
// report to. A test computes, for each candidate axis, the overlap of the two
// shapes' projections and reports it with a function that builds the axis on
// demand. The accumulator decides whether the test should continue and which
// axis to keep.
//
// Depths are measured along the unnormalised axis. MinPenetration stores the
// signed square of the depth together with the squared axis length, so
// candidates are compared without a square root or division; the square root
// is taken once, when Depth or Axis is read.
package penetration

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/psryland/rylogic-code-sub010/material"
)

// ErrNoAxis is returned when results are read before any axis was reported.
var ErrNoAxis = errors.New("no axis has been reported")

// Accumulator receives the depth of each candidate separating axis.
type Accumulator interface {
	// Report records the overlap depth along the (unnormalised) axis returned
	// by axis. depth < 0 means the axis separates the shapes. Report returns
	// false when the test can stop.
	Report(depth float64, axis func() mgl64.Vec3, matA, matB material.ID) bool
	// Contact reports whether no separating axis has been seen.
	Contact() bool
}

// SignedSqr returns x² with the sign of x.
func SignedSqr[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x * x
	}
	return x * x
}

// Test is a boolean separating axis test. It never evaluates an axis.
type Test struct {
	separated bool
}

func (t *Test) Report(depth float64, _ func() mgl64.Vec3, _, _ material.ID) bool {
	if depth < 0 {
		t.separated = true
		return false
	}
	return true
}

func (t *Test) Contact() bool {
	return !t.separated
}

// MinPenetration keeps the axis of minimum signed depth and never stops early.
// A negative depth marks the shapes separated even when its axis is degenerate.
type MinPenetration struct {
	axis      mgl64.Vec3
	axisLenSq float64
	depthSq   float64
	matA      material.ID
	matB      material.ID
	tested    bool
	separated bool
}

func (m *MinPenetration) Report(depth float64, axis func() mgl64.Vec3, matA, matB material.ID) bool {
	m.report(depth, axis, matA, matB)
	return true
}

func (m *MinPenetration) report(depth float64, axis func() mgl64.Vec3, matA, matB material.ID) {
	dsq := SignedSqr(depth)
	if depth < 0 {
		m.separated = true
	}

	if m.tested {
		// The signs alone decide most comparisons
		if dsq >= 0 && m.depthSq < 0 {
			return
		}
		if !(dsq < 0 && m.depthSq >= 0) {
			a := axis()
			lenSq := a.LenSqr()
			if lenSq == 0 {
				return
			}
			// dsq/lenSq < depthSq/axisLenSq, cross-multiplied
			if dsq*m.axisLenSq >= m.depthSq*lenSq {
				return
			}
			m.set(a, lenSq, dsq, matA, matB)
			return
		}
	}

	a := axis()
	lenSq := a.LenSqr()
	if lenSq == 0 {
		return
	}
	m.set(a, lenSq, dsq, matA, matB)
}

func (m *MinPenetration) set(axis mgl64.Vec3, lenSq, dsq float64, matA, matB material.ID) {
	m.axis = axis
	m.axisLenSq = lenSq
	m.depthSq = dsq
	m.matA = matA
	m.matB = matB
	m.tested = true
}

func (m *MinPenetration) Contact() bool {
	return !m.separated
}

// Depth returns the minimum signed depth along the normalised axis.
func (m *MinPenetration) Depth() (float64, error) {
	if !m.tested {
		return 0, ErrNoAxis
	}
	d := math.Sqrt(math.Abs(m.depthSq) / m.axisLenSq)
	if m.depthSq < 0 {
		return -d, nil
	}
	return d, nil
}

// Axis returns the normalised axis of minimum depth.
func (m *MinPenetration) Axis() (mgl64.Vec3, error) {
	if !m.tested {
		return mgl64.Vec3{}, ErrNoAxis
	}
	return m.axis.Mul(1 / math.Sqrt(m.axisLenSq)), nil
}

// Materials returns the material ids reported with the retained axis.
func (m *MinPenetration) Materials() (material.ID, material.ID, error) {
	if !m.tested {
		return 0, 0, ErrNoAxis
	}
	return m.matA, m.matB, nil
}

// ContactPenetration is MinPenetration that stops at the first separating axis
// without evaluating it.
type ContactPenetration struct {
	MinPenetration
}

func (c *ContactPenetration) Report(depth float64, axis func() mgl64.Vec3, matA, matB material.ID) bool {
	if depth < 0 {
		c.separated = true
		return false
	}
	c.report(depth, axis, matA, matB)
	return true
}
