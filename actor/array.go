package actor

import (
	"iter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Array is a composite of child shapes, each placed in the array's space by
// its own S2P. Children are appended one at a time; the array can be queried
// only once Complete has been called with the number of children appended.
type Array struct {
	Header
	children  []Shape
	completed bool
}

// NewArray creates an empty, incomplete array.
func NewArray(opts ...Option) *Array {
	a := &Array{Header: newHeader(opts)}
	a.BBox = EmptyAABB()
	a.Size = arraySize(nil)
	return a
}

func (a *Array) Type() ShapeType { return ShapeTypeArray }

func (a *Array) IsComplete() bool { return a.completed }

// Append adds a copy of child to the array. The array becomes incomplete
// until Complete is called again.
func (a *Array) Append(child Shape) error {
	if child == nil {
		return errors.Wrap(ErrInvalidShape, "nil child")
	}
	if !child.IsComplete() {
		return errors.Wrapf(ErrIncomplete, "appending %v", child.Type())
	}
	clone, err := Clone(child)
	if err != nil {
		return err
	}
	a.children = append(a.children, clone)
	a.Size += clone.Base().Size
	a.completed = false
	return nil
}

// Complete finalises the array. count must equal the number of appended children.
func (a *Array) Complete(count int) error {
	if count != len(a.children) {
		return errors.Wrapf(ErrSizeMismatch, "array completed with count %d but holds %d children", count, len(a.children))
	}
	if a.completed {
		return nil
	}
	if err := a.Validate(); err != nil {
		return err
	}

	a.BBox = lo.Reduce(a.children, func(box AABB, child Shape, _ int) AABB {
		return box.Union(BBoxInParent(child))
	}, EmptyAABB())
	a.completed = true
	return nil
}

func (a *Array) Validate() error {
	if a.Size != arraySize(a.children) {
		return errors.Wrapf(ErrSizeMismatch, "array size %d, payload %d", a.Size, arraySize(a.children))
	}
	for i, child := range a.children {
		if err := child.Validate(); err != nil {
			return errors.Wrapf(err, "array child %d", i)
		}
	}
	return validateHeader(&a.Header)
}

// Len returns the number of children appended so far.
func (a *Array) Len() int {
	return len(a.children)
}

// Children returns the array's children.
func (a *Array) Children() ([]Shape, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	return a.children, nil
}

// Next returns the child at i and the index of the one after it, or -1 when i is the last.
func (a *Array) Next(i int) (Shape, int, error) {
	if err := a.ready(); err != nil {
		return nil, -1, err
	}
	if i < 0 || i >= len(a.children) {
		return nil, -1, errors.Errorf("array child %d out of range [0,%d)", i, len(a.children))
	}
	if i+1 == len(a.children) {
		return a.children[i], -1, nil
	}
	return a.children[i], i + 1, nil
}

// All iterates over the children of a complete array.
func (a *Array) All() (iter.Seq2[int, Shape], error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	return func(yield func(int, Shape) bool) {
		for i, child := range a.children {
			if !yield(i, child) {
				return
			}
		}
	}, nil
}

func (a *Array) ready() error {
	if !a.completed {
		return errors.Wrap(ErrIncomplete, "array")
	}
	if a.Size != arraySize(a.children) {
		return errors.Wrapf(ErrSizeMismatch, "array size %d, payload %d", a.Size, arraySize(a.children))
	}
	return nil
}

// Support treats the array as the convex hull of its children.
func (a *Array) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := mgl64.Vec3{}
	bestDot := 0.0
	for i, child := range a.children {
		s2p := child.Base().S2P
		local := Rotation(s2p).Transpose().Mul3x1(direction)
		p := TransformPoint(s2p, child.Support(local))
		if d := p.Dot(direction); i == 0 || d > bestDot {
			best, bestDot = p, d
		}
	}
	return best
}

func (a *Array) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{a.Support(direction)}
}
