package actor

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// Clone returns a deep copy of a shape. Arrays are cloned child by child.
func Clone(s Shape) (Shape, error) {
	switch src := s.(type) {
	case *Sphere:
		dst := *src
		return &dst, nil
	case *Box:
		dst := *src
		return &dst, nil
	case *Line:
		dst := *src
		return &dst, nil
	case *Triangle:
		dst := *src
		return &dst, nil
	case *Polytope:
		dst := *src
		dst.Verts, dst.Nbrs, dst.Faces = nil, nil, nil
		opt := copier.Option{DeepCopy: true}
		if err := copier.CopyWithOption(&dst.Verts, &src.Verts, opt); err != nil {
			return nil, errors.Wrap(err, "cloning polytope vertices")
		}
		if err := copier.CopyWithOption(&dst.Nbrs, &src.Nbrs, opt); err != nil {
			return nil, errors.Wrap(err, "cloning polytope neighbours")
		}
		if err := copier.CopyWithOption(&dst.Faces, &src.Faces, opt); err != nil {
			return nil, errors.Wrap(err, "cloning polytope faces")
		}
		return &dst, nil
	case *Array:
		dst := *src
		dst.children = make([]Shape, len(src.children))
		for i, child := range src.children {
			c, err := Clone(child)
			if err != nil {
				return nil, err
			}
			dst.children[i] = c
		}
		return &dst, nil
	case nil:
		return nil, errors.Wrap(ErrInvalidShape, "nil shape")
	}
	return nil, errors.Wrapf(ErrWrongShapeType, "cannot clone %T", s)
}
