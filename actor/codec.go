package actor

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"

	"github.com/psryland/rylogic-code-sub010/material"
)

var msgpack = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.Canonical = true
	h.WriteExt = true
	return h
}()

// shapeRecord is the serialised form of a shape.
type shapeRecord struct {
	Type     ShapeType   `codec:"type"`
	S2P      [16]float64 `codec:"s2p"`
	BBoxMin  [3]float64  `codec:"bbox_min"`
	BBoxMax  [3]float64  `codec:"bbox_max"`
	Material uint32      `codec:"material"`
	Flags    uint32      `codec:"flags"`
	Size     int         `codec:"size"`

	Radius   float64       `codec:"radius,omitempty"`
	Extents  [3]float64    `codec:"extents,omitempty"`
	Verts    [][3]float64  `codec:"verts,omitempty"`
	Nbrs     [][]int       `codec:"nbrs,omitempty"`
	Faces    [][3]int      `codec:"faces,omitempty"`
	Children []shapeRecord `codec:"children,omitempty"`
}

// Marshal encodes a complete shape as msgpack.
func Marshal(s Shape) ([]byte, error) {
	rec, err := toRecord(s)
	if err != nil {
		return nil, err
	}
	var out []byte
	if err := codec.NewEncoderBytes(&out, msgpack).Encode(rec); err != nil {
		return nil, errors.Wrap(err, "encoding shape")
	}
	return out, nil
}

// Encode writes a complete shape to w as msgpack.
func Encode(w io.Writer, s Shape) error {
	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	return errors.Wrap(codec.NewEncoder(w, msgpack).Encode(rec), "encoding shape")
}

// Unmarshal decodes a shape produced by Marshal, rebuilding and validating it.
func Unmarshal(data []byte) (Shape, error) {
	var rec shapeRecord
	if err := codec.NewDecoderBytes(data, msgpack).Decode(&rec); err != nil {
		return nil, errors.Wrap(err, "decoding shape")
	}
	return fromRecord(&rec)
}

// Decode reads a shape written by Encode.
func Decode(r io.Reader) (Shape, error) {
	var rec shapeRecord
	if err := codec.NewDecoder(r, msgpack).Decode(&rec); err != nil {
		return nil, errors.Wrap(err, "decoding shape")
	}
	return fromRecord(&rec)
}

func toRecord(s Shape) (shapeRecord, error) {
	if s == nil {
		return shapeRecord{}, errors.Wrap(ErrInvalidShape, "nil shape")
	}
	if !s.IsComplete() {
		return shapeRecord{}, errors.Wrapf(ErrIncomplete, "encoding %v", s.Type())
	}

	h := s.Base()
	rec := shapeRecord{
		Type:     s.Type(),
		S2P:      h.S2P,
		BBoxMin:  h.BBox.Min,
		BBoxMax:  h.BBox.Max,
		Material: uint32(h.Material),
		Flags:    uint32(h.Flags),
		Size:     h.Size,
	}

	switch v := s.(type) {
	case *Sphere:
		rec.Radius = v.Radius
	case *Box:
		rec.Extents = v.HalfExtents
	case *Line:
		rec.Radius = v.HalfLength
	case *Triangle:
		rec.Verts = [][3]float64{v.Verts[0], v.Verts[1], v.Verts[2]}
	case *Polytope:
		rec.Verts = make([][3]float64, len(v.Verts))
		for i, p := range v.Verts {
			rec.Verts[i] = p
		}
		rec.Nbrs = v.Nbrs
		rec.Faces = v.Faces
	case *Array:
		for _, child := range v.children {
			c, err := toRecord(child)
			if err != nil {
				return shapeRecord{}, err
			}
			rec.Children = append(rec.Children, c)
		}
	default:
		return shapeRecord{}, errors.Wrapf(ErrWrongShapeType, "cannot encode %T", s)
	}
	return rec, nil
}

func fromRecord(rec *shapeRecord) (Shape, error) {
	opts := []Option{
		WithS2P(rec.S2P),
		WithMaterial(material.ID(rec.Material)),
		WithFlags(Flags(rec.Flags)),
	}

	var (
		s   Shape
		err error
	)
	switch rec.Type {
	case ShapeTypeSphere:
		s, err = NewSphere(rec.Radius, opts...)
	case ShapeTypeBox:
		s, err = NewBox(rec.Extents, opts...)
	case ShapeTypeLine:
		s, err = NewLine(rec.Radius, opts...)
	case ShapeTypeTriangle:
		if len(rec.Verts) != 3 {
			return nil, errors.Wrapf(ErrInvalidShape, "triangle with %d vertices", len(rec.Verts))
		}
		s, err = NewTriangle(rec.Verts[0], rec.Verts[1], rec.Verts[2], opts...)
	case ShapeTypePolytope:
		verts := make([]mgl64.Vec3, len(rec.Verts))
		for i, p := range rec.Verts {
			verts[i] = p
		}
		p := NewPolytope(verts, rec.Nbrs, rec.Faces, opts...)
		s, err = p, p.Complete()
	case ShapeTypeArray:
		arr := NewArray(opts...)
		for _, c := range rec.Children {
			child, cerr := fromRecord(&c)
			if cerr != nil {
				return nil, cerr
			}
			if cerr := arr.Append(child); cerr != nil {
				return nil, cerr
			}
		}
		s, err = arr, arr.Complete(len(rec.Children))
	default:
		return nil, errors.Wrapf(ErrWrongShapeType, "unknown shape type %d", rec.Type)
	}
	if err != nil {
		return nil, err
	}

	if s.Base().Size != rec.Size {
		return nil, errors.Wrapf(ErrSizeMismatch, "%v record size %d, payload %d", rec.Type, rec.Size, s.Base().Size)
	}
	return s, nil
}
