// Package material holds the surface properties used when resolving contacts
// and the blending rules applied to a pair of materials.
package material

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ID identifies a material in a Map. Zero is the default material.
type ID uint32

// Material describes how a surface responds in a collision.
type Material struct {
	Density float64 `yaml:"density"`

	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`

	// NormalElasticity: 0 = perfectly inelastic, 1 = no energy lost along the normal
	NormalElasticity float64 `yaml:"normal_elasticity"`
	// TangentialElasticity: 0 = slip is stopped, 1 = slip is reversed
	TangentialElasticity float64 `yaml:"tangential_elasticity"`
}

// Default is used for any ID without an entry.
var Default = Material{
	Density:              1000,
	StaticFriction:       0.5,
	DynamicFriction:      0.3,
	NormalElasticity:     0.5,
	TangentialElasticity: 0,
}

// Map is the material system the engine consumes.
type Map interface {
	Blend(a, b ID) Material
}

// Table is a Map backed by an in-memory lookup.
type Table struct {
	Default   Material        `yaml:"default"`
	Materials map[ID]Material `yaml:"materials"`
}

// NewTable returns an empty table using the package Default.
func NewTable() *Table {
	return &Table{Default: Default, Materials: map[ID]Material{}}
}

// LoadTable reads a YAML document of the form:
//
//	default: {density: 1000, static_friction: 0.5, ...}
//	materials:
//	  1: {density: 7800, normal_elasticity: 0.2}
func LoadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read material table")
	}

	table := NewTable()
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, errors.Wrap(err, "decode material table")
	}
	if table.Materials == nil {
		table.Materials = map[ID]Material{}
	}

	if err := table.Default.Validate(); err != nil {
		return nil, errors.Wrap(err, "default material")
	}
	for id, m := range table.Materials {
		if err := m.Validate(); err != nil {
			return nil, errors.Wrapf(err, "material %d", id)
		}
	}
	return table, nil
}

// Set adds or replaces a material.
func (t *Table) Set(id ID, m Material) {
	if t.Materials == nil {
		t.Materials = map[ID]Material{}
	}
	t.Materials[id] = m
}

// Get returns the material for id, or the table default.
func (t *Table) Get(id ID) Material {
	if m, ok := t.Materials[id]; ok {
		return m
	}
	return t.Default
}

// Blend combines two materials: densities and elasticities are averaged,
// friction coefficients use the geometric mean.
func (t *Table) Blend(a, b ID) Material {
	return Blend(t.Get(a), t.Get(b))
}

// Blend combines two materials. It is symmetric in its arguments.
func Blend(a, b Material) Material {
	return Material{
		Density:              (a.Density + b.Density) / 2.0,
		StaticFriction:       math.Sqrt(a.StaticFriction * b.StaticFriction),
		DynamicFriction:      math.Sqrt(a.DynamicFriction * b.DynamicFriction),
		NormalElasticity:     (a.NormalElasticity + b.NormalElasticity) / 2.0,
		TangentialElasticity: (a.TangentialElasticity + b.TangentialElasticity) / 2.0,
	}
}

// Validate rejects negative or non-finite coefficients and elasticities outside [0,1].
func (m Material) Validate() error {
	values := []float64{m.Density, m.StaticFriction, m.DynamicFriction, m.NormalElasticity, m.TangentialElasticity}
	for _, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("invalid material coefficient %v", v)
		}
	}
	if m.NormalElasticity > 1 || m.TangentialElasticity > 1 {
		return errors.New("elasticity must be within [0,1]")
	}
	return nil
}
