// Package physics steps a set of rigid bodies: it integrates their motion,
// finds the contacts between them and resolves each contact with an impulse.
//
// The geometry lives in the sub-packages: actor (shapes and bodies),
// collision (narrow phase), query (closest points and ray casts), spatial
// (spatial vector algebra) and constraint (impulse resolution).
package physics

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/psryland/rylogic-code-sub010/actor"
	"github.com/psryland/rylogic-code-sub010/constraint"
	"github.com/psryland/rylogic-code-sub010/material"
)

const (
	// DefaultWorkers is used when Engine.Workers is not set.
	DefaultWorkers = 1
	// DefaultSubsteps is used when Engine.Substeps is not set.
	DefaultSubsteps = 1
	// ConservationTolerance is the relative slack of the post-impulse momentum and energy check.
	ConservationTolerance = 1e-6
)

// Engine advances bodies in time. The zero value is usable: unset fields
// take their defaults on each Step.
type Engine struct {
	// Workers is the number of goroutines used to integrate bodies and run the narrow phase
	Workers int
	// Substeps splits each Step into this many equal steps
	Substeps int
	// BroadPhase defaults to BruteForce
	BroadPhase BroadPhase
	// Materials defaults to a table holding only material.Default
	Materials material.Map
	// Resolver defaults to constraint.Restitution
	Resolver constraint.Resolver
	// Logger defaults to slog.Default()
	Logger *slog.Logger
	// SkipUnsupportedPairs logs and skips shape pairs the narrow phase
	// cannot test instead of failing the step
	SkipUnsupportedPairs bool
	// Gravity is applied to every dynamic body at its centre of mass
	Gravity mgl64.Vec3

	// PostCollisionDetection, when set, sees the contacts of each step,
	// sorted by Time, before they are resolved. It may reorder, remove or
	// add contacts.
	PostCollisionDetection func(contacts *[]Contact)
}

// settings is the engine with its defaults filled in.
type settings struct {
	Engine
}

func (e *Engine) settings() settings {
	s := settings{Engine: *e}
	s.Workers = max(DefaultWorkers, s.Workers)
	if s.Substeps <= 0 {
		s.Substeps = DefaultSubsteps
	}
	if s.BroadPhase == nil {
		s.BroadPhase = BruteForce{}
	}
	if s.Materials == nil {
		s.Materials = material.NewTable()
	}
	if s.Resolver == nil {
		s.Resolver = constraint.Restitution{}
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	return s
}

// Step advances bodies by dt.
func (e *Engine) Step(dt float64, bodies []*actor.RigidBody) error {
	s := e.settings()
	h := dt / float64(s.Substeps)

	for i := range s.Substeps {
		if err := s.step(h, bodies); err != nil {
			return errors.Wrapf(err, "substep %d", i)
		}
	}
	return nil
}

func (s *settings) step(dt float64, bodies []*actor.RigidBody) error {
	s.integrate(dt, bodies)

	contacts, err := s.detect(dt, bodies)
	if err != nil {
		return err
	}

	slices.SortStableFunc(contacts, func(a, b Contact) int {
		return cmp.Compare(a.Time, b.Time)
	})
	if s.PostCollisionDetection != nil {
		s.PostCollisionDetection(&contacts)
	}

	s.resolve(contacts)
	return nil
}

// integrate applies gravity and evolves every body; bodies are independent.
func (s *settings) integrate(dt float64, bodies []*actor.RigidBody) {
	task(s.Workers, bodies, func(body *actor.RigidBody) {
		if !body.IsStatic() && s.Gravity != (mgl64.Vec3{}) {
			body.ApplyForceWS(s.Gravity.Mul(body.Mass()), mgl64.Vec3{}, body.CentreOfMassWS())
		}
		actor.Evolve(body, dt)
	})
}

func (s *settings) detect(dt float64, bodies []*actor.RigidBody) ([]Contact, error) {
	var pairs []Pair
	s.BroadPhase.EnumeratePairs(bodies, func(a, b *actor.RigidBody) {
		pairs = append(pairs, Pair{BodyA: a, BodyB: b})
	})

	return detect(pairs, dt, s.Materials, s.Workers, func(p Pair, err error) bool {
		if !s.SkipUnsupportedPairs {
			return false
		}
		s.Logger.Debug("skipping unsupported pair",
			slog.String("a", p.BodyA.Shape().Type().String()),
			slog.String("b", p.BodyB.Shape().Type().String()),
			slog.Any("error", err))
		return true
	})
}

// resolve applies an impulse for each contact in order. Contacts sharing a
// body see the momentum left by the ones before them.
func (s *settings) resolve(contacts []Contact) {
	for i, c := range contacts {
		before := constraint.Measure(c.BodyA, c.BodyB)

		in := constraint.Input{
			BodyA: c.BodyA,
			BodyB: c.BodyB,
			Axis:  c.Axis,
			Point: c.Point,
			Depth: c.Depth,
		}
		s.Resolver.Impulse(in, c.Material).Apply(c.BodyA, c.BodyB)

		after := constraint.Measure(c.BodyA, c.BodyB)
		if err := constraint.Check(before, after, ConservationTolerance); err != nil {
			s.Logger.Warn("contact impulse is not conservative",
				slog.Int("contact", i),
				slog.Float64("depth", c.Depth),
				slog.Any("error", err))
		}
	}
}

// Bodies returns the distinct bodies involved in contacts, in first-seen order.
func Bodies(contacts []Contact) []*actor.RigidBody {
	return lo.Uniq(lo.FlatMap(contacts, func(c Contact, _ int) []*actor.RigidBody {
		return []*actor.RigidBody{c.BodyA, c.BodyB}
	}))
}
