package physics

import (
	"slices"

	"github.com/psryland/rylogic-code-sub010/actor"
)

// World owns a list of bodies and steps them with an Engine, reporting
// collision and trigger events to subscribers after each step.
type World struct {
	Engine
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody

	Events Events

	// triggers take part in collision detection but receive no impulse
	triggers map[*actor.RigidBody]bool
}

// NewWorld creates an empty world stepped by engine.
func NewWorld(engine Engine) *World {
	return &World{
		Engine:   engine,
		Events:   NewEvents(),
		triggers: make(map[*actor.RigidBody]bool),
	}
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	w.Bodies = append(w.Bodies, body)
}

// AddTrigger adds a body whose contacts raise trigger events and are never resolved.
func (w *World) AddTrigger(body *actor.RigidBody) {
	w.AddBody(body)
	if w.triggers == nil {
		w.triggers = make(map[*actor.RigidBody]bool)
	}
	w.triggers[body] = true
}

// IsTrigger reports whether body was added with AddTrigger.
func (w *World) IsTrigger(body *actor.RigidBody) bool {
	return w.triggers[body]
}

// RemoveBody removes a rigid body from the world
func (w *World) RemoveBody(body *actor.RigidBody) {
	w.Bodies = slices.DeleteFunc(w.Bodies, func(b *actor.RigidBody) bool { return b == body })
	delete(w.triggers, body)
	w.Events.forget(body)
}

// Step advances the world by dt and then delivers the step's events.
func (w *World) Step(dt float64) error {
	engine := w.Engine
	hook := w.PostCollisionDetection
	engine.PostCollisionDetection = func(contacts *[]Contact) {
		*contacts = w.Events.recordContacts(*contacts, w.IsTrigger)
		if hook != nil {
			hook(contacts)
		}
	}

	err := engine.Step(dt, w.Bodies)
	w.Events.flush(w.IsTrigger)
	return err
}
