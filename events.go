package physics

import (
	"unsafe"

	"github.com/psryland/rylogic-code-sub010/actor"
)

const (
	TriggerEnter EventType = iota
	CollisionEnter
	TriggerStay
	CollisionStay
	TriggerExit
	CollisionExit
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	ptrA := uintptr(unsafe.Pointer(bodyA))
	ptrB := uintptr(unsafe.Pointer(bodyB))

	if ptrB < ptrA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case TriggerEnter:
		return "TriggerEnter"
	case CollisionEnter:
		return "CollisionEnter"
	case TriggerStay:
		return "TriggerStay"
	case CollisionStay:
		return "CollisionStay"
	case TriggerExit:
		return "TriggerExit"
	case CollisionExit:
		return "CollisionExit"
	}
	return "Unknown"
}

// Event is a change in the contact state of a pair of bodies, delivered once per World.Step.
type Event struct {
	Type  EventType
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// EventListener - callback for events
type EventListener func(event Event)

// Events tracks which pairs are touching from one step to the next.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Pairs in first-contact order, for deterministic delivery
	previousActivePairs []pairKey
	previousActive      map[pairKey]bool
	currentActivePairs  []pairKey
	currentActive       map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:      make(map[EventType][]EventListener),
		buffer:         make([]Event, 0, 256),
		previousActive: make(map[pairKey]bool),
		currentActive:  make(map[pairKey]bool),
	}
}

func (e *Events) init() {
	if e.listeners == nil {
		*e = NewEvents()
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContacts marks the pairs of contacts as touching and returns the
// contacts that involve no trigger.
func (e *Events) recordContacts(contacts []Contact, isTrigger func(*actor.RigidBody) bool) []Contact {
	e.init()
	n := 0
	for _, c := range contacts {
		pair := makePairKey(c.BodyA, c.BodyB)
		if !e.currentActive[pair] {
			e.currentActive[pair] = true
			e.currentActivePairs = append(e.currentActivePairs, pair)
		}

		if !isTrigger(c.BodyA) && !isTrigger(c.BodyB) {
			contacts[n] = c
			n++
		}
	}
	return contacts[:n]
}

// process compares current and previous pairs to detect Enter/Stay/Exit.
func (e *Events) process(isTrigger func(*actor.RigidBody) bool) {
	emit := func(pair pairKey, collision, trigger EventType) {
		t := collision
		if isTrigger(pair.bodyA) || isTrigger(pair.bodyB) {
			t = trigger
		}
		e.buffer = append(e.buffer, Event{Type: t, BodyA: pair.bodyA, BodyB: pair.bodyB})
	}

	for _, pair := range e.currentActivePairs {
		if e.previousActive[pair] {
			emit(pair, CollisionStay, TriggerStay)
		} else {
			emit(pair, CollisionEnter, TriggerEnter)
		}
	}
	for _, pair := range e.previousActivePairs {
		if !e.currentActive[pair] {
			emit(pair, CollisionExit, TriggerExit)
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs[:0]
	e.previousActive, e.currentActive = e.currentActive, e.previousActive
	clear(e.currentActive)
}

// forget drops every pair involving body, so no Exit event is raised for it.
func (e *Events) forget(body *actor.RigidBody) {
	keep := e.previousActivePairs[:0]
	for _, pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActive, pair)
			continue
		}
		keep = append(keep, pair)
	}
	e.previousActivePairs = keep
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush(isTrigger func(*actor.RigidBody) bool) {
	e.init()
	e.process(isTrigger)

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
