package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/psryland/rylogic-code-sub010/actor"
)

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	for _, e := range ec.events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

// subscribeAll routes every event type to one capture.
func subscribeAll(events *Events) *eventCapture {
	capture := &eventCapture{}
	for _, et := range []EventType{TriggerEnter, CollisionEnter, TriggerStay, CollisionStay, TriggerExit, CollisionExit} {
		events.Subscribe(et, capture.capture)
	}
	return capture
}

func triggerSet(bodies ...*actor.RigidBody) func(*actor.RigidBody) bool {
	return func(b *actor.RigidBody) bool {
		for _, t := range bodies {
			if t == b {
				return true
			}
		}
		return false
	}
}

func eventBodies(t *testing.T) (*actor.RigidBody, *actor.RigidBody, *actor.RigidBody) {
	return createSphere(t, mgl64.Vec3{0, 0, 0}, 1, actor.BodyTypeDynamic),
		createSphere(t, mgl64.Vec3{1, 0, 0}, 1, actor.BodyTypeDynamic),
		createSphere(t, mgl64.Vec3{2, 0, 0}, 1, actor.BodyTypeDynamic)
}

func TestMakePairKey(t *testing.T) {
	a, b, c := eventBodies(t)

	if makePairKey(a, b) != makePairKey(b, a) {
		t.Errorf("pair key depends on argument order")
	}
	if makePairKey(a, b) == makePairKey(a, c) {
		t.Errorf("different pairs share a key")
	}
}

func TestEvents_MultipleListeners(t *testing.T) {
	events := NewEvents()
	a, b, _ := eventBodies(t)
	first, second := &eventCapture{}, &eventCapture{}
	events.Subscribe(CollisionEnter, first.capture)
	events.Subscribe(CollisionEnter, second.capture)

	events.recordContacts([]Contact{{BodyA: a, BodyB: b}}, triggerSet())
	events.flush(triggerSet())

	if first.count() != 1 || second.count() != 1 {
		t.Errorf("listeners saw %d and %d events, want 1 each", first.count(), second.count())
	}
}

func TestEvents_RecordContacts(t *testing.T) {
	a, b, c := eventBodies(t)

	tests := []struct {
		name     string
		triggers []*actor.RigidBody
		want     int
	}{
		{"no triggers", nil, 2},
		{"one trigger", []*actor.RigidBody{c}, 1},
		{"all triggers", []*actor.RigidBody{a, c}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := NewEvents()
			contacts := []Contact{{BodyA: a, BodyB: b}, {BodyA: b, BodyB: c}}
			kept := events.recordContacts(contacts, triggerSet(tt.triggers...))
			if len(kept) != tt.want {
				t.Errorf("kept %d contacts, want %d", len(kept), tt.want)
			}
			if len(events.currentActivePairs) != 2 {
				t.Errorf("recorded %d pairs, want 2", len(events.currentActivePairs))
			}
		})
	}
}

func TestEvents_Lifecycle(t *testing.T) {
	a, b, c := eventBodies(t)

	tests := []struct {
		name    string
		trigger func(*actor.RigidBody) bool
		enter   EventType
		stay    EventType
		exit    EventType
	}{
		{"collision", triggerSet(), CollisionEnter, CollisionStay, CollisionExit},
		{"trigger", triggerSet(c), TriggerEnter, TriggerStay, TriggerExit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := NewEvents()
			capture := subscribeAll(&events)
			other := a
			if tt.name == "collision" {
				other = b
			}
			contact := []Contact{{BodyA: other, BodyB: c}}

			steps := []struct {
				touching bool
				want     []EventType
			}{
				{true, []EventType{tt.enter}},
				{true, []EventType{tt.stay}},
				{false, []EventType{tt.exit}},
				{false, nil},
				{true, []EventType{tt.enter}},
			}
			for i, step := range steps {
				capture.reset()
				if step.touching {
					events.recordContacts(append([]Contact(nil), contact...), tt.trigger)
				}
				events.flush(tt.trigger)

				if capture.count() != len(step.want) {
					t.Fatalf("step %d: %d events, want %v", i, capture.count(), step.want)
				}
				for j, want := range step.want {
					got := capture.events[j]
					if got.Type != want {
						t.Errorf("step %d: event %v, want %v", i, got.Type, want)
					}
					if makePairKey(got.BodyA, got.BodyB) != makePairKey(other, c) {
						t.Errorf("step %d: event for the wrong bodies", i)
					}
				}
			}
		})
	}
}

func TestEvents_DuplicateContacts(t *testing.T) {
	events := NewEvents()
	capture := subscribeAll(&events)
	a, b, _ := eventBodies(t)

	// Several contacts, or several substeps, touching the same pair raise one event
	events.recordContacts([]Contact{{BodyA: a, BodyB: b}, {BodyA: b, BodyB: a}}, triggerSet())
	events.recordContacts([]Contact{{BodyA: a, BodyB: b}}, triggerSet())
	events.flush(triggerSet())

	if capture.count() != 1 || !capture.hasEventType(CollisionEnter) {
		t.Errorf("events = %v, want a single CollisionEnter", capture.events)
	}
}

func TestEvents_Forget(t *testing.T) {
	events := NewEvents()
	capture := subscribeAll(&events)
	a, b, c := eventBodies(t)

	events.recordContacts([]Contact{{BodyA: a, BodyB: b}, {BodyA: b, BodyB: c}}, triggerSet())
	events.flush(triggerSet())
	capture.reset()

	events.forget(a)
	events.flush(triggerSet())

	if capture.count() != 1 {
		t.Fatalf("events = %v, want one exit", capture.events)
	}
	if e := capture.events[0]; e.Type != CollisionExit || makePairKey(e.BodyA, e.BodyB) != makePairKey(b, c) {
		t.Errorf("event = %v, want CollisionExit for (b, c)", e)
	}
}

func TestEvents_Flush_ClearsBuffer(t *testing.T) {
	events := NewEvents()
	capture := subscribeAll(&events)
	a, b, _ := eventBodies(t)

	events.recordContacts([]Contact{{BodyA: a, BodyB: b}}, triggerSet())
	events.flush(triggerSet())
	if len(events.buffer) != 0 {
		t.Errorf("buffer holds %d events after flush", len(events.buffer))
	}
	if capture.count() != 1 {
		t.Errorf("delivered %d events, want 1", capture.count())
	}
}

func TestEvents_ZeroValue(t *testing.T) {
	var events Events
	a, b, _ := eventBodies(t)

	// No listeners: nothing to deliver, nothing to panic on
	events.recordContacts([]Contact{{BodyA: a, BodyB: b}}, triggerSet())
	events.flush(triggerSet())

	capture := subscribeAll(&events)
	events.flush(triggerSet())
	if !capture.hasEventType(CollisionExit) {
		t.Errorf("events = %v, want CollisionExit", capture.events)
	}
}

func TestEventType_String(t *testing.T) {
	if CollisionEnter.String() != "CollisionEnter" || TriggerExit.String() != "TriggerExit" {
		t.Errorf("unexpected names %q, %q", CollisionEnter.String(), TriggerExit.String())
	}
	if EventType(200).String() != "Unknown" {
		t.Errorf("EventType(200).String() = %q", EventType(200).String())
	}
}
