package scene

import "github.com/Versifine/stride/internal/event"

type queuedEvent struct {
	name string
	evt  any
}

// eventQueue collects events raised by controllers during fixed steps. The
// scene publishes them on its bus once the scene lock is released, so
// handlers may call back into the scene.
type eventQueue struct {
	pending []queuedEvent
}

func (q *eventQueue) Publish(name string, evt any) {
	q.pending = append(q.pending, queuedEvent{name: name, evt: evt})
}

func (q *eventQueue) drain() []queuedEvent {
	out := q.pending
	q.pending = nil
	return out
}

func flush(bus *event.Bus, events []queuedEvent) {
	for _, e := range events {
		bus.Publish(e.name, e.evt)
	}
}
