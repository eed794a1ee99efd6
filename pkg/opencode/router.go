package opencode

// Handler receives events of the type it was subscribed to.
type Handler interface {
	HandleEvent(ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event)

// HandleEvent calls f(ev).
func (f HandlerFunc) HandleEvent(ev Event) {
	f(ev)
}

// Router delivers events to the handlers subscribed to their type. Delivery is
// sequential and in arrival order; Router is meant to be driven by a single
// event stream goroutine.
type Router struct {
	handlers map[EventType][]Handler
}

// NewRouter creates a router with no subscriptions.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers h for events of type t.
func (r *Router) Subscribe(t EventType, h Handler) {
	r.handlers[t] = append(r.handlers[t], h)
}

// Dispatch delivers ev to its subscribers. Events nobody subscribed to are dropped.
func (r *Router) Dispatch(ev Event) {
	for _, h := range r.handlers[ev.Type()] {
		h.HandleEvent(ev)
	}
}

// Subscribed reports whether any handler listens for t.
func (r *Router) Subscribed(t EventType) bool {
	return len(r.handlers[t]) > 0
}
