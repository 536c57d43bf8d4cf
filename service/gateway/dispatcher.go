package gateway

// HandlerFunc processes one inbound frame on behalf of a connection. Errors
// returned here are answered with a direct error frame, never propagated.
type HandlerFunc func(c *Client, f *Frame) error

// Dispatcher maps event names to handlers. Registration happens once at
// server construction; lookups after that are read-only.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

func (d *Dispatcher) Register(event string, h HandlerFunc) {
	d.handlers[event] = h
}

func (d *Dispatcher) Get(event string) HandlerFunc {
	return d.handlers[event]
}
