package crystal

import "sync"

// Event is a lifecycle event for observers outside the listener API.
// Minimal and stable: name, phase and optional fields.
type Event struct {
	Name   string
	AppID  string
	Phase  string
	Fields map[string]any
}

// Lifecycle event names published to an EventPublisher.
const (
	EventPhaseStart    = "phase_start"
	EventPhaseDone     = "phase_done"
	EventPhaseFailed   = "phase_failed"
	EventResourceReady = "resource_ready"
	EventResourceFail  = "resource_failed"
	EventAppReady      = "app_ready"
	EventAppFailed     = "app_failed"
)

// EventPublisher receives lifecycle events. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the event names in publish order.
func (p *MemoryPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Name
	}
	return out
}
