package manager

import (
	"slices"
	"sync"
)

// MemoryPublisher keeps every event in order.
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
	return slices.Clone(p.events)
}

// Names returns the names of events published for the model whose key
// displays as modelID ("id" or "id:version"), in order.
func (p *MemoryPublisher) Names(modelID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.Model.String() == modelID {
			out = append(out, e.Name)
		}
	}
	return out
}
