package service

import (
	"sync"

	"github.com/RajeshPuri/VaultFlow/internal/ws"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	UserID string
	Event  ws.Event
}

func (p *recordingPublisher) Publish(userID string, ev ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Event: ev})
}

func (p *recordingPublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) byType(t ws.EventType) []publishedEvent {
	var out []publishedEvent
	for _, ev := range p.all() {
		if ev.Event.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
