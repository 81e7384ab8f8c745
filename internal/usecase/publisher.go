package usecase

import (
	"sync"
	"time"

	"FxSignals/internal/domain/models"
)

// Publisher holds the latest lifecycle snapshot and fans it out to subscribers.
// Publish never blocks: a subscriber that falls behind only keeps the newest snapshots.
type Publisher struct {
	mu      sync.RWMutex
	current models.State
	subs    map[uint64]chan models.State
	nextID  uint64
	closed  bool
}

// NewPublisher starts in the idle state.
func NewPublisher() *Publisher {
	return &Publisher{
		current: models.State{Phase: models.PhaseIdle, UpdatedAt: time.Now().UTC()},
		subs:    make(map[uint64]chan models.State),
	}
}

// Current returns the latest snapshot.
func (p *Publisher) Current() models.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Publish replaces the latest snapshot and notifies subscribers.
func (p *Publisher) Publish(s models.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = s
	for _, ch := range p.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// Full: drop the oldest queued snapshot to make room.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// Subscribe returns a channel receiving every snapshot published from now on and a
// func that ends the subscription and closes the channel.
func (p *Publisher) Subscribe(buffer int) (<-chan models.State, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan models.State, buffer)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if c, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close ends all subscriptions. Later Publish calls only update Current.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}

// VisibilityOf decides which panels to show. It looks at the phase only, plus
// whether a successful result carries metrics.
func VisibilityOf(s models.State) models.Visibility {
	v := models.Visibility{Form: true}
	switch s.Phase {
	case models.PhaseLoading:
		v.Loading = true
	case models.PhaseFailed:
		v.Error = true
	case models.PhaseSucceeded:
		v.Chart = true
		v.Metrics = true
		if s.View != nil {
			_, v.HasMetrics = s.View.Metrics()
		}
	}
	return v
}
