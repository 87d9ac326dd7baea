package pipeline

import "sync"

// Event is a progress update pushed to connected browsers while a recording
// attempt runs.
type Event struct {
	// Phase is the pipeline phase: "recording", "processing", or "idle".
	Phase string `json:"phase"`

	// ElapsedSeconds and TotalSeconds describe capture progress. Both are
	// zero outside the recording phase.
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	TotalSeconds   float64 `json:"total_seconds"`
}

// Broadcaster fans Event values out to any number of subscribers. Publishing
// never blocks: subscribers that fall behind miss events rather than stalling
// the capture loop.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel together with
// a cancel function. Cancel must be called when the subscriber goes away;
// it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber whose buffer has room.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
