package ws

import (
	"context"
	"sync"
)

const feedBuffer = 64

// MemoryFeed fans changes out to in-process subscribers. Slow subscribers
// drop changes rather than block publishers.
type MemoryFeed struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[chan Change]struct{})}
}

func (f *MemoryFeed) Publish(_ context.Context, change Change) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.subs {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, feedBuffer)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, ch)
		close(ch)
		f.mu.Unlock()
	}()

	return ch, nil
}
