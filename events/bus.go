package events

import "sync"

// ConfigChanged is published after the stored node credentials were
// modified. The connection manager rebuilds its connection on every one of
// these.
type ConfigChanged struct{}

// Bus is a process-wide broadcast channel for configuration changes.
// Subscribers get their own buffered channel and must unsubscribe when they
// are done with it.
type Bus struct {
	mtx   sync.Mutex
	subs  map[uint64]chan ConfigChanged
	index uint64
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[uint64]chan ConfigChanged),
	}
}

type Subscription struct {
	C      <-chan ConfigChanged
	cancel func()
}

func (s *Subscription) Unsubscribe() {
	s.cancel()
}

func (b *Bus) Subscribe() *Subscription {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	id := b.index
	b.index++
	c := make(chan ConfigChanged, 8)
	b.subs[id] = c

	return &Subscription{
		C: c,
		cancel: func() {
			b.mtx.Lock()
			defer b.mtx.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		},
	}
}

// Publish delivers the event to every current subscriber. A subscriber that
// stopped draining its channel loses events rather than blocking the
// publisher.
func (b *Bus) Publish(e ConfigChanged) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	for _, c := range b.subs {
		select {
		case c <- e:
		default:
		}
	}
}
