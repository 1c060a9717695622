// Package notify broadcasts state changes of the feed and session services
// to observers.
//
// Events are queued without blocking the publisher and delivered by a single
// dispatch goroutine, so observers never run concurrently with each other
// and, within a topic, see events in the order they were published.
package notify

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

// Topic names a channel of events.
type Topic string

const (
	FeedChanged   Topic = "feed_changed"
	AvatarChanged Topic = "avatar_changed"
	SessionEnded  Topic = "session_ended"
)

// Event is a single published change. URL is set for AvatarChanged.
type Event struct {
	Topic Topic
	URL   string
}

// Observer receives events on the dispatch goroutine.
type Observer func(Event)

// Subscription is returned by Subscribe and ends delivery when canceled.
type Subscription struct {
	n     *Notifier
	topic Topic
	id    uint64
}

// Cancel stops delivery to the observer. It is safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil || s.n == nil {
		return
	}
	s.n.unsubscribe(s.topic, s.id)
}

// delivery is a queued event together with the observers registered when it
// was published.
type delivery struct {
	ev      Event
	targets []Observer
}

// Notifier fans events out to observers. Observers must not call Close: it
// waits for the dispatch goroutine they run on.
type Notifier struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []delivery
	observers map[Topic]map[uint64]Observer
	nextID    uint64
	closed    bool
	done      chan struct{}
}

// New creates a Notifier and starts its dispatch goroutine.
func New() *Notifier {
	n := &Notifier{
		observers: make(map[Topic]map[uint64]Observer),
		done:      make(chan struct{}),
	}
	n.cond = sync.NewCond(&n.mu)
	go n.dispatch()
	return n
}

// Subscribe registers fn for events on topic.
func (n *Notifier) Subscribe(topic Topic, fn Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	if n.observers[topic] == nil {
		n.observers[topic] = make(map[uint64]Observer)
	}
	n.observers[topic][n.nextID] = fn
	return &Subscription{n: n, topic: topic, id: n.nextID}
}

func (n *Notifier) unsubscribe(topic Topic, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers[topic], id)
}

// Publish queues ev for delivery to the observers registered at the time of
// the call and returns immediately. Events published after Close are dropped.
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		log.Debug().Str("topic", string(ev.Topic)).Msg("Dropping event published after close")
		return
	}
	n.queue = append(n.queue, delivery{ev: ev, targets: n.targetsLocked(ev.Topic)})
	n.cond.Signal()
}

// targetsLocked returns the observers of topic in subscription order.
func (n *Notifier) targetsLocked(topic Topic) []Observer {
	subs := n.observers[topic]
	ids := make([]uint64, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	targets := make([]Observer, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, subs[id])
	}
	return targets
}

// Close delivers the events already queued, then stops the dispatch goroutine.
// It is safe to call more than once, but never from an observer.
func (n *Notifier) Close() {
	n.mu.Lock()
	n.closed = true
	n.cond.Signal()
	n.mu.Unlock()
	<-n.done
}

func (n *Notifier) dispatch() {
	defer close(n.done)
	for {
		n.mu.Lock()
		for len(n.queue) == 0 && !n.closed {
			n.cond.Wait()
		}
		if len(n.queue) == 0 && n.closed {
			n.mu.Unlock()
			return
		}
		d := n.queue[0]
		n.queue[0] = delivery{}
		n.queue = n.queue[1:]
		n.mu.Unlock()

		for _, fn := range d.targets {
			deliver(fn, d.ev)
		}
	}
}

// deliver runs one observer; a panicking observer does not stop the dispatcher.
func deliver(fn Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("topic", string(ev.Topic)).Msg("Observer panicked")
		}
	}()
	fn(ev)
}
