// Package notify keeps the single transient status message shown to the
// user. Each message lives for a fixed TTL; a newer message replaces the
// current one and restarts the countdown.
package notify

import (
	"sync"
	"time"
)

// Kind is the banner style. Info banners report progress of a pending
// operation and share the single slot with outcomes.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultTTL is how long a status message stays visible.
const DefaultTTL = 5 * time.Second

type Message struct {
	Kind      Kind
	Text      string
	At        time.Time
	ExpiresAt time.Time
}

type Timer interface {
	Stop() bool
}

// Clock is the time source of a Notifier. Tests substitute a manual one.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Notifier struct {
	clock Clock
	ttl   time.Duration

	mu       sync.Mutex
	current  *Message
	timer    Timer
	gen      uint64
	onChange func(m *Message)
}

// New returns a Notifier with the given TTL. A nil clock means wall time.
func New(ttl time.Duration, clock Clock) *Notifier {
	if clock == nil {
		clock = realClock{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{clock: clock, ttl: ttl}
}

// OnChange registers fn to be called after every change, with nil when the
// message is cleared. fn runs without the Notifier lock held.
func (n *Notifier) OnChange(fn func(m *Message)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Set replaces the current message and restarts the countdown.
func (n *Notifier) Set(kind Kind, text string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	now := n.clock.Now()
	m := &Message{Kind: kind, Text: text, At: now, ExpiresAt: now.Add(n.ttl)}
	n.current = m
	n.timer = n.clock.AfterFunc(n.ttl, func() { n.expire(gen) })
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		c := *m
		fn(&c)
	}
}

// expire clears the message set in generation gen. A timer that fires after
// being superseded finds a newer generation and does nothing.
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || n.current == nil {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(nil)
	}
}

// Clear drops the current message immediately.
func (n *Notifier) Clear() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	had := n.current != nil
	n.current = nil
	fn := n.onChange
	n.mu.Unlock()

	if had && fn != nil {
		fn(nil)
	}
}

func (n *Notifier) Current() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Message{}, false
	}
	return *n.current, true
}
