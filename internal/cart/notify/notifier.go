package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a message stays visible before it fades.
const DefaultDuration = 1800 * time.Millisecond

// Overlay is the surface a message is shown on.
type Overlay interface {
	Show(message string)
	Hide()
}

// Timer is the subset of *time.Timer the notifier relies on.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through a small adapter.
type AfterFunc func(d time.Duration, f func()) Timer

// Notifier shows one message at a time on a lazily created overlay. A new
// message preempts the previous one and restarts the fade countdown.
type Notifier struct {
	mu         sync.Mutex
	newOverlay func() Overlay
	overlay    Overlay
	timer      Timer
	duration   time.Duration
	afterFunc  AfterFunc
	generation uint64
}

type Option func(*Notifier)

func WithDuration(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.duration = d
		}
	}
}

func WithAfterFunc(f AfterFunc) Option {
	return func(n *Notifier) {
		if f != nil {
			n.afterFunc = f
		}
	}
}

// New returns a notifier that creates its overlay with newOverlay on first use.
func New(newOverlay func() Overlay, opts ...Option) *Notifier {
	n := &Notifier{
		newOverlay: newOverlay,
		duration:   DefaultDuration,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show displays message and schedules it to fade after the configured duration.
func (n *Notifier) Show(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.overlay == nil {
		if n.newOverlay == nil {
			return
		}
		n.overlay = n.newOverlay()
		if n.overlay == nil {
			return
		}
	}

	n.overlay.Show(message)

	if n.timer != nil {
		n.timer.Stop()
	}
	n.generation++
	generation := n.generation
	n.timer = n.afterFunc(n.duration, func() {
		n.fade(generation)
	})
}

// fade hides the overlay unless a newer message was shown since the timer
// was scheduled. Stop cannot recall a callback that already started.
func (n *Notifier) fade(generation uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if generation != n.generation || n.overlay == nil {
		return
	}
	n.overlay.Hide()
	n.timer = nil
}

// Dispose cancels a pending fade.
func (n *Notifier) Dispose() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.generation++
}
