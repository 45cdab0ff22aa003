// Package notify is the process-wide popup channel: one message slot,
// last write wins, no queue.
package notify

import "sync"

// Notifier holds the single in-flight popup message. A second Show before
// the first is dismissed silently overwrites it; several flows rely on a
// later popup superseding an earlier one.
type Notifier struct {
	mu        sync.Mutex
	message   string
	visible   bool
	listeners map[int]func(message string, visible bool)
	nextID    int
}

func New() *Notifier {
	return &Notifier{listeners: make(map[int]func(string, bool))}
}

// Show replaces the current message and makes the popup visible.
func (n *Notifier) Show(message string) {
	n.mu.Lock()
	n.message = message
	n.visible = true
	ls := n.snapshot()
	n.mu.Unlock()

	for _, l := range ls {
		l(message, true)
	}
}

// Hide clears visibility. The message is retained until overwritten.
func (n *Notifier) Hide() {
	n.mu.Lock()
	n.visible = false
	msg := n.message
	ls := n.snapshot()
	n.mu.Unlock()

	for _, l := range ls {
		l(msg, false)
	}
}

func (n *Notifier) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

func (n *Notifier) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible
}

// Subscribe registers a listener and returns its teardown func.
func (n *Notifier) Subscribe(fn func(message string, visible bool)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

func (n *Notifier) snapshot() []func(string, bool) {
	ls := make([]func(string, bool), 0, len(n.listeners))
	for _, l := range n.listeners {
		ls = append(ls, l)
	}
	return ls
}
