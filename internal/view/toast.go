package view

import (
	"sync"
	"time"
)

// ToastKind is the severity of a toast
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is a transient notification
type Toast struct {
	Kind    ToastKind
	Message string
}

// Notifier shows one toast at a time and clears it after a fixed duration
type Notifier struct {
	mu       sync.Mutex
	duration time.Duration
	current  *Toast
	timer    *time.Timer
	seq      uint64
}

// NewNotifier creates a notifier clearing toasts after d
func NewNotifier(d time.Duration) *Notifier {
	if d <= 0 {
		d = 5 * time.Second
	}
	return &Notifier{duration: d}
}

// Show replaces the current toast and restarts the clear timer
func (n *Notifier) Show(kind ToastKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = &Toast{Kind: kind, Message: message}
	n.timer = time.AfterFunc(n.duration, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.seq == seq {
			n.current = nil
		}
	})
}

// Current returns the visible toast
func (n *Notifier) Current() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Toast{}, false
	}
	return *n.current, true
}

// Dismiss clears the toast immediately
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	n.current = nil
}
