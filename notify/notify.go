// Package notify is the runtime support of the change-notification code
// generated by dlgen.
//
// A struct opts in to generated accessors by embedding Notifier and marking
// its unexported fields with the AutoNotify directive:
//
//	type Counter struct {
//		notify.Notifier
//
//		//dl:AutoNotify
//		value int
//	}
//
// dlgen then adds Value and SetValue methods to Counter in a separate file of
// the same package. SetValue raises PropertyChanged only when the stored
// value actually changes.
package notify

import "sync"

// PropertyChangedEvent describes a change of one generated property.
type PropertyChangedEvent struct {
	// Sender is the value whose property changed.
	Sender any
	// PropertyName is the name of the generated accessor, e.g. "Value".
	PropertyName string
}

// Handler receives PropertyChanged events.
type Handler func(PropertyChangedEvent)

// PropertyChangedNotifier is implemented by every type with generated
// change-notification accessors.
type PropertyChangedNotifier interface {
	OnPropertyChanged(h Handler) (cancel func())
}

type subscription struct {
	id uint64
	h  Handler
}

// Notifier stores the PropertyChanged subscribers of the struct embedding it.
// The zero value is ready to use. A Notifier must not be copied after first use.
type Notifier struct {
	mu     sync.Mutex
	subs   []subscription
	nextID uint64
}

// OnPropertyChanged subscribes h and returns a function that removes the
// subscription. Calling cancel more than once is a no-op.
func (n *Notifier) OnPropertyChanged(h Handler) (cancel func()) {
	if h == nil {
		return func() {}
	}
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, h: h})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// RaisePropertyChanged delivers a PropertyChangedEvent to the current
// subscribers in subscription order. Handlers run on the caller's goroutine
// and may subscribe or cancel without deadlocking.
func (n *Notifier) RaisePropertyChanged(sender any, propertyName string) {
	n.mu.Lock()
	if len(n.subs) == 0 {
		n.mu.Unlock()
		return
	}
	subs := append([]subscription(nil), n.subs...)
	n.mu.Unlock()

	ev := PropertyChangedEvent{Sender: sender, PropertyName: propertyName}
	for _, s := range subs {
		s.h(ev)
	}
}

// Subscribers reports the number of active subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
