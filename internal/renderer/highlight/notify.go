package highlight

import (
	"sync"

	"github.com/dshills/hlsync/internal/logging"
)

// Observer is called with the new revision after it changes.
type Observer func(revision uint64)

// observers manages revision subscriptions.
type observers struct {
	mu     sync.RWMutex
	byID   map[uint64]Observer
	nextID uint64
}

// subscribe registers o and returns its unsubscribe function.
func (n *observers) subscribe(o Observer) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.byID == nil {
		n.byID = make(map[uint64]Observer)
	}
	id := n.nextID
	n.nextID++
	n.byID[id] = o

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.byID, id)
		})
	}
}

// notify calls every observer synchronously. Observers may subscribe,
// unsubscribe or call back into the session. A panicking observer is logged
// and does not stop the others.
func (n *observers) notify(revision uint64, log Logger) {
	n.mu.RLock()
	list := make([]Observer, 0, len(n.byID))
	for _, o := range n.byID {
		list = append(list, o)
	}
	n.mu.RUnlock()

	for _, o := range list {
		call(o, revision, log)
	}
}

func call(o Observer, revision uint64, log Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("revision observer panicked",
				logging.FieldRevision, revision, logging.FieldError, r)
		}
	}()
	o(revision)
}

// clear removes every observer.
func (n *observers) clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.byID = nil
}

// len returns the number of observers.
func (n *observers) len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.byID)
}
