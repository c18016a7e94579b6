// Package events is a small named-event emitter. Listeners run synchronously
// on the emitting goroutine, in registration order (prepended listeners
// first). Emitting an event nobody listens to is a no-op.
package events

import (
	"sort"
	"sync"
)

// Listener receives the arguments passed to Emit.
type Listener func(args ...any)

// ListenerID identifies a registration so it can be removed later.
type ListenerID uint64

type entry struct {
	id   ListenerID
	fn   Listener
	once bool
}

// Emitter is safe for concurrent use. The zero value is ready to use.
type Emitter struct {
	mu        sync.Mutex
	next      ListenerID
	listeners map[string][]entry
}

func (e *Emitter) add(name string, fn Listener, once, prepend bool) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]entry)
	}
	e.next++
	en := entry{id: e.next, fn: fn, once: once}
	if prepend {
		e.listeners[name] = append([]entry{en}, e.listeners[name]...)
	} else {
		e.listeners[name] = append(e.listeners[name], en)
	}
	return en.id
}

// On appends a persistent listener.
func (e *Emitter) On(name string, fn Listener) ListenerID { return e.add(name, fn, false, false) }

// Once appends a listener that is removed after its first call.
func (e *Emitter) Once(name string, fn Listener) ListenerID { return e.add(name, fn, true, false) }

// Prepend puts a persistent listener at the front.
func (e *Emitter) Prepend(name string, fn Listener) ListenerID { return e.add(name, fn, false, true) }

// PrependOnce puts a one-shot listener at the front.
func (e *Emitter) PrependOnce(name string, fn Listener) ListenerID {
	return e.add(name, fn, true, true)
}

// Off removes the listener registered as id under name. It reports whether
// anything was removed.
func (e *Emitter) Off(name string, id ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[name]
	for i := range ls {
		if ls[i].id == id {
			e.listeners[name] = append(ls[:i:i], ls[i+1:]...)
			if len(e.listeners[name]) == 0 {
				delete(e.listeners, name)
			}
			return true
		}
	}
	return false
}

// Take returns the listeners for name in call order and drops the one-shot
// ones from the set, exactly as Emit would. Callers that need to fire
// outside their own lock use Take followed by Call.
func (e *Emitter) Take(name string) []Listener {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[name]
	if len(ls) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(ls))
	kept := ls[:0:0]
	for _, en := range ls {
		out = append(out, en.fn)
		if !en.once {
			kept = append(kept, en)
		}
	}
	if len(kept) == 0 {
		delete(e.listeners, name)
	} else {
		e.listeners[name] = kept
	}
	return out
}

// Call invokes fns with args in order.
func Call(fns []Listener, args ...any) {
	for _, fn := range fns {
		fn(args...)
	}
}

// Emit calls every listener for name and reports whether there was any.
func (e *Emitter) Emit(name string, args ...any) bool {
	fns := e.Take(name)
	Call(fns, args...)
	return len(fns) > 0
}

// ListenerCount returns how many listeners are registered for name.
func (e *Emitter) ListenerCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[name])
}

// Names returns the event names that currently have listeners, sorted.
func (e *Emitter) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.listeners))
	for k := range e.listeners {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
