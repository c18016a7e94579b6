package crystal

import "fmt"

// On registers fn for event. Registering for "ready" after the application
// became ready also calls fn immediately, once, on the caller's goroutine;
// the registration is kept.
//
// "ready" and "error" listeners run on the initialization goroutine before
// the Ready future resolves. State, IsReady, Err and Resources already
// reflect the outcome there; a listener that blocks on Wait or Ready().Done()
// stalls until its context ends and must do so from its own goroutine.
func (a *App) On(event string, fn Listener) ListenerID {
	return a.register(event, fn, false, false)
}

// AddListener is an alias for On.
func (a *App) AddListener(event string, fn Listener) ListenerID { return a.On(event, fn) }

// Once registers fn for a single call. For "ready" after readiness fn is
// called immediately and nothing is kept.
func (a *App) Once(event string, fn Listener) ListenerID {
	return a.register(event, fn, true, false)
}

// PrependListener is On, but fn runs before listeners already registered.
func (a *App) PrependListener(event string, fn Listener) ListenerID {
	return a.register(event, fn, false, true)
}

// PrependOnceListener is Once, but fn runs before listeners already
// registered.
func (a *App) PrependOnceListener(event string, fn Listener) ListenerID {
	return a.register(event, fn, true, true)
}

// Off removes the listener registered as id. It reports whether one was
// removed.
func (a *App) Off(event string, id ListenerID) bool { return a.emitter.Off(event, id) }

// RemoveListener is an alias for Off.
func (a *App) RemoveListener(event string, id ListenerID) bool { return a.Off(event, id) }

// Emit calls the listeners for event with args and reports whether there
// were any. Emitting "error" with no listeners is not an error.
func (a *App) Emit(event string, args ...any) bool {
	fns := a.emitter.Take(event)
	a.dispatch(event, fns, args...)
	return len(fns) > 0
}

// ListenerCount returns the number of listeners for event.
func (a *App) ListenerCount(event string) int { return a.emitter.ListenerCount(event) }

// EventNames lists "ready" followed by every other event that has listeners.
func (a *App) EventNames() []string {
	out := []string{EventReady}
	for _, n := range a.emitter.Names() {
		if n != EventReady {
			out = append(out, n)
		}
	}
	return out
}

// register adds fn under the app lock so it cannot slip between the
// transition to ready and the firing of ready listeners.
func (a *App) register(event string, fn Listener, once, prepend bool) ListenerID {
	if fn == nil {
		return 0
	}
	a.mu.Lock()
	replay := event == EventReady && a.state == StateReady
	var id ListenerID
	if !(replay && once) {
		switch {
		case once && prepend:
			id = a.emitter.PrependOnce(event, fn)
		case once:
			id = a.emitter.Once(event, fn)
		case prepend:
			id = a.emitter.Prepend(event, fn)
		default:
			id = a.emitter.On(event, fn)
		}
	}
	a.mu.Unlock()
	if replay {
		a.dispatch(event, []Listener{fn})
	}
	return id
}

// dispatch calls fns in order. A panicking listener is logged and does not
// stop the others.
func (a *App) dispatch(event string, fns []Listener, args ...any) {
	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					a.log.Error().Str("event", event).Str("panic", fmt.Sprint(r)).Msg("listener panicked")
				}
			}()
			fn(args...)
		}()
	}
}
