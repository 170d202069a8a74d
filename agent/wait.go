package agent

import (
	"context"
	"time"
)

const (
	readySignal    = "ready"
	idleSignal     = "idle"
	exitedSignal   = "exited"
	releasedSignal = "released"
	messageSignal  = "message"
	timeoutSignal  = "timeout"
)

// waiterSet maps an agent name to the channels currently waiting on it.
type waiterSet map[string][]chan string

// register adds ch under name. Caller must hold r.mu.
func (w waiterSet) register(name string, ch chan string) {
	w[name] = append(w[name], ch)
}

// remove drops ch from name's waiter list. Caller must hold r.mu.
func (w waiterSet) remove(name string, ch chan string) {
	list := w[name]
	for i, c := range list {
		if c == ch {
			w[name] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// resolveWaiters delivers signal to every waiter registered for name and
// clears them. Each channel is buffered, so delivery never blocks.
func (r *Relay) resolveWaiters(w waiterSet, name, signal string) {
	r.mu.Lock()
	list := w[name]
	delete(w, name)
	r.mu.Unlock()
	for _, ch := range list {
		ch <- signal
	}
}

// waitFor blocks on a freshly registered waiter channel until a signal
// arrives, timeoutMs elapses (0 means wait forever), or ctx is done. The
// alreadySignal check and registration happen under the same lock
// acquisition, so an event that fires between the caller's intent to
// wait and the registration can never be missed.
func (r *Relay) waitFor(ctx context.Context, w waiterSet, name string, alreadySignal func() (string, bool), timeoutMs int) (string, error) {
	r.mu.Lock()
	if sig, done := alreadySignal(); done {
		r.mu.Unlock()
		return sig, nil
	}
	ch := make(chan string, 1)
	w.register(name, ch)
	r.mu.Unlock()

	var timeout <-chan time.Time
	if timeoutMs > 0 {
		t := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case sig := <-ch:
		return sig, nil
	case <-timeout:
		r.mu.Lock()
		w.remove(name, ch)
		r.mu.Unlock()
		return timeoutSignal, nil
	case <-ctx.Done():
		r.mu.Lock()
		w.remove(name, ch)
		r.mu.Unlock()
		return "", ctx.Err()
	}
}

// waitForReady blocks until name reports worker_ready, has already
// exited, or the wait times out.
func (r *Relay) waitForReady(ctx context.Context, name string, timeoutMs int) (string, error) {
	return r.waitFor(ctx, r.readyWaiters, name, func() (string, bool) {
		if r.exited[name] {
			return exitedSignal, true
		}
		if r.ready[name] {
			return readySignal, true
		}
		return "", false
	}, timeoutMs)
}

// waitForMessage blocks until name sends its first relay message (the
// event's From equals name), name exits or has already exited, or the
// wait times out.
func (r *Relay) waitForMessage(ctx context.Context, name string, timeoutMs int) (string, error) {
	return r.waitFor(ctx, r.messageWaiters, name, func() (string, bool) {
		if r.exited[name] {
			return exitedSignal, true
		}
		if r.messageReady[name] {
			return messageSignal, true
		}
		return "", false
	}, timeoutMs)
}

func (r *Relay) waitForIdle(name string, timeoutMs int) (string, error) {
	return r.waitFor(context.Background(), r.idleWaiters, name, func() (string, bool) {
		if r.exited[name] {
			return exitedSignal, true
		}
		if r.idle[name] {
			return idleSignal, true
		}
		return "", false
	}, timeoutMs)
}

func (r *Relay) waitForExit(name string, timeoutMs int) (string, error) {
	return r.waitFor(context.Background(), r.exitWaiters, name, func() (string, bool) {
		if r.exited[name] {
			return exitedSignal, true
		}
		return "", false
	}, timeoutMs)
}

// WaitForAny blocks until the first of agents exits (or is released), or
// the wait times out, and returns the name of the agent that resolved
// first, or "" on timeout.
func (r *Relay) WaitForAny(ctx context.Context, agents []*Agent, timeoutMs int) (string, error) {
	type result struct {
		name string
		sig  string
		err  error
	}
	resCh := make(chan result, len(agents))
	childCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, a := range agents {
		go func(a *Agent) {
			sig, err := r.waitForExit2(childCtx, a.Name(), timeoutMs)
			resCh <- result{name: a.Name(), sig: sig, err: err}
		}(a)
	}

	for range agents {
		res := <-resCh
		if res.err != nil {
			continue
		}
		if res.sig == exitedSignal || res.sig == releasedSignal {
			return res.name, nil
		}
	}
	return "", nil
}

// waitForExit2 is waitForExit with a cancellable context, used by
// WaitForAny to stop sibling waits once one resolves.
func (r *Relay) waitForExit2(ctx context.Context, name string, timeoutMs int) (string, error) {
	return r.waitFor(ctx, r.exitWaiters, name, func() (string, bool) {
		if r.exited[name] {
			return exitedSignal, true
		}
		return "", false
	}, timeoutMs)
}

// statusOf derives name's lifecycle status from the relay's disjoint
// state sets: exited takes priority over idle over ready over spawning.
func (r *Relay) statusOf(name string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exited[name] {
		return StatusExited
	}
	if r.idle[name] {
		return StatusIdle
	}
	if r.ready[name] {
		return StatusReady
	}
	return StatusSpawning
}

// onOutput registers an output listener scoped to a single agent name.
func (r *Relay) onOutput(name string, fn func(WorkerOutput)) func() {
	r.mu.Lock()
	id := r.nextOutputID
	r.nextOutputID++
	r.outputListeners[name] = append(r.outputListeners[name], outputListener{id: id, fn: fn})
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		list := r.outputListeners[name]
		for i, l := range list {
			if l.id == id {
				r.outputListeners[name] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}
