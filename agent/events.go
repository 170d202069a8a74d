package agent

import (
	"encoding/json"

	relay "github.com/agent-relay/relay-go"
)

// WorkerOutput is a chunk of an agent's captured stdio, carried by
// worker_stream and worker_error events.
type WorkerOutput struct {
	Name   string
	Stream string
	Chunk  string
}

// AgentIdle describes an agent_idle event.
type AgentIdle struct {
	Name      string
	IdleSecs  float64
	Automatic bool
}

type outputListener struct {
	id int
	fn func(WorkerOutput)
}

// handleEvent is the single entry point through which every broker event
// mutates the facade's derived state and fans out to the registered
// hooks. It runs synchronously on the client's event-dispatch goroutine,
// so mutation under r.mu must stay fast; hooks are invoked after the
// lock is released.
func (r *Relay) handleEvent(ev relay.Event) {
	switch ev.Kind {
	case relay.EventAgentSpawned:
		r.onSpawned(ev)
	case relay.EventWorkerReady:
		r.onReady(ev)
	case relay.EventWorkerError:
		r.onWorkerChunk(ev, true)
	case relay.EventWorkerStream:
		r.onWorkerChunk(ev, false)
	case relay.EventAgentIdle:
		r.onIdle(ev)
	case relay.EventAgentExit:
		r.onExitRequested(ev)
	case relay.EventAgentExited:
		r.onExited(ev)
	case relay.EventAgentReleased:
		r.onReleased(ev)
	case relay.EventRelayInbound:
		r.onInbound(ev)
	case relay.EventAgentRestarting, relay.EventAgentRestarted, relay.EventAgentPermanentlyDead:
		r.invokeLifecycle(ev)
	}

	if ev.IsDelivery() {
		r.invokeDeliveryUpdate(ev)
	}
}

func (r *Relay) ensureAgentLocked(name string) *Agent {
	a, ok := r.agents[name]
	if !ok {
		a = &Agent{relay: r, name: name}
		r.agents[name] = a
	}
	return a
}

func (r *Relay) onSpawned(ev relay.Event) {
	r.mu.Lock()
	a := r.ensureAgentLocked(ev.Name)
	a.mu.Lock()
	if runtime, ok := ev.Data["runtime"].(string); ok {
		a.runtime = relay.AgentRuntime(runtime)
	}
	if chans, ok := ev.Data["channels"].([]any); ok {
		a.channels = a.channels[:0]
		for _, c := range chans {
			if s, ok := c.(string); ok {
				a.channels = append(a.channels, s)
			}
		}
	}
	a.mu.Unlock()
	delete(r.ready, ev.Name)
	delete(r.messageReady, ev.Name)
	delete(r.exited, ev.Name)
	delete(r.idle, ev.Name)
	r.mu.Unlock()

	r.invoke(func() {
		if r.OnAgentSpawned != nil {
			r.OnAgentSpawned(a)
		}
	})
}

func (r *Relay) onReady(ev relay.Event) {
	r.mu.Lock()
	a := r.ensureAgentLocked(ev.Name)
	r.ready[ev.Name] = true
	delete(r.exited, ev.Name)
	delete(r.idle, ev.Name)
	r.mu.Unlock()

	r.resolveWaiters(r.readyWaiters, ev.Name, readySignal)
	r.invoke(func() {
		if r.OnAgentReady != nil {
			r.OnAgentReady(a)
		}
	})
}

func (r *Relay) onWorkerChunk(ev relay.Event, isError bool) {
	chunk := WorkerOutput{Name: ev.Name}
	if stream, ok := ev.Data["stream"].(string); ok {
		chunk.Stream = stream
	}
	if text, ok := ev.Data["chunk"].(string); ok {
		chunk.Chunk = text
	} else if text, ok := ev.Data["text"].(string); ok {
		chunk.Chunk = text
	}

	r.mu.Lock()
	if !isError {
		delete(r.idle, ev.Name)
	}
	listeners := append([]outputListener{}, r.outputListeners[ev.Name]...)
	r.mu.Unlock()

	r.invoke(func() {
		for _, l := range listeners {
			l.fn(chunk)
		}
		if isError && r.OnWorkerError != nil {
			r.OnWorkerError(chunk)
		} else if !isError && r.OnWorkerOutput != nil {
			r.OnWorkerOutput(chunk)
		}
	})
}

func (r *Relay) onIdle(ev relay.Event) {
	idle := AgentIdle{Name: ev.Name}
	if secs, ok := ev.Data["idle_secs"].(float64); ok {
		idle.IdleSecs = secs
	}
	if auto, ok := ev.Data["automatic"].(bool); ok {
		idle.Automatic = auto
	}

	r.mu.Lock()
	r.ensureAgentLocked(ev.Name)
	r.idle[ev.Name] = true
	r.mu.Unlock()

	r.resolveWaiters(r.idleWaiters, ev.Name, idleSignal)
	r.invoke(func() {
		if r.OnAgentIdle != nil {
			r.OnAgentIdle(idle)
		}
	})
}

// onExitRequested handles agent_exit: the broker is asking the agent to
// exit, but it is not dead yet. Only the exit reason is recorded on the
// handle; none of the derived state sets change and the handle is not
// dropped, unlike agent_exited.
func (r *Relay) onExitRequested(ev relay.Event) {
	r.mu.Lock()
	a := r.ensureAgentLocked(ev.Name)
	a.mu.Lock()
	if reason, ok := ev.Data["reason"].(string); ok {
		a.exitReason = reason
	}
	a.mu.Unlock()
	r.mu.Unlock()

	r.invoke(func() {
		if r.OnAgentExitRequested != nil {
			r.OnAgentExitRequested(ev.Data)
		}
	})
}

func (r *Relay) onExited(ev relay.Event) {
	r.mu.Lock()
	a := r.ensureAgentLocked(ev.Name)
	a.mu.Lock()
	if code, ok := ev.Data["exit_code"].(float64); ok {
		c := int(code)
		a.exitCode = &c
	}
	if sig, ok := ev.Data["signal"].(string); ok {
		a.exitSignal = &sig
	}
	if reason, ok := ev.Data["reason"].(string); ok {
		a.exitReason = reason
	}
	a.mu.Unlock()
	r.exited[ev.Name] = true
	delete(r.ready, ev.Name)
	delete(r.idle, ev.Name)
	delete(r.messageReady, ev.Name)
	delete(r.agents, ev.Name)
	delete(r.outputListeners, ev.Name)
	r.mu.Unlock()

	r.resolveWaiters(r.exitWaiters, ev.Name, exitedSignal)
	r.resolveWaiters(r.idleWaiters, ev.Name, exitedSignal)
	r.resolveWaiters(r.messageWaiters, ev.Name, exitedSignal)
	r.invoke(func() {
		if r.OnAgentExited != nil {
			r.OnAgentExited(a)
		}
	})
}

func (r *Relay) onReleased(ev relay.Event) {
	r.mu.Lock()
	a := r.ensureAgentLocked(ev.Name)
	r.exited[ev.Name] = true
	delete(r.ready, ev.Name)
	delete(r.idle, ev.Name)
	delete(r.messageReady, ev.Name)
	delete(r.agents, ev.Name)
	delete(r.outputListeners, ev.Name)
	r.mu.Unlock()

	r.resolveWaiters(r.exitWaiters, ev.Name, releasedSignal)
	r.resolveWaiters(r.idleWaiters, ev.Name, exitedSignal)
	r.resolveWaiters(r.messageWaiters, ev.Name, exitedSignal)
	r.invoke(func() {
		if r.OnAgentReleased != nil {
			r.OnAgentReleased(a)
		}
	})
}

// onInbound handles relay_inbound: a message is known if its From names
// an agent already tracked by the facade. Per the wait_for_agent_message
// contract, the state mutation and the waiter it resolves key on the
// sender (From), not the recipient — this event marks that From has
// sent at least one message, not that To has received one.
func (r *Relay) onInbound(ev relay.Event) {
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	var msg relay.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	r.mu.Lock()
	_, known := r.agents[msg.From]
	if known {
		r.messageReady[msg.From] = true
		delete(r.exited, msg.From)
	}
	r.mu.Unlock()

	if known {
		r.resolveWaiters(r.messageWaiters, msg.From, messageSignal)
	}
	r.invoke(func() {
		if r.OnMessageReceived != nil {
			r.OnMessageReceived(msg)
		}
	})
}

func (r *Relay) invokeLifecycle(ev relay.Event) {
	r.invoke(func() {
		if r.OnAgentLifecycle != nil {
			r.OnAgentLifecycle(ev.Kind, ev.Name, ev.Data)
		}
	})
}

func (r *Relay) invokeDeliveryUpdate(ev relay.Event) {
	r.invoke(func() {
		if r.OnDeliveryUpdate != nil {
			r.OnDeliveryUpdate(ev)
		}
	})
}

// invoke recovers from a panicking hook so one misbehaving callback
// cannot take down the event-dispatch goroutine.
func (r *Relay) invoke(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn().Interface("panic", rec).Msg("relay hook panicked")
		}
	}()
	fn()
}
