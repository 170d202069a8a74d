// Package agent implements the relay facade (C5): a stateful layer over
// the protocol client that materializes agent handles, derives per-agent
// lifecycle status from the client's event stream, and exposes
// wait-for-condition primitives with timeouts.
package agent

import (
	"sync"

	relay "github.com/agent-relay/relay-go"
)

// Status is an agent handle's derived lifecycle state.
type Status string

const (
	StatusSpawning Status = "spawning"
	StatusReady    Status = "ready"
	StatusIdle     Status = "idle"
	StatusExited   Status = "exited"
)

// Agent is the facade's view of a named agent. Its Status is derived,
// never stored directly — it is always recomputed from the owning
// Relay's state sets so it can never drift out of sync with the event
// stream that produced it.
type Agent struct {
	relay *Relay

	mu         sync.Mutex
	name       string
	runtime    relay.AgentRuntime
	channels   []string
	exitCode   *int
	exitSignal *string
	exitReason string
}

// Name returns the agent's unique name.
func (a *Agent) Name() string { return a.name }

// Runtime returns the agent's runtime tag.
func (a *Agent) Runtime() relay.AgentRuntime {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runtime
}

// Channels returns the channels the agent has joined.
func (a *Agent) Channels() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.channels...)
}

// ExitCode returns the agent's last-known exit code, or nil if it has not
// exited (or the broker did not report one).
func (a *Agent) ExitCode() *int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exitCode
}

// Status computes the agent's derived lifecycle status from the owning
// Relay's state sets: exited > idle > ready > spawning.
func (a *Agent) Status() Status {
	return a.relay.statusOf(a.name)
}

// Send sends text to this agent specifically (to = agent name).
func (a *Agent) Send(text string) (relay.Message, error) {
	return a.relay.sendTo(a.name, text)
}

// WaitForExit blocks until the agent exits or is released, or timeoutMs
// elapses (0 means wait forever). Returns a discriminated
// outcome rather than erroring, because exit/release are expected
// lifecycle events: "exited", "released", or "timeout".
func (a *Agent) WaitForExit(timeoutMs int) (string, error) {
	return a.relay.waitForExit(a.name, timeoutMs)
}

// WaitForIdle blocks until the agent reports idle, exits, or timeoutMs
// elapses (0 means wait forever). Returns "idle", "exited", or "timeout".
func (a *Agent) WaitForIdle(timeoutMs int) (string, error) {
	return a.relay.waitForIdle(a.name, timeoutMs)
}

// OnOutput registers a listener for worker_stream and worker_error chunks
// from this agent. Returns an unsubscribe function.
func (a *Agent) OnOutput(fn func(WorkerOutput)) func() {
	return a.relay.onOutput(a.name, fn)
}
