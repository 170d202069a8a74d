package agent

import (
	"context"
	"sync"

	relay "github.com/agent-relay/relay-go"
	"github.com/agent-relay/relay-go/client"
	"github.com/agent-relay/relay-go/internal/logging"
	"github.com/rs/zerolog"
)

// Relay is the facade over a protocol client: it starts the broker lazily
// on first use, tracks every agent it learns about from the event
// stream, and derives each agent's lifecycle status from that stream
// rather than from the spawn/release call sites, so status stays
// accurate even when the broker restarts or releases an agent on its
// own initiative.
type Relay struct {
	client *client.Client
	log    zerolog.Logger

	startMu sync.Mutex
	started bool
	unsub   func()

	mu             sync.Mutex
	agents         map[string]*Agent
	ready          map[string]bool
	messageReady   map[string]bool
	exited         map[string]bool
	idle           map[string]bool
	outputListeners map[string][]outputListener
	nextOutputID   int
	readyWaiters   waiterSet
	idleWaiters    waiterSet
	exitWaiters    waiterSet
	messageWaiters waiterSet

	// Hooks. Assign before Start (via any operation that calls
	// ensureStarted) to avoid racing the event-dispatch goroutine.
	OnAgentSpawned       func(*Agent)
	OnAgentReady         func(*Agent)
	OnWorkerOutput       func(WorkerOutput)
	OnWorkerError        func(WorkerOutput)
	OnMessageReceived    func(relay.Message)
	OnAgentIdle          func(AgentIdle)
	OnAgentExitRequested func(data map[string]any)
	OnAgentExited        func(*Agent)
	OnAgentReleased      func(*Agent)
	OnAgentLifecycle     func(kind, name string, data map[string]any)
	OnDeliveryUpdate     func(relay.Event)
}

// NewRelay constructs a Relay over a protocol client built from opts. The
// broker subprocess is not spawned until the first operation that needs
// it runs.
func NewRelay(opts ...client.Option) *Relay {
	return &Relay{
		client:          client.New(opts...),
		log:             logging.WithComponent("relay"),
		agents:          make(map[string]*Agent),
		ready:           make(map[string]bool),
		messageReady:    make(map[string]bool),
		exited:          make(map[string]bool),
		idle:            make(map[string]bool),
		outputListeners: make(map[string][]outputListener),
		readyWaiters:    make(waiterSet),
		idleWaiters:     make(waiterSet),
		exitWaiters:     make(waiterSet),
		messageWaiters:  make(waiterSet),
	}
}

// ensureStarted starts the underlying client and wires the event
// subscription exactly once, guarded against concurrent callers.
func (r *Relay) ensureStarted(ctx context.Context) error {
	r.startMu.Lock()
	defer r.startMu.Unlock()
	if r.started {
		return nil
	}
	if err := r.client.Start(ctx); err != nil {
		return err
	}
	r.unsub = r.client.OnEvent(r.handleEvent)
	r.started = true
	return nil
}

// Client exposes the underlying protocol client for operations the
// facade does not wrap directly (metrics, crash insights, preflight).
func (r *Relay) Client() *client.Client { return r.client }

// Spawn starts the broker if needed, asks it to spawn spec, and returns
// the agent's handle. The handle reflects "spawning" status until the
// broker's worker_ready event for this name arrives.
func (r *Relay) Spawn(ctx context.Context, spec relay.AgentSpec, params relay.SpawnAgentParams) (*Agent, error) {
	if err := r.ensureStarted(ctx); err != nil {
		return nil, err
	}
	result, err := r.client.SpawnAgent(ctx, spec, params)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	a := r.ensureAgentLocked(result.Name)
	a.mu.Lock()
	a.runtime = result.Runtime
	a.channels = spec.Channels
	a.mu.Unlock()
	r.mu.Unlock()
	return a, nil
}

// SpawnAndWait spawns spec and blocks until the agent reports ready (or,
// if waitForMessage is true, until it sends its first message)
// before returning the handle.
func (r *Relay) SpawnAndWait(ctx context.Context, spec relay.AgentSpec, params relay.SpawnAgentParams, waitForMessage bool, timeoutMs int) (*Agent, error) {
	a, err := r.Spawn(ctx, spec, params)
	if err != nil {
		return nil, err
	}
	if waitForMessage {
		if _, err := r.waitForMessage(ctx, a.Name(), timeoutMs); err != nil {
			return a, err
		}
		return a, nil
	}
	if _, err := r.waitForReady(ctx, a.Name(), timeoutMs); err != nil {
		return a, err
	}
	return a, nil
}

// Release requests a clean release of the named agent.
func (r *Relay) Release(ctx context.Context, name string) error {
	if err := r.ensureStarted(ctx); err != nil {
		return err
	}
	return r.client.ReleaseAgent(ctx, name)
}

// Agent returns the handle for name, or nil if the facade has not seen
// it (neither spawned through this facade nor reported by an event).
func (r *Relay) Agent(name string) *Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agents[name]
}

// Agents returns every agent handle the facade currently knows about.
func (r *Relay) Agents() []*Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out
}

// sendTo sends text to a specific recipient from the default human
// sender identity.
func (r *Relay) sendTo(to, text string) (relay.Message, error) {
	if err := r.ensureStarted(context.Background()); err != nil {
		return relay.Message{}, err
	}
	return r.client.SendMessage(context.Background(), relay.SendMessageParams{
		To: to, Text: text, From: relay.DefaultHumanSender,
	})
}

// Broadcast sends text to every agent (to = BroadcastTarget, "*").
func (r *Relay) Broadcast(ctx context.Context, text string) (relay.Message, error) {
	if err := r.ensureStarted(ctx); err != nil {
		return relay.Message{}, err
	}
	return r.client.SendMessage(ctx, relay.SendMessageParams{
		To: relay.BroadcastTarget, Text: text, From: relay.DefaultHumanSender,
	})
}

// System sends text from the "system" identity rather than the default
// human sender, for orchestration messages agents should distinguish
// from operator input.
func (r *Relay) System(ctx context.Context, to, text string) (relay.Message, error) {
	if err := r.ensureStarted(ctx); err != nil {
		return relay.Message{}, err
	}
	return r.client.SendMessage(ctx, relay.SendMessageParams{To: to, Text: text, From: "system"})
}

// WaitForAgentReady blocks until name reports ready, has already exited,
// or timeoutMs elapses (0 waits forever). Returns "ready", "exited", or
// "timeout".
func (r *Relay) WaitForAgentReady(ctx context.Context, name string, timeoutMs int) (string, error) {
	return r.waitForReady(ctx, name, timeoutMs)
}

// WaitForAgentMessage blocks until name sends its first message, name
// exits or has already exited, or timeoutMs elapses (0 waits forever).
// Returns "message", "exited", or "timeout".
func (r *Relay) WaitForAgentMessage(ctx context.Context, name string, timeoutMs int) (string, error) {
	return r.waitForMessage(ctx, name, timeoutMs)
}

// Shutdown unsubscribes from the client's event stream, stops the
// underlying broker subprocess, resolves any outstanding exit resolvers
// with "released" and idle resolvers with "exited" (those agents are
// gone regardless of whether the broker said so explicitly), marks every
// known agent exited, and clears the rest of the facade state.
func (r *Relay) Shutdown(ctx context.Context) error {
	r.startMu.Lock()
	started := r.started
	unsub := r.unsub
	r.startMu.Unlock()
	if !started {
		return nil
	}
	if unsub != nil {
		unsub()
	}
	err := r.client.Shutdown(ctx)

	r.mu.Lock()
	exitWaiters, idleWaiters := r.exitWaiters, r.idleWaiters
	r.exitWaiters = make(waiterSet)
	r.idleWaiters = make(waiterSet)
	for name := range r.agents {
		r.exited[name] = true
	}
	r.ready = make(map[string]bool)
	r.messageReady = make(map[string]bool)
	r.idle = make(map[string]bool)
	r.agents = make(map[string]*Agent)
	r.outputListeners = make(map[string][]outputListener)
	r.mu.Unlock()

	for _, chans := range exitWaiters {
		for _, ch := range chans {
			ch <- releasedSignal
		}
	}
	for _, chans := range idleWaiters {
		for _, ch := range chans {
			ch <- exitedSignal
		}
	}

	return err
}
