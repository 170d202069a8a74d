package relay

import "encoding/json"

// ProtocolVersion is the only envelope version this client understands.
// Envelopes carrying any other version are discarded by the decoder.
const ProtocolVersion = 1

// Envelope is a single line of the broker wire protocol: version, a
// discriminating type, an opaque payload, and an optional request id
// correlating a response to the request that produced it.
type Envelope struct {
	V         int             `json:"v"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// Envelope type discriminators sent or received over the wire.
const (
	EnvelopeOK       = "ok"
	EnvelopeError    = "error"
	EnvelopeHelloAck = "hello_ack"
	EnvelopeEvent    = "event"
)

// Broker request method names.
const (
	MethodHello           = "hello"
	MethodSpawnAgent       = "spawn_agent"
	MethodReleaseAgent     = "release_agent"
	MethodSendInput        = "send_input"
	MethodSetModel         = "set_model"
	MethodSendMessage      = "send_message"
	MethodListAgents       = "list_agents"
	MethodGetStatus        = "get_status"
	MethodGetMetrics       = "get_metrics"
	MethodGetCrashInsights = "get_crash_insights"
	MethodPreflightAgents  = "preflight_agents"
	MethodShutdown         = "shutdown"
)

// AgentRuntime selects how the broker hosts an agent subprocess.
type AgentRuntime string

const (
	// RuntimePTY runs the agent CLI attached to a pseudo-terminal.
	RuntimePTY AgentRuntime = "pty"
	// RuntimeHeadlessClaude runs Claude in headless (non-interactive) mode.
	RuntimeHeadlessClaude AgentRuntime = "headless_claude"
)

// ShadowMode describes how a shadow agent mirrors its target.
type ShadowMode string

const (
	ShadowModeObserve ShadowMode = "observe"
	ShadowModeCompare ShadowMode = "compare"
)

// RestartPolicy governs automatic restart of a crashed agent.
type RestartPolicy struct {
	Enabled               bool `json:"enabled"`
	MaxRestarts           int  `json:"max_restarts,omitempty"`
	CooldownMs            int  `json:"cooldown_ms,omitempty"`
	MaxConsecutiveFailures int `json:"max_consecutive_failures,omitempty"`
}

// AgentSpec declares an agent for spawn_agent. Name must be unique within
// the broker's fleet; spawning the same name again replaces the logical
// handle (see the relay facade).
type AgentSpec struct {
	Name          string        `json:"name"`
	Runtime       AgentRuntime  `json:"runtime"`
	CLI           string        `json:"cli,omitempty"`
	Args          []string      `json:"args,omitempty"`
	Channels      []string      `json:"channels,omitempty"`
	Model         string        `json:"model,omitempty"`
	CWD           string        `json:"cwd,omitempty"`
	Team          string        `json:"team,omitempty"`
	ShadowOf      string        `json:"shadow_of,omitempty"`
	ShadowMode    ShadowMode    `json:"shadow_mode,omitempty"`
	RestartPolicy *RestartPolicy `json:"restart_policy,omitempty"`
}

// SpawnAgentParams is the payload of a spawn_agent request.
type SpawnAgentParams struct {
	Agent              AgentSpec `json:"agent"`
	InitialTask        string    `json:"initial_task,omitempty"`
	IdleThresholdSecs  int       `json:"idle_threshold_secs,omitempty"`
	ContinueFrom       string    `json:"continue_from,omitempty"`
}

// SendMessageParams is the payload of a send_message request.
type SendMessageParams struct {
	To       string `json:"to"`
	Text     string `json:"text"`
	From     string `json:"from,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	Priority string `json:"priority,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// ErrorPayload is the payload of an EnvelopeError response.
type ErrorPayload struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Retryable bool            `json:"retryable"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Event kinds the facade and client must recognize and route.
const (
	EventAgentSpawned         = "agent_spawned"
	EventAgentReleased        = "agent_released"
	EventAgentExit            = "agent_exit"
	EventAgentExited          = "agent_exited"
	EventRelayInbound         = "relay_inbound"
	EventWorkerStream         = "worker_stream"
	EventWorkerReady          = "worker_ready"
	EventWorkerError          = "worker_error"
	EventAgentIdle            = "agent_idle"
	EventAgentRestarting      = "agent_restarting"
	EventAgentRestarted       = "agent_restarted"
	EventAgentPermanentlyDead = "agent_permanently_dead"
)

// DeliveryEventPrefix marks any event kind that is a passthrough delivery
// notification (delivery_queued, delivery_injected, ...). A few
// non-prefixed kinds are routed the same way (see extraDeliveryKinds).
const DeliveryEventPrefix = "delivery_"

// Event is a broker-emitted occurrence, tagged by Kind. Name identifies the
// agent the event concerns, when applicable. Fields beyond Kind/Name are
// carried opaquely in Data since the broker's full event grammar is not
// contractually fixed (see design notes on unknown payload keys).
type Event struct {
	Kind string         `json:"kind"`
	Name string         `json:"name,omitempty"`
	Data map[string]any `json:"-"`
}

// UnmarshalJSON decodes an Event, capturing every field other than "kind"
// and "name" into Data so unrecognized payload keys pass through opaquely.
func (e *Event) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["kind"]; ok {
		_ = json.Unmarshal(v, &e.Kind)
		delete(raw, "kind")
	}
	if v, ok := raw["name"]; ok {
		_ = json.Unmarshal(v, &e.Name)
		delete(raw, "name")
	}
	e.Data = make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			continue
		}
		e.Data[k] = val
	}
	return nil
}

// extraDeliveryKinds are delivery passthrough kinds that do not carry the
// delivery_ prefix but are routed identically (no state mutation, only the
// OnDeliveryUpdate hook).
var extraDeliveryKinds = map[string]bool{
	"relaycast_published":      true,
	"relaycast_publish_failed": true,
	"acl_denied":                true,
}

// IsDelivery reports whether the event kind is a delivery_* passthrough, or
// one of the handful of non-prefixed kinds routed the same way.
func (e Event) IsDelivery() bool {
	if len(e.Kind) >= len(DeliveryEventPrefix) && e.Kind[:len(DeliveryEventPrefix)] == DeliveryEventPrefix {
		return true
	}
	return extraDeliveryKinds[e.Kind]
}
