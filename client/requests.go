package client

import (
	"context"
	"encoding/json"

	relay "github.com/agent-relay/relay-go"
)

// SpawnResult is the broker's acknowledgement of a spawn_agent request.
type SpawnResult struct {
	Name    string             `json:"name"`
	Runtime relay.AgentRuntime `json:"runtime"`
}

// SpawnAgent shapes spec's CLI/Args/Model through the argument shaper
// (C2) before sending spawn_agent, so every caller — including the relay
// facade and its per-CLI convenience wrappers — gets
// consistent argument handling without duplicating the shaping rules.
func (c *Client) SpawnAgent(ctx context.Context, spec relay.AgentSpec, params relay.SpawnAgentParams) (SpawnResult, error) {
	spec.Args = shapeArgs(spec.CLI, spec.Args, spec.Model)
	params.Agent = spec

	result, err := c.sendRequest(ctx, relay.MethodSpawnAgent, relay.EnvelopeOK, params)
	if err != nil {
		return SpawnResult{}, err
	}
	var out SpawnResult
	_ = json.Unmarshal(result, &out)
	return out, nil
}

// ReleaseAgent requests a clean release of a running agent.
func (c *Client) ReleaseAgent(ctx context.Context, name string) error {
	_, err := c.sendRequest(ctx, relay.MethodReleaseAgent, relay.EnvelopeOK, map[string]string{"name": name})
	return err
}

// SendInput forwards raw input to an agent's stdin (PTY-backed agents).
func (c *Client) SendInput(ctx context.Context, name, text string) error {
	_, err := c.sendRequest(ctx, relay.MethodSendInput, relay.EnvelopeOK, map[string]string{"name": name, "text": text})
	return err
}

// SetModel changes an already-spawned agent's model.
func (c *Client) SetModel(ctx context.Context, name, model string) error {
	_, err := c.sendRequest(ctx, relay.MethodSetModel, relay.EnvelopeOK, map[string]string{"name": name, "model": model})
	return err
}

// unsupportedOperationCode is the broker error code that triggers the
// send_message synthetic-result fallback (§4.4).
const unsupportedOperationCode = "unsupported_operation"

// SendMessage sends a relay message. If the broker reports send_message
// as unsupported, this synthesizes a benign result rather than
// propagating the error, per the send-message fallback rule; every other
// protocol error propagates unchanged.
func (c *Client) SendMessage(ctx context.Context, params relay.SendMessageParams) (relay.Message, error) {
	result, err := c.sendRequest(ctx, relay.MethodSendMessage, relay.EnvelopeOK, params)
	if err != nil {
		var protoErr *relay.ProtocolError
		if ok := asProtocolError(err, &protoErr); ok && protoErr.Code == unsupportedOperationCode {
			return relay.Message{EventID: unsupportedOperationCode, From: params.From, To: params.To, Text: params.Text}, nil
		}
		return relay.Message{}, err
	}
	var msg relay.Message
	_ = json.Unmarshal(result, &msg)
	return msg, nil
}

func asProtocolError(err error, target **relay.ProtocolError) bool {
	pe, ok := err.(*relay.ProtocolError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

// ListAgents returns the broker's current agent roster. The payload
// shape beyond this SDK's own AgentSpec/AgentHandle fields is not
// contractually fixed, so it is returned as a raw JSON array for callers
// that need broker-specific fields (see design notes on opaque passthrough).
func (c *Client) ListAgents(ctx context.Context) (json.RawMessage, error) {
	return c.sendRequest(ctx, relay.MethodListAgents, relay.EnvelopeOK, struct{}{})
}

// GetStatus returns the broker's fleet status snapshot, opaquely.
func (c *Client) GetStatus(ctx context.Context) (json.RawMessage, error) {
	return c.sendRequest(ctx, relay.MethodGetStatus, relay.EnvelopeOK, struct{}{})
}

// GetMetrics returns the broker's metrics snapshot, opaquely.
func (c *Client) GetMetrics(ctx context.Context) (json.RawMessage, error) {
	return c.sendRequest(ctx, relay.MethodGetMetrics, relay.EnvelopeOK, struct{}{})
}

// GetCrashInsights returns the broker's crash-diagnostics snapshot, opaquely.
func (c *Client) GetCrashInsights(ctx context.Context) (json.RawMessage, error) {
	return c.sendRequest(ctx, relay.MethodGetCrashInsights, relay.EnvelopeOK, struct{}{})
}

// PreflightAgents asks the broker to validate a set of agent specs
// without spawning them.
func (c *Client) PreflightAgents(ctx context.Context, specs []relay.AgentSpec) (json.RawMessage, error) {
	return c.sendRequest(ctx, relay.MethodPreflightAgents, relay.EnvelopeOK, map[string][]relay.AgentSpec{"agents": specs})
}
