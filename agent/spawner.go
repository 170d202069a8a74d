package agent

import (
	"context"
	"fmt"
	"sync/atomic"

	relay "github.com/agent-relay/relay-go"
)

// SpawnOption customizes a per-CLI convenience spawn beyond its
// CLI-specific defaults.
type SpawnOption func(*relay.AgentSpec, *relay.SpawnAgentParams)

// WithModel sets the agent's model.
func WithModel(model string) SpawnOption {
	return func(s *relay.AgentSpec, _ *relay.SpawnAgentParams) { s.Model = model }
}

// WithArgs sets extra CLI arguments, shaped alongside the per-CLI
// defaults and --model injection when the client sends spawn_agent.
func WithArgs(args ...string) SpawnOption {
	return func(s *relay.AgentSpec, _ *relay.SpawnAgentParams) { s.Args = args }
}

// WithChannels overrides the channels the agent joins. Defaults to
// ["general"].
func WithChannels(channels ...string) SpawnOption {
	return func(s *relay.AgentSpec, _ *relay.SpawnAgentParams) { s.Channels = channels }
}

// WithCWD sets the agent's working directory.
func WithCWD(dir string) SpawnOption {
	return func(s *relay.AgentSpec, _ *relay.SpawnAgentParams) { s.CWD = dir }
}

// WithTeam tags the agent with a team name for fleet grouping.
func WithTeam(team string) SpawnOption {
	return func(s *relay.AgentSpec, _ *relay.SpawnAgentParams) { s.Team = team }
}

// WithShadowOf spawns the agent as a shadow of an existing agent.
func WithShadowOf(name string, mode relay.ShadowMode) SpawnOption {
	return func(s *relay.AgentSpec, _ *relay.SpawnAgentParams) {
		s.ShadowOf = name
		s.ShadowMode = mode
	}
}

// WithRestartPolicy sets the agent's restart policy.
func WithRestartPolicy(policy relay.RestartPolicy) SpawnOption {
	return func(s *relay.AgentSpec, _ *relay.SpawnAgentParams) { s.RestartPolicy = &policy }
}

// WithIdleThreshold overrides the seconds of silence after which the
// broker reports agent_idle.
func WithIdleThreshold(secs int) SpawnOption {
	return func(_ *relay.AgentSpec, p *relay.SpawnAgentParams) { p.IdleThresholdSecs = secs }
}

// WithContinueFrom resumes the agent from a prior agent's trajectory.
func WithContinueFrom(name string) SpawnOption {
	return func(_ *relay.AgentSpec, p *relay.SpawnAgentParams) { p.ContinueFrom = name }
}

var cliSpawnCounter atomic.Int64

// spawnCLI builds an AgentSpec for the given CLI identifier, applying
// defaults (PTY runtime, "general" channel, a generated name if none is
// given) before layering opts on top, and spawns it.
func spawnCLI(ctx context.Context, r *Relay, cli, name, task string, opts ...SpawnOption) (*Agent, error) {
	if name == "" {
		name = fmt.Sprintf("%s-%d", cli, cliSpawnCounter.Add(1))
	}
	spec := relay.AgentSpec{
		Name:     name,
		Runtime:  relay.RuntimePTY,
		CLI:      cli,
		Channels: []string{"general"},
	}
	params := relay.SpawnAgentParams{InitialTask: task}
	for _, opt := range opts {
		opt(&spec, &params)
	}
	return r.Spawn(ctx, spec, params)
}

// SpawnClaude spawns a Claude Code agent. name may be empty to generate
// one.
func (r *Relay) SpawnClaude(ctx context.Context, name, task string, opts ...SpawnOption) (*Agent, error) {
	return spawnCLI(ctx, r, "claude", name, task, opts...)
}

// SpawnCodex spawns a Codex agent.
func (r *Relay) SpawnCodex(ctx context.Context, name, task string, opts ...SpawnOption) (*Agent, error) {
	return spawnCLI(ctx, r, "codex", name, task, opts...)
}

// SpawnGemini spawns a Gemini CLI agent.
func (r *Relay) SpawnGemini(ctx context.Context, name, task string, opts ...SpawnOption) (*Agent, error) {
	return spawnCLI(ctx, r, "gemini", name, task, opts...)
}

// SpawnGoose spawns a Goose agent.
func (r *Relay) SpawnGoose(ctx context.Context, name, task string, opts ...SpawnOption) (*Agent, error) {
	return spawnCLI(ctx, r, "goose", name, task, opts...)
}

// SpawnAider spawns an Aider agent.
func (r *Relay) SpawnAider(ctx context.Context, name, task string, opts ...SpawnOption) (*Agent, error) {
	return spawnCLI(ctx, r, "aider", name, task, opts...)
}
