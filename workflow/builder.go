package workflow

import (
	"fmt"

	relay "github.com/agent-relay/relay-go"
	"gopkg.in/yaml.v3"
)

// WorkflowBuilder fluently accumulates a single named workflow's agents,
// steps, and tuning, then renders a Document. Every setter returns the
// builder itself for chaining; validation is deferred to Build.
type WorkflowBuilder struct {
	name        string
	description string
	swarm       SwarmConfig

	agents []AgentConfig
	steps  []StepConfig

	errorHandling *ErrorHandling
	coordination  *Coordination
	sharedState   *SharedState
	trajectory    *Trajectory
}

// NewWorkflowBuilder starts a builder for a workflow named name, defaulting
// its swarm pattern to dag.
func NewWorkflowBuilder(name string) *WorkflowBuilder {
	return &WorkflowBuilder{
		name:  name,
		swarm: SwarmConfig{Pattern: SwarmDAG},
	}
}

// Description sets the workflow's human-readable description.
func (b *WorkflowBuilder) Description(d string) *WorkflowBuilder {
	b.description = d
	return b
}

// Pattern sets the swarm pattern.
func (b *WorkflowBuilder) Pattern(p SwarmPattern) *WorkflowBuilder {
	b.swarm.Pattern = p
	return b
}

// MaxConcurrency caps how many steps may run at once.
func (b *WorkflowBuilder) MaxConcurrency(n int) *WorkflowBuilder {
	b.swarm.MaxConcurrency = &n
	return b
}

// GlobalTimeout bounds the whole run, in seconds.
func (b *WorkflowBuilder) GlobalTimeout(secs int) *WorkflowBuilder {
	b.swarm.GlobalTimeoutSecs = &secs
	return b
}

// Channel sets the relay channel the workflow's agents communicate on.
func (b *WorkflowBuilder) Channel(name string) *WorkflowBuilder {
	b.swarm.Channel = name
	return b
}

// IdleNudgeThreshold sets the seconds of agent silence before the runner
// nudges it, in seconds.
func (b *WorkflowBuilder) IdleNudgeThreshold(secs int) *WorkflowBuilder {
	b.swarm.IdleNudgeThresholdSecs = &secs
	return b
}

// Agent appends an agent declaration.
func (b *WorkflowBuilder) Agent(cfg AgentConfig) *WorkflowBuilder {
	b.agents = append(b.agents, cfg)
	return b
}

// Step appends an ordered step.
func (b *WorkflowBuilder) Step(cfg StepConfig) *WorkflowBuilder {
	b.steps = append(b.steps, cfg)
	return b
}

// OnError sets the error-handling strategy.
func (b *WorkflowBuilder) OnError(strategy ErrorStrategy) *WorkflowBuilder {
	b.ensureErrorHandling().Strategy = strategy
	return b
}

// RetryTuning sets the retry-strategy's max retries and backoff.
func (b *WorkflowBuilder) RetryTuning(maxRetries, backoffSecs int) *WorkflowBuilder {
	eh := b.ensureErrorHandling()
	eh.MaxRetries = &maxRetries
	eh.RetryBackoffSecs = &backoffSecs
	return b
}

func (b *WorkflowBuilder) ensureErrorHandling() *ErrorHandling {
	if b.errorHandling == nil {
		b.errorHandling = &ErrorHandling{}
	}
	return b.errorHandling
}

// Barrier appends a coordination barrier name.
func (b *WorkflowBuilder) Barrier(name string) *WorkflowBuilder {
	c := b.ensureCoordination()
	c.Barriers = append(c.Barriers, name)
	return b
}

// VotingThreshold sets the coordination voting threshold.
func (b *WorkflowBuilder) VotingThreshold(t float64) *WorkflowBuilder {
	b.ensureCoordination().VotingThreshold = &t
	return b
}

// Consensus sets the coordination consensus strategy.
func (b *WorkflowBuilder) Consensus(strategy ConsensusStrategy) *WorkflowBuilder {
	b.ensureCoordination().ConsensusStrategy = strategy
	return b
}

func (b *WorkflowBuilder) ensureCoordination() *Coordination {
	if b.coordination == nil {
		b.coordination = &Coordination{}
	}
	return b.coordination
}

// SharedStateBackend sets the shared-state backend.
func (b *WorkflowBuilder) SharedStateBackend(backend SharedStateBackend) *WorkflowBuilder {
	b.ensureSharedState().Backend = backend
	return b
}

// SharedStateTTL sets the shared-state entry TTL, in seconds.
func (b *WorkflowBuilder) SharedStateTTL(secs int) *WorkflowBuilder {
	b.ensureSharedState().TTLSecs = &secs
	return b
}

// SharedStateNamespace sets the shared-state namespace prefix.
func (b *WorkflowBuilder) SharedStateNamespace(ns string) *WorkflowBuilder {
	b.ensureSharedState().Namespace = ns
	return b
}

func (b *WorkflowBuilder) ensureSharedState() *SharedState {
	if b.sharedState == nil {
		b.sharedState = &SharedState{}
	}
	return b.sharedState
}

// Trajectory enables or disables trajectory recording.
func (b *WorkflowBuilder) Trajectory(enable bool) *WorkflowBuilder {
	b.ensureTrajectory().Enable = &enable
	return b
}

// TrajectoryDisabled sets the literal "disabled" marker, mutually
// exclusive with every other trajectory option (see ErrTrajectoryConflict).
func (b *WorkflowBuilder) TrajectoryDisabled() *WorkflowBuilder {
	b.ensureTrajectory().Disabled = true
	return b
}

// TrajectoryReflectOnBarriers toggles reflection at coordination barriers.
func (b *WorkflowBuilder) TrajectoryReflectOnBarriers(v bool) *WorkflowBuilder {
	b.ensureTrajectory().ReflectOnBarriers = &v
	return b
}

// TrajectoryReflectOnConverge toggles reflection at swarm convergence.
func (b *WorkflowBuilder) TrajectoryReflectOnConverge(v bool) *WorkflowBuilder {
	b.ensureTrajectory().ReflectOnConverge = &v
	return b
}

// TrajectoryAutoDecisions toggles automatic decision recording.
func (b *WorkflowBuilder) TrajectoryAutoDecisions(v bool) *WorkflowBuilder {
	b.ensureTrajectory().AutoDecisions = &v
	return b
}

func (b *WorkflowBuilder) ensureTrajectory() *Trajectory {
	if b.trajectory == nil {
		b.trajectory = &Trajectory{}
	}
	return b.trajectory
}

// Build validates and renders the accumulated state into a Document. It
// fails with a *relay.ProgrammerError wrapping ErrNoAgents, ErrNoSteps, or
// ErrTrajectoryConflict when the corresponding invariant is violated.
func (b *WorkflowBuilder) Build() (Document, error) {
	if len(b.agents) == 0 {
		return Document{}, &relay.ProgrammerError{Err: relay.ErrNoAgents}
	}
	if len(b.steps) == 0 {
		return Document{}, &relay.ProgrammerError{Err: relay.ErrNoSteps}
	}
	if b.trajectory != nil && b.trajectory.Disabled {
		if b.trajectory.Enable != nil || b.trajectory.ReflectOnBarriers != nil ||
			b.trajectory.ReflectOnConverge != nil || b.trajectory.AutoDecisions != nil {
			return Document{}, &relay.ProgrammerError{Err: relay.ErrTrajectoryConflict}
		}
	}

	return Document{
		Version:     documentVersion,
		Name:        b.name,
		Description: b.description,
		Swarm:       b.swarm,
		Agents:      append([]AgentConfig(nil), b.agents...),
		Workflows: []WorkflowSpec{{
			Name:  b.name,
			Steps: append([]StepConfig(nil), b.steps...),
		}},
		ErrorHandling: b.errorHandling,
		Coordination:  b.coordination,
		SharedState:   b.sharedState,
		Trajectory:    b.trajectory,
	}, nil
}

// ToConfig is an alias for Build, named for callers that want to inspect
// or further transform the document rather than run it immediately.
func (b *WorkflowBuilder) ToConfig() (Document, error) {
	return b.Build()
}

// ToYAML renders the built document as YAML.
func (b *WorkflowBuilder) ToYAML() ([]byte, error) {
	doc, err := b.Build()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// DocumentToYAML renders an already-built Document as YAML, for callers
// holding a Document from ToConfig or a template constructor.
func DocumentToYAML(doc Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("workflow: marshal document: %w", err)
	}
	return data, nil
}
