// Package workflow implements the workflow builder (C6): a fluent
// constructor that accumulates a declarative multi-agent workflow
// configuration and renders it to the document the workflow runner
// consumes.
package workflow

// SwarmPattern selects the coordination topology a workflow runs under.
type SwarmPattern string

// The 22 swarm patterns the runner recognizes.
const (
	SwarmFanOut         SwarmPattern = "fan-out"
	SwarmPipeline       SwarmPattern = "pipeline"
	SwarmHubSpoke       SwarmPattern = "hub-spoke"
	SwarmConsensus      SwarmPattern = "consensus"
	SwarmMesh           SwarmPattern = "mesh"
	SwarmHandoff        SwarmPattern = "handoff"
	SwarmCascade        SwarmPattern = "cascade"
	SwarmDAG            SwarmPattern = "dag"
	SwarmDebate         SwarmPattern = "debate"
	SwarmHierarchical   SwarmPattern = "hierarchical"
	SwarmMapReduce      SwarmPattern = "map-reduce"
	SwarmScatterGather  SwarmPattern = "scatter-gather"
	SwarmSupervisor     SwarmPattern = "supervisor"
	SwarmReflection     SwarmPattern = "reflection"
	SwarmRedTeam        SwarmPattern = "red-team"
	SwarmVerifier       SwarmPattern = "verifier"
	SwarmAuction        SwarmPattern = "auction"
	SwarmEscalation     SwarmPattern = "escalation"
	SwarmSaga           SwarmPattern = "saga"
	SwarmCircuitBreaker SwarmPattern = "circuit-breaker"
	SwarmBlackboard     SwarmPattern = "blackboard"
	SwarmSwarm          SwarmPattern = "swarm"
)

// ErrorStrategy selects how a workflow run reacts to a failing step.
type ErrorStrategy string

const (
	ErrorFailFast ErrorStrategy = "fail-fast"
	ErrorContinue ErrorStrategy = "continue"
	ErrorRetry    ErrorStrategy = "retry"
)

// ConsensusStrategy selects how coordination barriers resolve.
type ConsensusStrategy string

const (
	ConsensusMajority  ConsensusStrategy = "majority"
	ConsensusUnanimous ConsensusStrategy = "unanimous"
	ConsensusQuorum    ConsensusStrategy = "quorum"
)

// SharedStateBackend selects where coordination state is kept.
type SharedStateBackend string

const (
	SharedStateMemory   SharedStateBackend = "memory"
	SharedStateRedis    SharedStateBackend = "redis"
	SharedStateDatabase SharedStateBackend = "database"
)

// documentVersion is the schema version stamped on every emitted document.
const documentVersion = "1"

// AgentConfig declares one agent participating in a workflow, with its
// per-agent constraints. Fields with a legitimate zero value (MaxTokens,
// TimeoutSecs, Retries, IdleThresholdSecs, Interactive) are pointers so
// "unset" and "explicitly zero" serialize differently.
type AgentConfig struct {
	Name              string `yaml:"name"`
	CLI               string `yaml:"cli,omitempty"`
	Model             string `yaml:"model,omitempty"`
	MaxTokens         *int   `yaml:"maxTokens,omitempty"`
	TimeoutSecs       *int   `yaml:"timeoutSecs,omitempty"`
	Retries           *int   `yaml:"retries,omitempty"`
	IdleThresholdSecs *int   `yaml:"idleThresholdSecs,omitempty"`
	Interactive       *bool  `yaml:"interactive,omitempty"`
}

// VerificationCheck names a check the runner applies to a step's output
// before considering it complete.
type VerificationCheck struct {
	Type    string         `yaml:"type"`
	Command string         `yaml:"command,omitempty"`
	Config  map[string]any `yaml:"config,omitempty"`
}

// StepConfig declares one ordered step of a workflow.
type StepConfig struct {
	Name         string             `yaml:"name"`
	Agent        string             `yaml:"agent"`
	Task         string             `yaml:"task"`
	DependsOn    []string           `yaml:"dependsOn,omitempty"`
	Verification *VerificationCheck `yaml:"verification,omitempty"`
	TimeoutSecs  *int               `yaml:"timeoutSecs,omitempty"`
	Retries      *int               `yaml:"retries,omitempty"`
}

// SwarmConfig tunes the chosen swarm pattern.
type SwarmConfig struct {
	Pattern                SwarmPattern `yaml:"pattern"`
	MaxConcurrency         *int         `yaml:"maxConcurrency,omitempty"`
	GlobalTimeoutSecs      *int         `yaml:"globalTimeoutSecs,omitempty"`
	Channel                string       `yaml:"channel,omitempty"`
	IdleNudgeThresholdSecs *int         `yaml:"idleNudgeThresholdSecs,omitempty"`
}

// ErrorHandling configures a workflow's reaction to step failure.
type ErrorHandling struct {
	Strategy         ErrorStrategy `yaml:"strategy"`
	MaxRetries       *int          `yaml:"maxRetries,omitempty"`
	RetryBackoffSecs *int          `yaml:"retryBackoffSecs,omitempty"`
}

// Coordination configures cross-agent barriers and consensus.
type Coordination struct {
	Barriers          []string          `yaml:"barriers,omitempty"`
	VotingThreshold   *float64          `yaml:"votingThreshold,omitempty"`
	ConsensusStrategy ConsensusStrategy `yaml:"consensusStrategy,omitempty"`
}

// SharedState configures the backend agents use to exchange state.
type SharedState struct {
	Backend   SharedStateBackend `yaml:"backend"`
	TTLSecs   *int               `yaml:"ttlSecs,omitempty"`
	Namespace string             `yaml:"namespace,omitempty"`
}

// Trajectory configures trajectory recording. Disabled, when true, is
// emitted as a "disabled: true" field inside the trajectory block (not as
// a bare "disabled" string in place of the block); it is a programmer
// error to combine it with any other trajectory field (see
// ErrTrajectoryConflict).
type Trajectory struct {
	Disabled          bool  `yaml:"disabled,omitempty"`
	Enable            *bool `yaml:"enable,omitempty"`
	ReflectOnBarriers *bool `yaml:"reflectOnBarriers,omitempty"`
	ReflectOnConverge *bool `yaml:"reflectOnConverge,omitempty"`
	AutoDecisions     *bool `yaml:"autoDecisions,omitempty"`
}

// WorkflowSpec is one named, ordered sequence of steps within a Document.
type WorkflowSpec struct {
	Name  string       `yaml:"name"`
	Steps []StepConfig `yaml:"steps"`
}

// Document is the rooted configuration the workflow runner consumes.
type Document struct {
	Version       string         `yaml:"version"`
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description,omitempty"`
	Swarm         SwarmConfig    `yaml:"swarm"`
	Agents        []AgentConfig  `yaml:"agents"`
	Workflows     []WorkflowSpec `yaml:"workflows"`
	ErrorHandling *ErrorHandling `yaml:"errorHandling,omitempty"`
	Coordination  *Coordination  `yaml:"coordination,omitempty"`
	SharedState   *SharedState   `yaml:"sharedState,omitempty"`
	Trajectory    *Trajectory    `yaml:"trajectory,omitempty"`
}
