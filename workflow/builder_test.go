package workflow

import (
	"testing"

	relay "github.com/agent-relay/relay-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBuildBasicWorkflow(t *testing.T) {
	doc, err := NewWorkflowBuilder("test-workflow").
		Pattern(SwarmDAG).
		Agent(AgentConfig{Name: "worker", CLI: "claude"}).
		Step(StepConfig{Name: "do-work", Agent: "worker", Task: "Do the work"}).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "1", doc.Version)
	assert.Equal(t, "test-workflow", doc.Name)
	assert.Equal(t, SwarmDAG, doc.Swarm.Pattern)
	require.Len(t, doc.Agents, 1)
	assert.Equal(t, "worker", doc.Agents[0].Name)
	require.Len(t, doc.Workflows, 1)
	assert.Len(t, doc.Workflows[0].Steps, 1)
}

func TestBuildFullWorkflow(t *testing.T) {
	doc, err := NewWorkflowBuilder("migration").
		Description("Full migration workflow").
		Pattern(SwarmDAG).
		MaxConcurrency(3).
		Channel("migration-channel").
		Agent(AgentConfig{Name: "backend", CLI: "claude"}).
		Agent(AgentConfig{Name: "tester", CLI: "codex", Model: "gpt-4"}).
		Step(StepConfig{Name: "build", Agent: "backend", Task: "Build the API"}).
		Step(StepConfig{Name: "test", Agent: "tester", Task: "Run tests", DependsOn: []string{"build"}}).
		OnError(ErrorRetry).
		RetryTuning(2, 5).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "Full migration workflow", doc.Description)
	require.NotNil(t, doc.Swarm.MaxConcurrency)
	assert.Equal(t, 3, *doc.Swarm.MaxConcurrency)
	assert.Equal(t, "migration-channel", doc.Swarm.Channel)
	require.Len(t, doc.Agents, 2)
	assert.Equal(t, "gpt-4", doc.Agents[1].Model)

	steps := doc.Workflows[0].Steps
	assert.Equal(t, []string{"build"}, steps[1].DependsOn)

	require.NotNil(t, doc.ErrorHandling)
	assert.Equal(t, ErrorRetry, doc.ErrorHandling.Strategy)
	assert.Equal(t, 2, *doc.ErrorHandling.MaxRetries)
}

func TestBuildFailsWithNoAgents(t *testing.T) {
	_, err := NewWorkflowBuilder("empty").
		Step(StepConfig{Name: "x", Agent: "a", Task: "t"}).
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, relay.ErrNoAgents)
}

func TestBuildFailsWithNoSteps(t *testing.T) {
	_, err := NewWorkflowBuilder("empty").
		Agent(AgentConfig{Name: "a"}).
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, relay.ErrNoSteps)
}

func TestBuildFailsOnTrajectoryConflict(t *testing.T) {
	_, err := NewWorkflowBuilder("x").
		Agent(AgentConfig{Name: "a"}).
		Step(StepConfig{Name: "s", Agent: "a", Task: "t"}).
		TrajectoryDisabled().
		Trajectory(true).
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, relay.ErrTrajectoryConflict)
}

func TestToYAMLRoundTrip(t *testing.T) {
	b := NewWorkflowBuilder("roundtrip").
		Pattern(SwarmFanOut).
		Agent(AgentConfig{Name: "a", CLI: "claude"}).
		Step(StepConfig{Name: "do", Agent: "a", Task: "go"})

	data, err := b.ToYAML()
	require.NoError(t, err)

	var reparsed Document
	require.NoError(t, yaml.Unmarshal(data, &reparsed))

	original, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, original, reparsed)
}

func TestEmittedDocumentOmitsUnsetKeys(t *testing.T) {
	data, err := NewWorkflowBuilder("bare").
		Agent(AgentConfig{Name: "a"}).
		Step(StepConfig{Name: "s", Agent: "a", Task: "t"}).
		ToYAML()
	require.NoError(t, err)

	text := string(data)
	assert.NotContains(t, text, "errorHandling")
	assert.NotContains(t, text, "coordination")
	assert.NotContains(t, text, "sharedState")
	assert.NotContains(t, text, "trajectory")
}
