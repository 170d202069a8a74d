package workflow

import (
	"fmt"

	relay "github.com/agent-relay/relay-go"
)

// FanOutOptions tunes the FanOut template beyond its defaults.
type FanOutOptions struct {
	WorkerCLI         string
	WorkerInteractive bool
	SynthesisTask     string
	SynthesisAgent    string
	SynthesisCLI      string
}

// FanOut builds a workflow spawning one worker agent per task, named
// worker-1, worker-2, ..., with an optional synthesis step that depends
// on every worker step once they complete. Rejects an empty tasks slice
// with a programmer error.
func FanOut(name string, tasks []string, opts FanOutOptions) (Document, error) {
	if len(tasks) == 0 {
		return Document{}, &relay.ProgrammerError{Err: relay.ErrNoSteps}
	}
	workerCLI := opts.WorkerCLI
	if workerCLI == "" {
		workerCLI = "claude"
	}

	b := NewWorkflowBuilder(name).Pattern(SwarmFanOut)
	var workerSteps []string
	for i, task := range tasks {
		agentName := fmt.Sprintf("worker-%d", i+1)
		stepName := fmt.Sprintf("task-%d", i+1)
		b.Agent(AgentConfig{Name: agentName, CLI: workerCLI, Interactive: &opts.WorkerInteractive})
		b.Step(StepConfig{Name: stepName, Agent: agentName, Task: task})
		workerSteps = append(workerSteps, stepName)
	}

	if opts.SynthesisTask != "" {
		synthesisAgent := opts.SynthesisAgent
		if synthesisAgent == "" {
			synthesisAgent = "lead"
		}
		synthesisCLI := opts.SynthesisCLI
		if synthesisCLI == "" {
			synthesisCLI = "claude"
		}
		b.Agent(AgentConfig{Name: synthesisAgent, CLI: synthesisCLI})
		b.Step(StepConfig{Name: "synthesize", Agent: synthesisAgent, Task: opts.SynthesisTask, DependsOn: workerSteps})
	}

	return b.Build()
}

// PipelineStage is one stage of a Pipeline template: its own step name,
// the task text, and the agent that runs it (a default per-stage agent
// name is used when Agent is empty).
type PipelineStage struct {
	Name      string
	Task      string
	Agent     string
	CLI       string
	DependsOn []string
}

// Pipeline builds a workflow threading each stage's dependency on the
// step before it, in addition to (not replacing) any caller-supplied
// extra dependencies for that stage. Rejects an empty stages slice with
// a programmer error.
func Pipeline(name string, stages []PipelineStage, defaultCLI string) (Document, error) {
	if len(stages) == 0 {
		return Document{}, &relay.ProgrammerError{Err: relay.ErrNoSteps}
	}
	if defaultCLI == "" {
		defaultCLI = "claude"
	}

	b := NewWorkflowBuilder(name).Pattern(SwarmPipeline)
	defined := make(map[string]bool)
	prev := ""
	for i, stage := range stages {
		agentName := stage.Agent
		if agentName == "" {
			agentName = fmt.Sprintf("stage-agent-%d", i+1)
		}
		if !defined[agentName] {
			cli := stage.CLI
			if cli == "" {
				cli = defaultCLI
			}
			b.Agent(AgentConfig{Name: agentName, CLI: cli})
			defined[agentName] = true
		}

		var deps []string
		if prev != "" {
			deps = append(deps, prev)
		}
		deps = append(deps, stage.DependsOn...)

		b.Step(StepConfig{Name: stage.Name, Agent: agentName, Task: stage.Task, DependsOn: deps})
		prev = stage.Name
	}

	return b.Build()
}

// DAGStep declares one step of a DAG template: its task, the agent that
// runs it, and the names of the steps it depends on.
type DAGStep struct {
	Name      string
	Agent     string
	Task      string
	DependsOn []string
}

// DAG builds a workflow from an explicit agent roster and a set of steps
// carrying their own dependency edges, preserving whatever dependencies
// the caller specified — unlike Pipeline, nothing is injected
// automatically. Rejects empty agents or steps with a programmer error.
// Cycle detection is left to the runner (see Non-goals).
func DAG(name string, agents []AgentConfig, steps []DAGStep) (Document, error) {
	if len(agents) == 0 {
		return Document{}, &relay.ProgrammerError{Err: relay.ErrNoAgents}
	}
	if len(steps) == 0 {
		return Document{}, &relay.ProgrammerError{Err: relay.ErrNoSteps}
	}

	b := NewWorkflowBuilder(name).Pattern(SwarmDAG)
	for _, a := range agents {
		b.Agent(a)
	}
	for _, s := range steps {
		b.Step(StepConfig{
			Name:      s.Name,
			Agent:     s.Agent,
			Task:      s.Task,
			DependsOn: append([]string(nil), s.DependsOn...),
		})
	}
	return b.Build()
}
