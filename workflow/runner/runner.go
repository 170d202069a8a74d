// Package runner implements the workflow runner adapter (C7): it
// serializes a workflow document to a temporary file, invokes the
// external agent-relay workflow-runner command against it, and
// stream-parses its progress lines into typed events and a final
// result.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/agent-relay/relay-go/internal/logging"
	"github.com/agent-relay/relay-go/workflow"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// RunStatus is the terminal status of a workflow run or of the overall
// result.
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// StepStatus is the status carried by a [step] progress line.
type StepStatus string

const (
	StepStarted       StepStatus = "started"
	StepCompleted     StepStatus = "completed"
	StepFailed        StepStatus = "failed"
	StepSkipped       StepStatus = "skipped"
	StepRetrying      StepStatus = "retrying"
	StepNudged        StepStatus = "nudged"
	StepForceReleased StepStatus = "force-released"
)

// EventType discriminates the two progress-line shapes the runner emits.
type EventType string

const (
	EventRun  EventType = "run"
	EventStep EventType = "step"
)

// Event is one parsed progress line. For EventRun, StepName is empty; for
// EventStep, Status holds the step status and StepName names the step.
type Event struct {
	Type     EventType
	Status   string
	StepName string
	Detail   string
	Raw      string
}

// StepResult is the last-known outcome of one named step.
type StepResult struct {
	Name   string
	Status string
	Error  string
	Output string
}

// Result is the outcome of a Run call.
type Result struct {
	Status RunStatus
	RunID  string
	Error  string
	Events []Event
	Steps  []StepResult
	Log    []string
}

// Options configures a Run call.
type Options struct {
	// WorkflowName, when non-empty, is passed as --workflow to the
	// runner (a document may define more than one named workflow).
	WorkflowName string
	// WorkDir is the runner subprocess's working directory. Empty
	// inherits the caller's.
	WorkDir string
	// RunnerPath overrides binary resolution with an explicit path or
	// command name.
	RunnerPath string
	// Overrides are {{var}} template substitution values applied to
	// every string field of the document except those nested under a
	// "steps" key, before serialization.
	Overrides map[string]string
	// TrajectoryEnabled, when non-nil, overwrites the document's
	// trajectory.enable toggle.
	TrajectoryEnabled *bool
	// OnEvent, when non-nil, is invoked synchronously for every parsed
	// event as it is scanned from the runner's output.
	OnEvent func(Event)
	// OnLine, when non-nil, is invoked for every raw output line
	// (matched or not), before event parsing.
	OnLine func(string)
}

var log = logging.WithComponent("runner")

// Run applies doc's runtime overrides, writes it to a temporary YAML
// file, invokes the runner, and parses its combined stdout+stderr into a
// Result. The temporary file is always removed.
func Run(ctx context.Context, doc workflow.Document, opts Options) (Result, error) {
	effective, err := applyOverrides(doc, opts.Overrides, opts.TrajectoryEnabled)
	if err != nil {
		return Result{}, fmt.Errorf("relay/runner: apply overrides: %w", err)
	}

	data, err := yaml.Marshal(effective)
	if err != nil {
		return Result{}, fmt.Errorf("relay/runner: marshal document: %w", err)
	}

	tmpPath, err := writeTempConfig(data)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(tmpPath)

	cmdName, cmdArgs, err := resolveRunnerCommand(opts.RunnerPath)
	if err != nil {
		return Result{}, err
	}
	argv := append(append([]string(nil), cmdArgs...), "run", tmpPath)
	if opts.WorkflowName != "" {
		argv = append(argv, "--workflow", opts.WorkflowName)
	}

	cmd := exec.CommandContext(ctx, cmdName, argv...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("relay/runner: open runner stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout // combined stream, per §6 "combined stdout+stderr"

	log.Info().Str("command", cmdName).Strs("argv", argv).Msg("workflow runner spawned")
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("relay/runner: spawn runner: %w", err)
	}

	result := consumeOutput(stdout, opts.OnEvent, opts.OnLine)
	waitErr := cmd.Wait()

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	finalize(&result, exitCode, waitErr)
	return result, nil
}

// writeTempConfig writes data to a uniquely-named temporary file and
// returns its path. The uuid suffix (rather than os.CreateTemp's own
// randomness) keeps concurrent runs from this process trivially
// distinguishable in a process listing during debugging.
func writeTempConfig(data []byte) (string, error) {
	path := filepath.Join(os.TempDir(), "agent-relay-workflow-"+uuid.NewString()+".yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("relay/runner: write temp config: %w", err)
	}
	return path, nil
}

// consumeOutput scans the runner's combined output line by line, parsing
// each against the [run]/[step] grammar and building the running result.
func consumeOutput(stdout io.Reader, onEvent func(Event), onLine func(string)) Result {
	var result Result
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	stepIndex := make(map[string]int)

	for scanner.Scan() {
		line := scanner.Text()
		if onLine != nil {
			onLine(line)
		}
		if strings.TrimSpace(line) != "" {
			result.Log = append(result.Log, line)
		}

		ev, ok := parseLine(line)
		if !ok {
			continue
		}
		result.Events = append(result.Events, ev)
		if onEvent != nil {
			onEvent(ev)
		}

		if ev.Type == EventStep {
			idx, seen := stepIndex[ev.StepName]
			if !seen {
				idx = len(result.Steps)
				result.Steps = append(result.Steps, StepResult{Name: ev.StepName})
				stepIndex[ev.StepName] = idx
			}
			result.Steps[idx].Status = ev.Status
			switch ev.Status {
			case string(StepFailed):
				result.Steps[idx].Error = ev.Detail
			case string(StepCompleted):
				result.Steps[idx].Output = ev.Detail
			}
		}
	}
	return result
}

// finalize derives the terminal Status and Error from the parsed event
// log, the runner's exit code, and (failing those) the raw log tail.
func finalize(result *Result, exitCode int, waitErr error) {
	var cancelled, runFailed bool
	var failDetail string
	for _, ev := range result.Events {
		if ev.Type != EventRun {
			continue
		}
		switch ev.Status {
		case string(RunCancelled):
			cancelled = true
		case string(RunFailed):
			runFailed = true
			failDetail = ev.Detail
		}
	}

	switch {
	case cancelled:
		result.Status = RunCancelled
	case exitCode == 0 && waitErr == nil:
		result.Status = RunCompleted
	default:
		result.Status = RunFailed
	}

	if result.Status == RunFailed {
		switch {
		case runFailed && failDetail != "":
			result.Error = failDetail
		case len(result.Log) > 0:
			result.Error = lastNonEmpty(result.Log)
		default:
			result.Error = "Workflow failed"
		}
	}
}

func lastNonEmpty(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}
