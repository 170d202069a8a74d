package runner

// A minimal self-exec fake workflow runner: the test binary re-executes
// itself with RELAY_GO_FAKE_RUNNER set, printing a canned progress-line
// script selected by RELAY_GO_FAKE_RUNNER_SCENARIO and exiting with the
// matching code, rather than needing a real agent-relay runner on PATH.

import (
	"fmt"
	"os"
)

const fakeRunnerEnvVar = "RELAY_GO_FAKE_RUNNER"
const fakeRunnerScenarioVar = "RELAY_GO_FAKE_RUNNER_SCENARIO"

func runFakeRunner() {
	switch os.Getenv(fakeRunnerScenarioVar) {
	case "failure":
		lines := []string{
			"[run] started",
			"[step] build started",
			"[step] build completed",
			"[step] test started",
			"[step] test failed: timeout",
			"[run] failed: one step failed",
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		os.Exit(1)
	default:
		lines := []string{
			"[run] started",
			"[step] build started",
			"[step] build completed",
			"[run] completed",
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		os.Exit(0)
	}
}
