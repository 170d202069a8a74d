package runner

import (
	"os/exec"

	relay "github.com/agent-relay/relay-go"
)

// runnerCommandName is the well-known command the workflow runner ships
// as, looked up on PATH.
const runnerCommandName = "agent-relay"

// resolveRunnerCommand mirrors the broker binary resolution idea (§4.3)
// but for the workflow-runner command: an explicit override, if given,
// is returned as-is (PATH-resolved); otherwise "agent-relay" is looked
// up on PATH, falling back to "npx agent-relay" when not found, since
// the runner commonly ships as an npm package without a global install.
//
// Returns the command to exec and any argv prefix to prepend before
// "run <config>" (empty except for the npx fallback, where it is
// ["agent-relay"]).
func resolveRunnerCommand(explicit string) (cmd string, argvPrefix []string, err error) {
	if explicit != "" {
		return explicit, nil, nil
	}
	if found, lookErr := exec.LookPath(runnerCommandName); lookErr == nil {
		return found, nil, nil
	}
	if _, lookErr := exec.LookPath("npx"); lookErr == nil {
		return "npx", []string{runnerCommandName}, nil
	}
	return "", nil, relay.ErrRunnerNotFound
}
