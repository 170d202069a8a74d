package client

import "strings"

// cliDefaultArgs is a per-CLI prefix of default arguments prepended to
// every spawn. Policy, not data: kept as a package-level map that is
// trivially extended as new CLI backends appear (see design notes).
var cliDefaultArgs = map[string][]string{
	"codex": {"-c", "check_for_update_on_startup=false"},
}

// cliModelFlagCLIs is the set of CLI identifiers that accept a --model
// flag. New CLIs appear frequently; add them here.
var cliModelFlagCLIs = map[string]bool{
	"claude": true,
	"codex":  true,
	"gemini": true,
	"goose":  true,
	"aider":  true,
}

// normalizeCLI strips a colon-delimited variant suffix (e.g. "claude:sonnet"
// normalizes to "claude") and lowercases for case-insensitive lookup.
func normalizeCLI(cli string) string {
	if idx := strings.IndexByte(cli, ':'); idx >= 0 {
		cli = cli[:idx]
	}
	return strings.ToLower(cli)
}

// hasModelArg reports whether args already passes --model or --model=...
func hasModelArg(args []string) bool {
	for _, a := range args {
		if a == "--model" || strings.HasPrefix(a, "--model=") {
			return true
		}
	}
	return false
}

// hasPrefix reports whether args already begins with prefix, element by
// element. Used so a second application of shapeArgs over its own output
// does not re-prepend the default-args block.
func hasPrefix(args, prefix []string) bool {
	if len(prefix) == 0 {
		return true
	}
	if len(args) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if args[i] != p {
			return false
		}
	}
	return true
}

// shapeArgs builds the effective argument vector for a spawn request: the
// CLI's default-args prefix, then an injected --model flag when the CLI
// accepts one and the caller has not already supplied one, then the
// caller's own args unchanged.
//
// Idempotent: applying shapeArgs to its own output for the same CLI and
// model yields the same vector (neither the default-args prefix nor the
// model flag is duplicated).
func shapeArgs(cli string, args []string, model string) []string {
	key := normalizeCLI(cli)
	defaults := cliDefaultArgs[key]

	tail := args
	if hasPrefix(args, defaults) {
		tail = args[len(defaults):]
	}

	rest := append(append([]string{}, defaults...), tail...)

	if model == "" || !cliModelFlagCLIs[key] || hasModelArg(rest) {
		return rest
	}

	out := make([]string, 0, len(defaults)+2+len(tail))
	out = append(out, defaults...)
	out = append(out, "--model", model)
	out = append(out, tail...)
	return out
}
