package client

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// defaultBrokerBinaryName is the bare executable name used as the final
// fallback when no broker binary can be located anywhere else.
const defaultBrokerBinaryName = "agent-relay"

// brokerBinaryName is the well-known name looked up on PATH and under the
// home-relative install directory.
const brokerBinaryName = "agent-relay-broker"

// expandTilde expands a leading ~/ or ~\ to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// isExplicitPath reports whether path names a specific location rather
// than a bare command name to be looked up on PATH: it contains a
// directory separator, or starts with "." or "~".
func isExplicitPath(path string) bool {
	if path == "" {
		return false
	}
	if strings.ContainsRune(path, os.PathSeparator) || strings.ContainsRune(path, '/') {
		return true
	}
	return strings.HasPrefix(path, ".") || strings.HasPrefix(path, "~")
}

// resolveBinary implements the broker binary resolution order (§4.3):
// explicit path (validated, tilde-expanded) > well-known home-relative
// path > PATH lookup > bare name as a last resort.
//
// When explicit is non-empty, it is expanded and checked for existence;
// a missing explicit path is a hard failure (the caller should not fall
// back silently to a different binary than the one it was told to use).
func resolveBinary(explicit string) (path string, explicitDir string, err error) {
	if explicit != "" {
		expanded := expandTilde(explicit)
		if isExplicitPath(explicit) {
			if _, statErr := os.Stat(expanded); statErr != nil {
				return "", "", fmt.Errorf("relay: explicit broker binary %q not found: %w", explicit, statErr)
			}
			abs, absErr := filepath.Abs(expanded)
			if absErr != nil {
				abs = expanded
			}
			return abs, filepath.Dir(abs), nil
		}
		// Bare name given explicitly: still resolve via PATH, but it is
		// not "explicit" for PATH-augmentation purposes.
		if found, lookErr := exec.LookPath(expanded); lookErr == nil {
			return found, "", nil
		}
		return expanded, "", nil
	}

	if home, homeErr := os.UserHomeDir(); homeErr == nil {
		candidate := filepath.Join(home, ".agent-relay", "bin", brokerBinaryName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, filepath.Dir(candidate), nil
		}
	}

	if found, lookErr := exec.LookPath(brokerBinaryName); lookErr == nil {
		return found, "", nil
	}

	return defaultBrokerBinaryName, "", nil
}

// pathWithDir returns env's PATH entries with dir prepended, unless dir is
// empty or already present. env is a "KEY=VALUE" slice as produced by
// os.Environ.
func pathWithDir(env []string, dir string) []string {
	if dir == "" {
		return env
	}
	out := make([]string, len(env))
	copy(out, env)
	for i, kv := range out {
		if !strings.HasPrefix(kv, "PATH=") {
			continue
		}
		current := kv[len("PATH="):]
		for _, entry := range filepath.SplitList(current) {
			if entry == dir {
				return out
			}
		}
		out[i] = "PATH=" + dir + string(os.PathListSeparator) + current
		return out
	}
	return append(out, "PATH="+dir)
}
