package runner

import (
	"fmt"
	"strings"

	"github.com/agent-relay/relay-go/workflow"
	"gopkg.in/yaml.v3"
)

// applyOverrides substitutes {{var}} occurrences in every string field of
// doc with the matching entry from vars, except fields nested under a
// "steps" key — step task text is left for the runner's own variable
// handling, not this SDK's. trajectoryEnabled, when non-nil, overwrites
// the resulting document's trajectory.enable toggle (creating the
// trajectory block if doc had none).
func applyOverrides(doc workflow.Document, vars map[string]string, trajectoryEnabled *bool) (workflow.Document, error) {
	effective := doc
	if len(vars) > 0 {
		data, err := yaml.Marshal(doc)
		if err != nil {
			return workflow.Document{}, fmt.Errorf("marshal for substitution: %w", err)
		}
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return workflow.Document{}, fmt.Errorf("unmarshal for substitution: %w", err)
		}
		substituted := substitute(generic, vars)
		out, err := yaml.Marshal(substituted)
		if err != nil {
			return workflow.Document{}, fmt.Errorf("marshal substituted document: %w", err)
		}
		if err := yaml.Unmarshal(out, &effective); err != nil {
			return workflow.Document{}, fmt.Errorf("unmarshal substituted document: %w", err)
		}
	}

	if trajectoryEnabled != nil {
		if effective.Trajectory == nil {
			effective.Trajectory = &workflow.Trajectory{}
		} else {
			t := *effective.Trajectory
			effective.Trajectory = &t
		}
		effective.Trajectory.Enable = trajectoryEnabled
	}

	return effective, nil
}

// substitute recursively walks a generic YAML-decoded value, replacing
// {{var}} placeholders in every string leaf, but skipping the subtree
// reached through any map key named "steps" (case-insensitive) so step
// task text passes through untouched.
func substitute(node any, vars map[string]string) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if strings.EqualFold(k, "steps") {
				out[k] = val
				continue
			}
			out[k] = substitute(val, vars)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = substitute(item, vars)
		}
		return out
	case string:
		return substituteString(v, vars)
	default:
		return v
	}
}

func substituteString(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}
