package agent

// A minimal self-exec fake broker, scripted entirely through send_input
// text commands, drives the facade's derived-state transitions without
// needing a real agent-relay-broker binary: "simulate-idle",
// "simulate-exit", and "simulate-message" each provoke the matching
// broker event for the named agent.

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

const fakeBrokerEnvVar = "RELAY_GO_AGENT_FAKE_BROKER"

func runFakeBroker() {
	reader := bufio.NewScanner(os.Stdin)
	reader.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	writer := bufio.NewWriter(os.Stdout)

	flushLine := func(env map[string]any) {
		data, _ := json.Marshal(env)
		writer.Write(data)
		writer.WriteByte('\n')
		writer.Flush()
	}

	for reader.Scan() {
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			continue
		}
		var req map[string]any
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			continue
		}
		reqType, _ := req["type"].(string)
		reqID, _ := req["request_id"].(string)
		payload, _ := req["payload"].(map[string]any)

		switch reqType {
		case "hello":
			flushLine(map[string]any{
				"v": 1, "type": "hello_ack", "request_id": reqID,
				"payload": map[string]any{"workspace_key": "ws-agent-test"},
			})
		case "spawn_agent":
			agent, _ := payload["agent"].(map[string]any)
			name, _ := agent["name"].(string)
			flushLine(map[string]any{
				"v": 1, "type": "ok", "request_id": reqID,
				"payload": map[string]any{"result": map[string]any{"name": name, "runtime": "pty"}},
			})
			flushLine(map[string]any{
				"v": 1, "type": "event",
				"payload": map[string]any{"kind": "worker_ready", "name": name},
			})
		case "send_input":
			name, _ := payload["name"].(string)
			text, _ := payload["text"].(string)
			switch text {
			case "simulate-idle":
				flushLine(map[string]any{
					"v": 1, "type": "event",
					"payload": map[string]any{"kind": "agent_idle", "name": name, "idle_secs": 12.5},
				})
			case "simulate-exit":
				flushLine(map[string]any{
					"v": 1, "type": "event",
					"payload": map[string]any{"kind": "agent_exited", "name": name, "exit_code": 0.0},
				})
			case "simulate-message":
				flushLine(map[string]any{
					"v": 1, "type": "event",
					"payload": map[string]any{"kind": "relay_inbound", "to": "peer", "from": name, "text": "hi", "event_id": "evt-1"},
				})
			}
			flushLine(map[string]any{
				"v": 1, "type": "ok", "request_id": reqID,
				"payload": map[string]any{"result": map[string]any{}},
			})
		case "shutdown":
			flushLine(map[string]any{
				"v": 1, "type": "ok", "request_id": reqID,
				"payload": map[string]any{"result": map[string]any{}},
			})
		default:
			flushLine(map[string]any{
				"v": 1, "type": "ok", "request_id": reqID,
				"payload": map[string]any{"result": map[string]any{}},
			})
		}
	}
}
