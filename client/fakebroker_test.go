package client

// A fake broker, re-executed from the test binary itself (self-exec
// pattern), stands in for a real agent-relay-broker subprocess. It
// understands just enough of the wire protocol to drive the scenarios in
// client_test.go: hello handshake, request/response correlation
// (including out-of-order replies), scripted events, and scripted exit
// behavior, all controlled via environment variables so no extra files
// or build steps are needed.

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const fakeBrokerEnvVar = "RELAY_GO_FAKE_BROKER"

// runFakeBroker implements the fake broker's stdin/stdout loop. Called
// from TestMain when RELAY_GO_FAKE_BROKER=1.
func runFakeBroker() {
	reader := bufio.NewScanner(os.Stdin)
	reader.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	writer := bufio.NewWriter(os.Stdout)

	dieOn := os.Getenv("RELAY_GO_FAKE_BROKER_DIE_ON")
	noHelloAck := os.Getenv("RELAY_GO_FAKE_BROKER_NO_HELLO") == "1"
	reverseFirstTwo := os.Getenv("RELAY_GO_FAKE_BROKER_REVERSE") == "1"
	preStderr := os.Getenv("RELAY_GO_FAKE_BROKER_STDERR")
	if preStderr != "" {
		fmt.Fprintln(os.Stderr, preStderr)
	}

	var buffered []map[string]any

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

		if dieOn != "" && reqType == dieOn {
			fmt.Fprintln(os.Stderr, "fatal: crashing on "+dieOn)
			os.Exit(1)
		}

		switch reqType {
		case "hello":
			if noHelloAck {
				continue
			}
			ack := map[string]any{
				"v": 1, "type": "hello_ack", "request_id": reqID,
				"payload": map[string]any{"workspace_key": "ws-test"},
			}
			flushLine(ack)
		case "spawn_agent":
			resp := map[string]any{
				"v": 1, "type": "ok", "request_id": reqID,
				"payload": map[string]any{"result": map[string]any{"name": "Analyst", "runtime": "pty"}},
			}
			if reverseFirstTwo {
				buffered = append(buffered, resp)
				if len(buffered) == 2 {
					flushLine(buffered[1])
					flushLine(buffered[0])
					buffered = nil
				}
				continue
			}
			flushLine(resp)
			flushLine(map[string]any{
				"v": 1, "type": "event",
				"payload": map[string]any{"kind": "worker_ready", "name": "Analyst", "runtime": "pty"},
			})
		case "list_agents":
			resp := map[string]any{
				"v": 1, "type": "ok", "request_id": reqID,
				"payload": map[string]any{"result": []any{}},
			}
			if reverseFirstTwo {
				buffered = append(buffered, resp)
				if len(buffered) == 2 {
					flushLine(buffered[1])
					flushLine(buffered[0])
					buffered = nil
				}
				continue
			}
			flushLine(resp)
		case "send_message":
			flushLine(map[string]any{
				"v": 1, "type": "error", "request_id": reqID,
				"payload": map[string]any{"code": "unsupported_operation", "message": "not supported", "retryable": false},
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
