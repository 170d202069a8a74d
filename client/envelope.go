package client

import (
	"bytes"
	"encoding/json"

	relay "github.com/agent-relay/relay-go"
)

// encodeEnvelope serializes an envelope as a single newline-terminated
// JSON line, ready to be written directly to the broker's stdin.
func encodeEnvelope(env relay.Envelope) ([]byte, error) {
	env.V = relay.ProtocolVersion
	data, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decodeEnvelope parses one line of broker stdout into an envelope. It
// never returns an error for malformed input — callers that want to know
// why a line was dropped should log it themselves; the grammar here is
// deliberately forgiving because the broker may emit non-protocol lines
// (startup banners, warnings) before it speaks the wire protocol.
//
// ok is false when the line is not a JSON object, lacks the expected
// version, or carries a non-string type.
func decodeEnvelope(line []byte) (env relay.Envelope, ok bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return relay.Envelope{}, false
	}
	if err := json.Unmarshal(line, &env); err != nil {
		return relay.Envelope{}, false
	}
	if env.V != relay.ProtocolVersion {
		return relay.Envelope{}, false
	}
	if env.Type == "" {
		return relay.Envelope{}, false
	}
	return env, true
}
