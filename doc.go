// Package relay provides the core SDK for driving a long-lived agent-relay
// broker subprocess and the fleet of agent CLIs it coordinates.
//
// The primary types defined in this package are:
//
//   - [Envelope] — the wire message exchanged with the broker
//   - [AgentSpec] — the declaration of an agent to spawn
//   - [Message] — a relay message sent or received between agents
//
// Protocol transport lives in [github.com/agent-relay/relay-go/client],
// the stateful agent-lifecycle view in
// [github.com/agent-relay/relay-go/agent], and the declarative workflow
// layer in [github.com/agent-relay/relay-go/workflow] and
// [github.com/agent-relay/relay-go/workflow/runner].
package relay
