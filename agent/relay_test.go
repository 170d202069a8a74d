package agent

import (
	"context"
	"os"
	"testing"
	"time"

	relay "github.com/agent-relay/relay-go"
	"github.com/agent-relay/relay-go/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T) *Relay {
	t.Helper()
	self, err := os.Executable()
	require.NoError(t, err)
	env := append([]string(nil), os.Environ()...)
	env = append(env, fakeBrokerEnvVar+"=1")
	return NewRelay(
		client.WithBinaryPath(self),
		client.WithEnv(env),
		client.WithBrokerName("agent-test"),
		client.WithRequestTimeout(2*time.Second),
		client.WithShutdownTimeout(500*time.Millisecond),
	)
}

func TestSpawnAndWaitReady(t *testing.T) {
	r := newTestRelay(t)
	defer r.Shutdown(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := r.SpawnAndWait(ctx, relay.AgentSpec{Name: "Analyst", Runtime: relay.RuntimePTY}, relay.SpawnAgentParams{}, false, 2000)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, a.Status())
}

func TestStatusTransitionsThroughIdleAndExit(t *testing.T) {
	r := newTestRelay(t)
	defer r.Shutdown(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := r.SpawnAndWait(ctx, relay.AgentSpec{Name: "Analyst", Runtime: relay.RuntimePTY}, relay.SpawnAgentParams{}, false, 2000)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, a.Status())

	require.NoError(t, r.Client().SendInput(ctx, "Analyst", "simulate-idle"))
	sig, err := a.WaitForIdle(2000)
	require.NoError(t, err)
	assert.Equal(t, "idle", sig)
	assert.Equal(t, StatusIdle, a.Status())

	require.NoError(t, r.Client().SendInput(ctx, "Analyst", "simulate-exit"))
	sig, err = a.WaitForExit(2000)
	require.NoError(t, err)
	assert.Equal(t, "exited", sig)
	assert.Equal(t, StatusExited, a.Status())

	zero := 0
	assert.Equal(t, &zero, a.ExitCode())
}

func TestWaitForAgentMessage(t *testing.T) {
	r := newTestRelay(t)
	defer r.Shutdown(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.SpawnAndWait(ctx, relay.AgentSpec{Name: "Analyst", Runtime: relay.RuntimePTY}, relay.SpawnAgentParams{}, false, 2000)
	require.NoError(t, err)

	var received relay.Message
	r.OnMessageReceived = func(msg relay.Message) { received = msg }

	require.NoError(t, r.Client().SendInput(ctx, "Analyst", "simulate-message"))
	sig, err := r.WaitForAgentMessage(ctx, "Analyst", 2000)
	require.NoError(t, err)
	assert.Equal(t, "message", sig)
	assert.Equal(t, "hi", received.Text)
}

func TestWaitForReadyTimesOutWhenAgentNeverSpawns(t *testing.T) {
	r := newTestRelay(t)
	defer r.Shutdown(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.client.Start(ctx))

	sig, err := r.WaitForAgentReady(ctx, "Ghost", 50)
	require.NoError(t, err)
	assert.Equal(t, "timeout", sig)
}

func TestWaitForAnyResolvesOnFirstExit(t *testing.T) {
	r := newTestRelay(t)
	defer r.Shutdown(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a1, err := r.SpawnAndWait(ctx, relay.AgentSpec{Name: "One", Runtime: relay.RuntimePTY}, relay.SpawnAgentParams{}, false, 2000)
	require.NoError(t, err)
	a2, err := r.SpawnAndWait(ctx, relay.AgentSpec{Name: "Two", Runtime: relay.RuntimePTY}, relay.SpawnAgentParams{}, false, 2000)
	require.NoError(t, err)

	require.NoError(t, r.Client().SendInput(ctx, "Two", "simulate-exit"))

	name, err := r.WaitForAny(ctx, []*Agent{a1, a2}, 2000)
	require.NoError(t, err)
	assert.Equal(t, "Two", name)
}

func TestPerCLISpawnerGeneratesName(t *testing.T) {
	r := newTestRelay(t)
	defer r.Shutdown(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := r.SpawnClaude(ctx, "", "do the thing")
	require.NoError(t, err)
	assert.Contains(t, a.Name(), "claude-")
}
