// Command relayctl is a minimal demonstration of the relay SDK: spawn a
// single agent, wait for it to come ready, send it a prompt, stream its
// output to stdout, and shut down cleanly on SIGINT or the agent's exit.
//
// It exists as a runnable example the way the reference codebase's
// examples/ directory does for its own engines — not as a supported
// general-purpose client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agent-relay/relay-go/agent"
	"github.com/agent-relay/relay-go/client"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "relayctl",
		Short: "Drive a single agent-relay agent from the command line",
	}
	root.AddCommand(newSpawnCmd())
	return root
}

func newSpawnCmd() *cobra.Command {
	var (
		cli     string
		name    string
		model   string
		timeout int
	)

	cmd := &cobra.Command{
		Use:   "spawn [flags] <task>",
		Short: "Spawn one agent, send it a task, and stream its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpawn(cmd.Context(), cli, name, model, args[0], timeout)
		},
	}
	cmd.Flags().StringVar(&cli, "cli", "claude", "CLI identifier to spawn (claude, codex, gemini, goose, aider)")
	cmd.Flags().StringVar(&name, "name", "", "agent name (generated if empty)")
	cmd.Flags().StringVar(&model, "model", "", "model override, for CLIs that accept one")
	cmd.Flags().IntVar(&timeout, "ready-timeout-ms", 15000, "milliseconds to wait for the agent to report ready")
	return cmd
}

func runSpawn(ctx context.Context, cli, name, model, task string, readyTimeoutMs int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := agent.NewRelay(client.WithBrokerName("relayctl"))
	defer r.Shutdown(context.Background())

	var opts []agent.SpawnOption
	if model != "" {
		opts = append(opts, agent.WithModel(model))
	}

	a, err := spawnByCLI(ctx, r, cli, name, task, opts...)
	if err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	fmt.Printf("spawned %s (%s)\n", a.Name(), a.Runtime())

	unsub := a.OnOutput(func(chunk agent.WorkerOutput) {
		fmt.Print(chunk.Chunk)
	})
	defer unsub()

	sig, err := r.WaitForAgentReady(ctx, a.Name(), readyTimeoutMs)
	if err != nil {
		return fmt.Errorf("wait for ready: %w", err)
	}
	if sig != "ready" {
		return fmt.Errorf("agent did not become ready: %s", sig)
	}

	if _, err := a.Send(task); err != nil {
		return fmt.Errorf("send task: %w", err)
	}

	done := make(chan string, 1)
	go func() {
		outcome, _ := a.WaitForExit(0)
		done <- outcome
	}()
	select {
	case outcome := <-done:
		fmt.Printf("\nagent %s finished: %s\n", a.Name(), outcome)
	case <-ctx.Done():
		fmt.Printf("\ninterrupted, shutting down %s\n", a.Name())
	}
	return nil
}

func spawnByCLI(ctx context.Context, r *agent.Relay, cli, name, task string, opts ...agent.SpawnOption) (*agent.Agent, error) {
	switch cli {
	case "claude":
		return r.SpawnClaude(ctx, name, task, opts...)
	case "codex":
		return r.SpawnCodex(ctx, name, task, opts...)
	case "gemini":
		return r.SpawnGemini(ctx, name, task, opts...)
	case "goose":
		return r.SpawnGoose(ctx, name, task, opts...)
	case "aider":
		return r.SpawnAider(ctx, name, task, opts...)
	default:
		return nil, fmt.Errorf("unknown CLI %q", cli)
	}
}
