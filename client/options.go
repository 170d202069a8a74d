package client

import (
	"os"
	"path/filepath"
	"time"
)

const (
	defaultClientName      = "relay-go-sdk"
	defaultClientVersion   = "0.1.0"
	defaultRequestTimeout  = 10 * time.Second
	defaultShutdownTimeout = 3 * time.Second
	defaultTermGrace       = 2 * time.Second
	defaultEventBufferCap  = 1000
)

// Options configures a Client. Built by applying a sequence of Option
// functions over the package defaults, mirroring the functional-options
// pattern used throughout the reference codebase's engine construction.
type Options struct {
	BinaryPath      string
	BinaryArgs      []string
	BrokerName      string
	Channels        []string
	WorkDir         string
	Env             []string // nil = inherit parent environment
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	TermGrace       time.Duration
	ClientName      string
	ClientVersion   string
	EventBufferSize int
}

// Option mutates Options at construction time.
type Option func(*Options)

// WithBinaryPath sets an explicit broker binary path, bypassing the
// default resolution order (see resolveBinary).
func WithBinaryPath(path string) Option {
	return func(o *Options) { o.BinaryPath = path }
}

// WithBinaryArgs appends extra arguments after the broker's "init" argv.
func WithBinaryArgs(args ...string) Option {
	return func(o *Options) { o.BinaryArgs = args }
}

// WithBrokerName sets the --name passed to "init". Defaults to the
// current working directory's base name.
func WithBrokerName(name string) Option {
	return func(o *Options) { o.BrokerName = name }
}

// WithChannels sets the channels the broker joins by default. Defaults
// to ["general"].
func WithChannels(channels ...string) Option {
	return func(o *Options) { o.Channels = channels }
}

// WithWorkDir sets the broker subprocess's working directory. Defaults
// to the caller's own working directory.
func WithWorkDir(dir string) Option {
	return func(o *Options) { o.WorkDir = dir }
}

// WithEnv overrides the broker subprocess's environment. When set, the
// parent's RELAY_API_KEY (if any) is still forwarded unless already
// present in the override (see §6).
func WithEnv(env []string) Option {
	return func(o *Options) { o.Env = env }
}

// WithRequestTimeout sets the per-request timeout. Default 10s.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) { o.RequestTimeout = d }
}

// WithShutdownTimeout sets how long Shutdown waits for a graceful exit
// before escalating to SIGTERM. Default 3s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) { o.ShutdownTimeout = d }
}

// WithEventBufferSize sets the event ring buffer capacity. Default 1000.
func WithEventBufferSize(n int) Option {
	return func(o *Options) { o.EventBufferSize = n }
}

// resolveOptions applies opts over hardcoded defaults, filling in any
// field the caller left unset.
func resolveOptions(opts ...Option) Options {
	o := Options{
		RequestTimeout:  defaultRequestTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
		TermGrace:       defaultTermGrace,
		ClientName:      defaultClientName,
		ClientVersion:   defaultClientVersion,
		EventBufferSize: defaultEventBufferCap,
		Channels:        []string{"general"},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.BrokerName == "" {
		if wd, err := os.Getwd(); err == nil {
			o.BrokerName = filepath.Base(wd)
		} else {
			o.BrokerName = "agent-relay"
		}
	}
	return o
}
