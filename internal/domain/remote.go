package domain

import "context"

// ExecResult is the outcome of a remote command that ran to completion.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ProcessHandle controls a command started in the background.
type ProcessHandle interface {
	Wait() error
	Kill() error
}

// RemoteExecutor runs commands on remote hosts.
// Run returns a nil error for non-zero exit codes; the caller inspects ExitCode.
type RemoteExecutor interface {
	Run(ctx context.Context, host, command string) (ExecResult, error)
	RunBackground(ctx context.Context, host, command string) (ProcessHandle, error)
}
