// Package ssh runs fault injection commands on cluster nodes over SSH.
package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

const (
	DefaultPort        = 22
	DefaultDialTimeout = 10 * time.Second

	// killGrace bounds the wait for output copying to stop after a cancelled command.
	killGrace = 2 * time.Second
)

var (
	// ErrNoAuthMethod is returned when neither a key nor a password is configured.
	ErrNoAuthMethod = errors.New("ssh: no auth method configured")
)

// Config holds SSH connection settings shared by all nodes.
type Config struct {
	User           string
	Port           int
	KeyPath        string
	Password       string
	KnownHostsPath string
	DialTimeout    time.Duration
}

// Executor implements domain.RemoteExecutor. Every command opens its own connection.
type Executor struct {
	logger       *slog.Logger
	port         int
	dialTimeout  time.Duration
	clientConfig *ssh.ClientConfig
}

var _ domain.RemoteExecutor = (*Executor)(nil)

// New builds an executor from the config, loading the private key and known hosts file.
func New(logger *slog.Logger, cfg Config) (*Executor, error) {
	logger = logger.With("component", "ssh-executor")

	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}

	var auth []ssh.AuthMethod

	if cfg.KeyPath != "" {
		signer, err := loadSigner(cfg.KeyPath)
		if err != nil {
			return nil, err
		}

		auth = append(auth, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}

	if len(auth) == 0 {
		return nil, ErrNoAuthMethod
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in via known hosts path

	if cfg.KnownHostsPath != "" {
		cb, err := knownhosts.New(cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("load known hosts %s: %w", cfg.KnownHostsPath, err)
		}

		hostKeyCallback = cb
	} else {
		logger.Warn("known hosts file not configured, host keys are not verified")
	}

	return &Executor{
		logger:      logger,
		port:        cfg.Port,
		dialTimeout: cfg.DialTimeout,
		clientConfig: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            auth,
			HostKeyCallback: hostKeyCallback,
			Timeout:         cfg.DialTimeout,
		},
	}, nil
}

func loadSigner(path string) (ssh.Signer, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ssh key %s: %w", path, err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key %s: %w", path, err)
	}

	return signer, nil
}

func (e *Executor) dial(ctx context.Context, host string) (*ssh.Client, error) {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, strconv.Itoa(e.port))
	}

	dialer := net.Dialer{Timeout: e.dialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, e.clientConfig)
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}

	// the handshake deadline must not cut long running commands
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(c, chans, reqs), nil
}

// Run executes the command and waits for it to finish or for ctx to be done.
func (e *Executor) Run(ctx context.Context, host, command string) (domain.ExecResult, error) {
	client, err := e.dial(ctx, host)
	if err != nil {
		return domain.ExecResult{}, err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return domain.ExecResult{}, fmt.Errorf("open session on %s: %w", host, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer

	session.Stdout = &stdout
	session.Stderr = &stderr

	errCh := make(chan error, 1)

	go func() {
		errCh <- session.Run(command)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = client.Close()

		runErr := fmt.Errorf("run on %s: %w", host, ctx.Err())

		// Run returns only after the output copies finish, so the buffers are safe to read then.
		grace := time.NewTimer(killGrace)
		defer grace.Stop()

		select {
		case <-errCh:
			return domain.ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}, runErr
		case <-grace.C:
			e.logger.WarnContext(ctx, "remote command output still streaming after kill", "host", host)

			return domain.ExecResult{}, runErr
		}
	case err = <-errCh:
	}

	res := domain.ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()

			e.logger.DebugContext(ctx, "remote command exited", "host", host, "exitCode", res.ExitCode)

			return res, nil
		}

		return res, fmt.Errorf("run on %s: %w", host, err)
	}

	e.logger.DebugContext(ctx, "remote command done", "host", host)

	return res, nil
}

// RunBackground starts the command and returns without waiting for it.
// The connection lives until the process exits or Kill is called.
func (e *Executor) RunBackground(ctx context.Context, host, command string) (domain.ProcessHandle, error) {
	client, err := e.dial(ctx, host)
	if err != nil {
		return nil, err
	}

	session, err := client.NewSession()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("open session on %s: %w", host, err)
	}

	err = session.Start(command)
	if err != nil {
		_ = session.Close()
		_ = client.Close()

		return nil, fmt.Errorf("start on %s: %w", host, err)
	}

	e.logger.DebugContext(ctx, "background command started", "host", host)

	return &process{client: client, session: session}, nil
}

type process struct {
	client  *ssh.Client
	session *ssh.Session

	waitOnce sync.Once
	waitErr  error
}

// Wait blocks until the remote process exits. It is safe to call more than once.
func (p *process) Wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.session.Wait()
		_ = p.client.Close()
	})

	return p.waitErr
}

// Kill signals the remote process and drops the connection.
// Servers that ignore signals see the channel close instead.
func (p *process) Kill() error {
	sigErr := p.session.Signal(ssh.SIGKILL)
	closeErr := p.client.Close()

	if closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		return fmt.Errorf("close ssh connection: %w", errors.Join(sigErr, closeErr))
	}

	return nil
}
