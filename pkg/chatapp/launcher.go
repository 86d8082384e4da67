package chatapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/telemetry/metrics"
)

// DefaultStopGrace is how long the backend gets to exit after SIGTERM
// before it is killed.
const DefaultStopGrace = 10 * time.Second

// Launcher starts the local chat backend as a child process. The process is
// not supervised: its exit is logged and counted, never restarted.
type Launcher struct {
	cfg       config.BackendConfig
	stopGrace time.Duration
	metrics   *metrics.Collector
	logger    *slog.Logger

	mu       sync.Mutex
	exitCode int
	exited   bool
}

// NewLauncher creates a launcher for cfg.
func NewLauncher(cfg config.BackendConfig, collector *metrics.Collector) *Launcher {
	return &Launcher{
		cfg:       cfg,
		stopGrace: DefaultStopGrace,
		metrics:   collector,
		logger:    slog.Default().With("component", "chatapp.launcher"),
	}
}

// Run starts the backend and blocks until it exits or ctx is done. When ctx
// ends the process receives SIGTERM, then SIGKILL after the grace period.
// A non-zero exit is logged and reported through ExitCode; Run returns an
// error only when the process cannot be started.
func (l *Launcher) Run(ctx context.Context) error {
	if l.cfg.Command == "" {
		return errors.New("no backend command configured")
	}

	cmd := exec.CommandContext(ctx, l.cfg.Command, l.cfg.Args...)
	cmd.Dir = l.cfg.Dir
	cmd.Env = l.environ()
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = l.stopGrace

	stdout := &lineLogger{logger: l.logger, level: slog.LevelInfo, stream: "stdout"}
	stderr := &lineLogger{logger: l.logger, level: slog.LevelWarn, stream: "stderr"}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start chat backend %q: %w", l.cfg.Command, err)
	}
	l.logger.Info("chat backend started",
		"command", l.cfg.Command,
		"args", l.cfg.Args,
		"pid", cmd.Process.Pid,
		"port", l.cfg.Port,
	)

	waitErr := cmd.Wait()
	stdout.Flush()
	stderr.Flush()
	code := exitCode(cmd, waitErr)
	l.setExit(code)
	l.metrics.RecordChatBackendExit(code)
	l.metrics.SetChatBackendUp(false)

	switch {
	case ctx.Err() != nil:
		l.logger.Info("chat backend stopped", "exit_code", code)
	case code != 0:
		l.logger.Error("chat backend exited", "exit_code", code, "error", waitErr)
	default:
		l.logger.Warn("chat backend exited", "exit_code", code)
	}
	return nil
}

// ExitCode returns the exit code of the backend and whether it has exited.
func (l *Launcher) ExitCode() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exitCode, l.exited
}

func (l *Launcher) setExit(code int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exitCode = code
	l.exited = true
}

// environ returns the inherited environment plus configured variables,
// PORT and HOST.
func (l *Launcher) environ() []string {
	env := os.Environ()

	keys := make([]string, 0, len(l.cfg.Env))
	for k := range l.cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+l.cfg.Env[k])
	}

	return append(env,
		"PORT="+strconv.Itoa(l.cfg.Port),
		"HOST=localhost",
	)
}

// maxLineBytes bounds a buffered output line; longer lines are logged in
// pieces.
const maxLineBytes = 64 * 1024

// lineLogger logs each line written to it.
type lineLogger struct {
	logger *slog.Logger
	level  slog.Level
	stream string

	mu  sync.Mutex
	buf []byte
}

func (w *lineLogger) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) > maxLineBytes {
		w.emit(w.buf)
		w.buf = nil
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (w *lineLogger) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineLogger) emit(line []byte) {
	text := strings.TrimRight(string(line), "\r")
	if text == "" {
		return
	}
	w.logger.Log(context.Background(), w.level, text, "stream", w.stream)
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
