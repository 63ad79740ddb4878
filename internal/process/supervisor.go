package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/winevat/winevat/internal/logging"
)

// EventBufferSize is the channel capacity for a run's event stream and for
// channels that mirror one.
const EventBufferSize = 64

// Spec describes one child process invocation. A Spec is constructed per
// invocation and owned by the Supervisor it configures.
type Spec struct {
	// Path is the executable to launch.
	Path string

	// Args are the arguments, not including the executable itself.
	Args []string

	// Dir is the working directory. Empty means the parent's.
	Dir string

	// Env is overlaid on the inherited environment; spec-provided keys win.
	Env map[string]string

	// Name is a human-readable name used in logs.
	Name string
}

// LaunchError reports a failure to launch the child process: the executable
// is missing or not runnable, a pipe could not be created, or the working
// directory is invalid. It is fatal to the run and surfaced synchronously.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Supervisor owns the full lifecycle of exactly one child process and
// presents it as the ordered event stream described in the package docs.
// A Supervisor is single-use: create one per invocation.
type Supervisor struct {
	spec   Spec
	logger logging.Logger

	runID uint64
	cmd   *exec.Cmd

	killOnce sync.Once
	done     chan struct{} // closed after Terminated has been emitted

	gracefulTimeout time.Duration // SIGTERM to SIGKILL escalation delay
}

// New creates a Supervisor for the given spec.
func New(spec Spec, logger logging.Logger) *Supervisor {
	return &Supervisor{
		spec:            spec,
		logger:          logger,
		runID:           nextRunID(),
		done:            make(chan struct{}),
		gracefulTimeout: 5 * time.Second,
	}
}

// RunID returns the opaque identifier assigned to this run.
func (s *Supervisor) RunID() uint64 { return s.runID }

// PID returns the OS process ID, or 0 before a successful Start.
func (s *Supervisor) PID() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Start launches the child process and returns its event stream. A failure
// to launch is returned synchronously as a *LaunchError and no stream is
// produced.
//
// On success the returned channel yields exactly one Started event first,
// then Stdout/Stderr chunks as the two pipes produce them, then exactly one
// Terminated event, after which the channel is closed. Cancelling ctx before
// Terminated sends a terminate signal to the child if it is still alive;
// events that cannot be delivered to a cancelled consumer are dropped so the
// child is always reaped and the channel always closed.
func (s *Supervisor) Start(ctx context.Context) (<-chan Event, error) {
	cmd := exec.Command(s.spec.Path, s.spec.Args...)
	cmd.Dir = s.spec.Dir
	cmd.Env = mergedEnv(s.spec.Env)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Name: s.spec.Name, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &LaunchError{Name: s.spec.Name, Err: err}
	}

	if err := cmd.Start(); err != nil {
		s.logger.Error("Failed to start process", "name", s.spec.Name, "path", s.spec.Path, "error", err)
		return nil, &LaunchError{Name: s.spec.Name, Err: err}
	}
	s.cmd = cmd

	s.logger.Info("Process started", "name", s.spec.Name, "run_id", s.runID, "pid", cmd.Process.Pid)

	events := make(chan Event, EventBufferSize)
	events <- Event{Kind: KindStarted, RunID: s.runID, PID: cmd.Process.Pid}

	// Drain both pipes concurrently. Each drainer is a single goroutine
	// sending into the shared channel, so per-pipe order is preserved.
	var drained sync.WaitGroup
	drained.Add(2)
	go func() {
		defer drained.Done()
		s.drain(ctx, stdout, KindStdout, events)
	}()
	go func() {
		defer drained.Done()
		s.drain(ctx, stderr, KindStderr, events)
	}()

	// Terminate the child when the consumer cancels before natural exit.
	go func() {
		select {
		case <-ctx.Done():
			s.terminate()
		case <-s.done:
		}
	}()

	go func() {
		// Wait must not run before both pipes report end-of-stream, or
		// buffered output would be lost.
		drained.Wait()
		code := exitCodeFromError(cmd.Wait())
		s.logger.Info("Process exited", "name", s.spec.Name, "run_id", s.runID, "exit_code", code)
		s.emit(ctx, events, Event{Kind: KindTerminated, RunID: s.runID, ExitCode: code})
		close(events)
		close(s.done)
	}()

	return events, nil
}

// Run starts the child and blocks until it exits, concatenating all output
// chunks in stream order. It is the synchronous strategy used when the
// caller wants a single aggregated result instead of live streaming.
func (s *Supervisor) Run(ctx context.Context) (string, int, error) {
	events, err := s.Start(ctx)
	if err != nil {
		return "", -1, err
	}

	var out strings.Builder
	code := -1
	terminated := false
	for ev := range events {
		switch ev.Kind {
		case KindStdout, KindStderr:
			out.WriteString(ev.Text)
		case KindTerminated:
			code = ev.ExitCode
			terminated = true
		}
	}
	if !terminated {
		// The Terminated event is only ever dropped after the consumer's
		// context is cancelled; a killed run must not look like a clean one.
		if err := ctx.Err(); err != nil {
			return out.String(), -1, err
		}
		return out.String(), -1, errors.New("event stream closed before termination")
	}
	return out.String(), code, nil
}

// Terminate requests termination of the child process. It is safe to call
// at any time and from any goroutine; only the first call signals.
func (s *Supervisor) Terminate() {
	s.terminate()
}

// drain reads whatever bytes are available from one pipe and forwards each
// non-empty read as one event. It returns when the pipe reports
// end-of-stream.
func (s *Supervisor) drain(ctx context.Context, r io.Reader, kind Kind, events chan<- Event) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			text := strings.ToValidUTF8(string(buf[:n]), "�")
			s.emit(ctx, events, Event{Kind: kind, RunID: s.runID, Text: text})
		}
		if err != nil {
			if err != io.EOF && !errors.Is(err, os.ErrClosed) {
				s.logger.Warn("Error reading output", "name", s.spec.Name, "source", kind.String(), "error", err)
			}
			return
		}
	}
}

// emit delivers an event to the stream. A blocked send wakes up when the
// consumer cancels; after cancellation delivery turns best-effort so the
// drainers can finish and the child can be reaped.
func (s *Supervisor) emit(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
		select {
		case events <- ev:
		default:
		}
	}
}

// terminate sends SIGTERM to the child exactly once, escalating to SIGKILL
// if it has not exited after the graceful timeout. Calling after natural
// termination is a no-op.
func (s *Supervisor) terminate() {
	s.killOnce.Do(func() {
		if s.cmd == nil || s.cmd.Process == nil {
			return
		}
		select {
		case <-s.done:
			return
		default:
		}

		pid := s.cmd.Process.Pid
		s.logger.Info("Sending SIGTERM to process group", "name", s.spec.Name, "run_id", s.runID, "pid", pid)

		// Signal the whole group so helpers spawned by the child cannot
		// hold the output pipes open past termination.
		if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
			s.logger.Warn("Failed to send SIGTERM", "error", err)
		}

		go func() {
			select {
			case <-s.done:
			case <-time.After(s.gracefulTimeout):
				s.logger.Warn("Graceful shutdown timeout, forcing kill", "run_id", s.runID)
				if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
					s.logger.Error("Failed to kill process", "error", err)
				}
			}
		}()
	})
}

// exitCodeFromError extracts the exit code from a Wait error.
// Returns 0 for nil, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// mergedEnv overlays spec-provided variables on the inherited environment.
// Returns nil (inherit as-is) when there is nothing to overlay. Duplicate
// keys are resolved by os/exec in favor of the last entry, so overlay
// values win over inherited ones.
func mergedEnv(overlay map[string]string) []string {
	if len(overlay) == 0 {
		return nil
	}
	env := os.Environ()
	for k, v := range overlay {
		env = append(env, k+"="+v)
	}
	return env
}
