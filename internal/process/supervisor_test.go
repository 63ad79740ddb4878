package process

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"syscall"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSupervisor creates a Supervisor running sh -c script with short
// timeouts for testing.
func newTestSupervisor(script string) *Supervisor {
	s := New(Spec{
		Path: "/bin/sh",
		Args: []string{"-c", script},
		Name: "test",
	}, testLogger())
	s.gracefulTimeout = 100 * time.Millisecond
	return s
}

// collectEvents drains the stream to completion, failing the test if it does
// not close within the timeout.
func collectEvents(t *testing.T, events <-chan Event, timeout time.Duration) []Event {
	t.Helper()
	var out []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatal("timeout waiting for event stream to close")
			return nil
		}
	}
}

func TestStartTerminateBracketing(t *testing.T) {
	s := newTestSupervisor("echo out; echo err 1>&2; exit 3")
	events, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	evs := collectEvents(t, events, 2*time.Second)
	if len(evs) < 2 {
		t.Fatalf("expected at least Started and Terminated, got %d events", len(evs))
	}
	if evs[0].Kind != KindStarted {
		t.Errorf("first event = %v, want started", evs[0].Kind)
	}
	if evs[0].PID == 0 {
		t.Error("Started event has no PID")
	}
	last := evs[len(evs)-1]
	if last.Kind != KindTerminated {
		t.Errorf("last event = %v, want terminated", last.Kind)
	}
	if last.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", last.ExitCode)
	}
	for _, ev := range evs[1 : len(evs)-1] {
		if ev.Kind != KindStdout && ev.Kind != KindStderr {
			t.Errorf("interior event has kind %v", ev.Kind)
		}
	}
}

func TestPerPipeReconstruction(t *testing.T) {
	s := newTestSupervisor(`printf 'abc\ndef'; printf 'XYZ' 1>&2`)
	events, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	var stdout, stderr strings.Builder
	for _, ev := range collectEvents(t, events, 2*time.Second) {
		switch ev.Kind {
		case KindStdout:
			stdout.WriteString(ev.Text)
		case KindStderr:
			stderr.WriteString(ev.Text)
		}
	}
	if got := stdout.String(); got != "abc\ndef" {
		t.Errorf("stdout = %q, want %q", got, "abc\ndef")
	}
	if got := stderr.String(); got != "XYZ" {
		t.Errorf("stderr = %q, want %q", got, "XYZ")
	}
}

func TestNoEmptyOutputEvents(t *testing.T) {
	s := newTestSupervisor("echo a; echo b; echo c")
	events, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	for _, ev := range collectEvents(t, events, 2*time.Second) {
		if (ev.Kind == KindStdout || ev.Kind == KindStderr) && ev.Text == "" {
			t.Error("got empty output event")
		}
	}
}

func TestLaunchError(t *testing.T) {
	s := New(Spec{
		Path: "/nonexistent/command/that/does/not/exist",
		Name: "missing",
	}, testLogger())

	events, err := s.Start(context.Background())
	if err == nil {
		t.Fatal("expected launch error")
	}
	if events != nil {
		t.Error("expected no stream on launch failure")
	}
	var launchErr *LaunchError
	if !errors.As(err, &launchErr) {
		t.Errorf("error is %T, want *LaunchError", err)
	}
}

func TestCancellationKillsProcess(t *testing.T) {
	s := newTestSupervisor("sleep 10")
	ctx, cancel := context.WithCancel(context.Background())
	events, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	pid := s.PID()
	cancel()

	evs := collectEvents(t, events, 2*time.Second)
	for _, ev := range evs {
		if ev.Kind == KindTerminated && ev.ExitCode == 0 {
			t.Error("cancelled run reported exit code 0")
		}
	}

	// The child must be gone once the stream has closed.
	if err := syscall.Kill(pid, 0); err == nil {
		t.Errorf("process %d still alive after cancellation", pid)
	}
}

func TestCancelAfterExitIsNoop(t *testing.T) {
	s := newTestSupervisor("true")
	events, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	collectEvents(t, events, 2*time.Second)

	s.Terminate() // no-op, must not panic
	s.Terminate()
}

func TestForceKillOnTimeout(t *testing.T) {
	// Process that ignores SIGTERM.
	s := newTestSupervisor(`trap '' TERM; sleep 10`)
	s.gracefulTimeout = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	events, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	cancel()
	collectEvents(t, events, 3*time.Second)
}

func TestRunCollected(t *testing.T) {
	s := newTestSupervisor("echo hello; echo world 1>&2; exit 5")
	out, code, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 5 {
		t.Errorf("exit code = %d, want 5", code)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "world") {
		t.Errorf("collected output missing payloads: %q", out)
	}
}

func TestRunCancelledNeverReportsClean(t *testing.T) {
	s := newTestSupervisor("sleep 10")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	out, code, err := s.Run(ctx)
	// Whether or not the Terminated event survived the cancellation, the
	// killed run must not come back as a clean zero-exit result.
	if err == nil && code == 0 {
		t.Errorf("cancelled run reported clean result: out=%q", out)
	}
}

func TestRunLaunchError(t *testing.T) {
	s := New(Spec{Path: "/nonexistent/bin", Name: "missing"}, testLogger())
	if _, _, err := s.Run(context.Background()); err == nil {
		t.Fatal("expected launch error")
	}
}

func TestRunIDsMonotonic(t *testing.T) {
	a := newTestSupervisor("true")
	b := newTestSupervisor("true")
	if a.RunID() >= b.RunID() {
		t.Errorf("run IDs not monotonic: %d then %d", a.RunID(), b.RunID())
	}
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("WINEVAT_TEST_VAR", "parent")

	s := New(Spec{
		Path: "/bin/sh",
		Args: []string{"-c", `printf '%s' "$WINEVAT_TEST_VAR"`},
		Env:  map[string]string{"WINEVAT_TEST_VAR": "child"},
		Name: "test",
	}, testLogger())

	out, code, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if out != "child" {
		t.Errorf("overlay value = %q, want %q", out, "child")
	}
}

func TestExitCodeFromError(t *testing.T) {
	if got := exitCodeFromError(nil); got != 0 {
		t.Errorf("exitCodeFromError(nil) = %d, want 0", got)
	}
	if got := exitCodeFromError(errors.New("boom")); got != 1 {
		t.Errorf("exitCodeFromError(non-exit) = %d, want 1", got)
	}
}
