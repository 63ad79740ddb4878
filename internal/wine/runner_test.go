package wine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/winevat/winevat/internal/config"
	"github.com/winevat/winevat/internal/events"
	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/process"
)

func testLogger() logging.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFakeBinary installs a shell script at <root>/bin/<name> so the
// Runner's configured binary paths resolve to something executable.
func writeFakeBinary(t *testing.T, root, name, script string) {
	t.Helper()
	binDir := filepath.Join(root, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(binDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	return config.Config{
		AppRoot:   root,
		WineRoot:  root,
		Prefix:    filepath.Join(root, "prefix"),
		LogDir:    filepath.Join(root, "logs"),
		WineDebug: "fixme-all",
	}
}

func newTestRunner(t *testing.T, wineScript string) (*Runner, config.Config) {
	t.Helper()
	cfg := testConfig(t)
	writeFakeBinary(t, cfg.WineRoot, "wine64", wineScript)
	r := NewRunner(Options{
		Config:  cfg,
		Logger:  testLogger(),
		Tracker: process.NewTracker(testLogger()),
	})
	return r, cfg
}

func TestRunCollectedOutput(t *testing.T) {
	r, _ := newTestRunner(t, `echo "wine says $1"`)

	out, err := r.RunCollected(context.Background(), []string{"hello"}, nil)
	if err != nil {
		t.Fatalf("RunCollected: %v", err)
	}
	if out != "wine says hello\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunCollectedExitError(t *testing.T) {
	r, _ := newTestRunner(t, `echo "partial"; exit 7`)

	out, err := r.RunCollected(context.Background(), nil, nil)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("Code = %d, want 7", exitErr.Code)
	}
	if out != "partial\n" {
		t.Errorf("partial output not preserved: %q", out)
	}
}

func TestRunCollectedLaunchError(t *testing.T) {
	cfg := testConfig(t) // no binary installed
	r := NewRunner(Options{Config: cfg, Logger: testLogger()})

	_, err := r.RunCollected(context.Background(), nil, nil)
	var launchErr *process.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("expected *process.LaunchError, got %v", err)
	}
}

func TestRunStreamingMirrorsToLogFile(t *testing.T) {
	r, _ := newTestRunner(t, `echo out; echo err >&2`)

	run, err := r.RunStreaming(context.Background(), []string{"-v"}, map[string]string{"CUSTOM": "1"})
	if err != nil {
		t.Fatalf("RunStreaming: %v", err)
	}
	for range run.Events {
	}

	if run.LogPath == "" {
		t.Fatal("no log path on run")
	}
	data, err := os.ReadFile(run.LogPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	for _, want := range []string{"wine64", "-v", "CUSTOM=1", "WINEPREFIX=", "WINEDEBUG=fixme-all", "out\n", "err\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q:\n%s", want, content)
		}
	}
}

func TestRunStreamingEventOrder(t *testing.T) {
	r, _ := newTestRunner(t, `echo hi`)

	run, err := r.RunStreaming(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("RunStreaming: %v", err)
	}

	var kinds []process.Kind
	for ev := range run.Events {
		kinds = append(kinds, ev.Kind)
	}
	if len(kinds) < 2 {
		t.Fatalf("too few events: %v", kinds)
	}
	if kinds[0] != process.KindStarted {
		t.Errorf("first event = %v, want Started", kinds[0])
	}
	if kinds[len(kinds)-1] != process.KindTerminated {
		t.Errorf("last event = %v, want Terminated", kinds[len(kinds)-1])
	}
}

func TestRunStreamingTracksRun(t *testing.T) {
	r, _ := newTestRunner(t, `sleep 5`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run, err := r.RunStreaming(ctx, nil, nil)
	if err != nil {
		t.Fatalf("RunStreaming: %v", err)
	}

	// First event is Started; after it the run must be tracked.
	ev := <-run.Events
	if ev.Kind != process.KindStarted {
		t.Fatalf("first event = %v", ev.Kind)
	}
	info := r.tracker.Get(run.ID)
	if info.State != process.StateRunning {
		t.Errorf("state after Started = %v, want running", info.State)
	}

	if !r.tracker.Cancel(run.ID) {
		t.Error("Cancel returned false for live run")
	}
	for range run.Events {
	}
	if got := r.tracker.Get(run.ID).State; got != process.StateIdle {
		t.Errorf("state after stream close = %v, want idle", got)
	}
}

func TestRunPublishesBusEvents(t *testing.T) {
	cfg := testConfig(t)
	writeFakeBinary(t, cfg.WineRoot, "wine64", `exit 3`)

	bus := events.New()
	terminated := make(chan events.RunTerminatedEvent, 1)
	defer bus.Subscribe(func(e events.RunTerminatedEvent) { terminated <- e })()

	r := NewRunner(Options{Config: cfg, Logger: testLogger(), Bus: bus})
	_, err := r.RunCollected(context.Background(), nil, nil)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}

	select {
	case e := <-terminated:
		if e.Name != "wine" || e.ExitCode != 3 {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no RunTerminatedEvent published")
	}
}

func TestCollectStreamClosedWithoutTermination(t *testing.T) {
	ch := make(chan process.Event, 2)
	ch <- process.Event{Kind: process.KindStarted, RunID: 1, PID: 123}
	ch <- process.Event{Kind: process.KindStdout, Text: "partial"}
	close(ch)

	out, err := collect(context.Background(), &Run{ID: 1, Events: ch})
	if err == nil {
		t.Fatal("truncated stream reported a clean result")
	}
	if out != "partial" {
		t.Errorf("partial output not preserved: %q", out)
	}
}

func TestCollectCancelledContext(t *testing.T) {
	ch := make(chan process.Event, 1)
	ch <- process.Event{Kind: process.KindStarted, RunID: 2, PID: 123}
	close(ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collect(ctx, &Run{ID: 2, Events: ch})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWineserverCollected(t *testing.T) {
	cfg := testConfig(t)
	writeFakeBinary(t, cfg.WineRoot, "wineserver", `echo "prefix=$WINEPREFIX"`)
	r := NewRunner(Options{Config: cfg, Logger: testLogger()})

	out, err := r.Wineserver(context.Background(), []string{"-k"})
	if err != nil {
		t.Fatalf("Wineserver: %v", err)
	}
	if !strings.Contains(out, "prefix="+cfg.Prefix) {
		t.Errorf("wineserver did not see WINEPREFIX: %q", out)
	}
}

func TestVersionTrimmed(t *testing.T) {
	r, _ := newTestRunner(t, `echo "wine-9.0 (Staging)"`)

	got, err := r.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if got != "wine-9.0 (Staging)" {
		t.Errorf("Version = %q", got)
	}
}
