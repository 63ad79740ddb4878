package wine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/winevat/winevat/internal/config"
	"github.com/winevat/winevat/internal/events"
	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/process"
)

// ExitError reports a non-zero exit from a collected run. The collected
// output is still returned alongside it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Options configures a Runner. Bus and Tracker are optional; a Runner
// without them still runs processes and writes log files.
type Options struct {
	Config  config.Config
	Logger  logging.Logger
	Bus     *events.Bus
	Tracker *process.Tracker
}

// Runner launches the configured wine binaries under process supervision.
type Runner struct {
	cfg     config.Config
	logger  logging.Logger
	bus     *events.Bus
	tracker *process.Tracker
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	return &Runner{
		cfg:     opts.Config,
		logger:  opts.Logger,
		bus:     opts.Bus,
		tracker: opts.Tracker,
	}
}

// Run is one live invocation. Events carries the supervised event stream;
// the channel closes after the Terminated event. LogPath is the per-run log
// file, empty if the sink could not be opened.
type Run struct {
	ID      uint64
	PID     int
	LogPath string
	Events  <-chan process.Event
}

// RunStreaming launches wine with the given arguments and returns the live
// run. Output chunks are mirrored into the per-run log file as they arrive.
func (r *Runner) RunStreaming(ctx context.Context, args []string, env map[string]string) (*Run, error) {
	return r.start(ctx, "wine", r.cfg.WineBinary(), WineEnv(r.cfg, env), args)
}

// RunCollected launches wine, blocks until it exits, and returns the
// concatenated output. A non-zero exit is reported as *ExitError with the
// partial output preserved.
func (r *Runner) RunCollected(ctx context.Context, args []string, env map[string]string) (string, error) {
	run, err := r.RunStreaming(ctx, args, env)
	if err != nil {
		return "", err
	}
	return collect(ctx, run)
}

// Wineserver launches wineserver with the given arguments and blocks until
// it exits.
func (r *Runner) Wineserver(ctx context.Context, args []string) (string, error) {
	run, err := r.start(ctx, "wineserver", r.cfg.WineserverBinary(), WineserverEnv(r.cfg, nil), args)
	if err != nil {
		return "", err
	}
	return collect(ctx, run)
}

// Version reports the version string of the configured wine binary.
func (r *Runner) Version(ctx context.Context) (string, error) {
	out, err := r.RunCollected(ctx, []string{"--version"}, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// start launches one supervised run and attaches the log sink, tracker
// registration, and bus notifications to its event stream.
func (r *Runner) start(ctx context.Context, name, bin string, env map[string]string, args []string) (*Run, error) {
	spec := process.Spec{
		Path: bin,
		Args: args,
		Dir:  filepath.Dir(bin),
		Env:  env,
		Name: name,
	}
	sup := process.New(spec, r.logger)

	raw, err := sup.Start(ctx)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()
	sink := r.openSink(sup.RunID(), bin, args, env, startedAt)

	out := make(chan process.Event, process.EventBufferSize)
	go func() {
		defer func() {
			// Covers cancelled streams that never observe Terminated.
			if sink != nil {
				sink.Close()
			}
			if r.tracker != nil {
				r.tracker.Remove(sup.RunID())
			}
			close(out)
		}()

		for ev := range raw {
			switch ev.Kind {
			case process.KindStarted:
				if r.tracker != nil {
					r.tracker.Add(sup, name)
				}
				if r.bus != nil {
					r.bus.Publish(events.RunStartedEvent{
						RunID:     ev.RunID,
						Name:      name,
						PID:       ev.PID,
						Timestamp: startedAt.UTC().Format(time.RFC3339),
					})
				}
			case process.KindStdout, process.KindStderr:
				if sink != nil {
					sink.Write(ev.Text)
				}
			case process.KindTerminated:
				if sink != nil {
					sink.Close()
				}
				if r.tracker != nil {
					r.tracker.Remove(ev.RunID)
				}
				if r.bus != nil {
					r.bus.Publish(events.RunTerminatedEvent{
						RunID:     ev.RunID,
						Name:      name,
						ExitCode:  ev.ExitCode,
						Duration:  time.Since(startedAt).Seconds(),
						Timestamp: time.Now().UTC().Format(time.RFC3339),
					})
				}
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	run := &Run{ID: sup.RunID(), PID: sup.PID(), Events: out}
	if sink != nil {
		run.LogPath = sink.Path()
	}
	return run, nil
}

// openSink creates the per-run log sink. Failure is not fatal to the run.
func (r *Runner) openSink(runID uint64, bin string, args []string, env map[string]string, startedAt time.Time) *LogSink {
	header := Header{
		Binary:    bin,
		Args:      args,
		Env:       env,
		Timestamp: startedAt,
	}
	sink, err := NewLogSink(r.cfg.LogDir, runID, header, r.logger)
	if err != nil {
		r.logger.Warn("Failed to open run log file", "run_id", runID, "error", err)
		return nil
	}
	return sink
}

// collect drains a run's event stream and aggregates the output.
func collect(ctx context.Context, run *Run) (string, error) {
	var out strings.Builder
	code := 0
	terminated := false
	for ev := range run.Events {
		switch ev.Kind {
		case process.KindStdout, process.KindStderr:
			out.WriteString(ev.Text)
		case process.KindTerminated:
			code = ev.ExitCode
			terminated = true
		}
	}
	if !terminated {
		// The stream only closes without Terminated when the consumer's
		// context was cancelled and the event got dropped.
		if err := ctx.Err(); err != nil {
			return out.String(), err
		}
		return out.String(), errors.New("event stream closed before termination")
	}
	if code != 0 {
		return out.String(), &ExitError{Code: code}
	}
	return out.String(), nil
}
