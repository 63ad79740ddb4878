// Package process provides subprocess lifecycle management as an ordered
// event stream.
//
// The package offers two levels of abstraction:
//
// Supervisor owns exactly one child process and presents it as a stream of
// events:
//   - Started is emitted exactly once, before any output event
//   - Stdout/Stderr events carry output chunks in per-pipe arrival order
//   - Terminated is emitted exactly once, after both pipes are drained,
//     and the stream is closed
//   - Cancelling the context before Terminated sends SIGTERM to a live
//     child exactly once, escalating to SIGKILL after a grace timeout
//
// Tracker maintains a registry of live runs keyed by run ID:
//   - Lookup and listing for status surfaces
//   - Cancel individual runs or all runs at shutdown
//
// Example usage:
//
//	sup := process.New(process.Spec{
//	    Path: "/usr/bin/wine",
//	    Args: []string{"notepad.exe"},
//	    Name: "wine",
//	}, logger)
//	events, err := sup.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	for ev := range events {
//	    // consume ev
//	}
package process
