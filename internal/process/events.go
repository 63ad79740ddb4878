package process

import "sync/atomic"

// Kind discriminates the variants of Event.
type Kind int

// Event kinds.
const (
	KindStarted    Kind = iota + 1 // child launched, first event
	KindStdout                     // chunk of standard output
	KindStderr                     // chunk of standard error
	KindTerminated                 // child exited, last event
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindStarted:
		return "started"
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	case KindTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Event is one entry in a run's ordered output stream.
//
// Exactly one Started event precedes all others and exactly one Terminated
// event follows all others. Stdout and Stderr events preserve arrival order
// within their own pipe; no ordering is guaranteed between the two pipes.
type Event struct {
	Kind  Kind
	RunID uint64

	// PID is set on Started events only.
	PID int

	// Text is set on Stdout and Stderr events. It holds whatever bytes were
	// available on the pipe, decoded as UTF-8 with invalid sequences
	// replaced. It is not necessarily a full line.
	Text string

	// ExitCode is set on Terminated events only.
	ExitCode int
}

// runCounter assigns opaque run identifiers. Run IDs are process-wide
// monotonic and never reuse the OS pid for identity.
var runCounter atomic.Uint64

func nextRunID() uint64 {
	return runCounter.Add(1)
}
