package process

import "time"

// State represents the current state of a tracked run.
type State string

// Run states.
const (
	StateIdle     State = "idle"     // Unknown or never started
	StateRunning  State = "running"  // Active
	StateStopping State = "stopping" // Cancellation requested
)

// Info contains information about a tracked run.
type Info struct {
	RunID     uint64    `json:"run_id"`
	Name      string    `json:"name"`
	State     State     `json:"state"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
}
