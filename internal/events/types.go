package events

// Event type constants for kelindar/event.
const (
	TypeRunStarted uint32 = iota + 1
	TypeRunTerminated
	TypeRegistryOp
	TypeConfigReloaded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// RunStartedEvent is published when a tool process has been launched.
type RunStartedEvent struct {
	RunID     uint64 `json:"run_id" doc:"Opaque run identifier"`
	Name      string `json:"name" example:"wine" doc:"Binary target name"`
	PID       int    `json:"pid" doc:"OS process ID"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Launch timestamp"`
}

// Type returns the event type identifier for RunStartedEvent.
func (e RunStartedEvent) Type() uint32 { return TypeRunStarted }

// RunTerminatedEvent is published when a tool process has exited and its
// output stream is fully drained.
type RunTerminatedEvent struct {
	RunID     uint64  `json:"run_id" doc:"Opaque run identifier"`
	Name      string  `json:"name" example:"wine" doc:"Binary target name"`
	ExitCode  int     `json:"exit_code" doc:"Child exit status"`
	Duration  float64 `json:"duration_seconds" doc:"Wall time from launch to drain"`
	Timestamp string  `json:"timestamp" example:"2025-01-27T10:30:05Z" doc:"Termination timestamp"`
}

// Type returns the event type identifier for RunTerminatedEvent.
func (e RunTerminatedEvent) Type() uint32 { return TypeRunTerminated }

// RegistryOpEvent is published for each registry query/add call.
type RegistryOpEvent struct {
	Op        string `json:"op" example:"query" doc:"Operation: query or add"`
	ValueType string `json:"value_type" example:"REG_DWORD" doc:"Registry value type"`
	OK        bool   `json:"ok" doc:"Whether the operation produced a value / succeeded"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Operation timestamp"`
}

// Type returns the event type identifier for RegistryOpEvent.
func (e RegistryOpEvent) Type() uint32 { return TypeRegistryOp }

// ConfigReloadedEvent is published when the daemon config file changes on
// disk and has been reloaded.
type ConfigReloadedEvent struct {
	Path      string `json:"path" example:"/etc/winevat/config.toml" doc:"Config file path"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Reload timestamp"`
}

// Type returns the event type identifier for ConfigReloadedEvent.
func (e ConfigReloadedEvent) Type() uint32 { return TypeConfigReloaded }
