package api

import "github.com/winevat/winevat/internal/process"

// HealthData is the health check payload.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Message string `json:"message" example:"API is healthy" doc:"Health message"`
}

// HealthResponse wraps the health check payload.
type HealthResponse struct {
	Body HealthData
}

// VersionData is the version payload.
type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" doc:"Git commit hash"`
	BuildDate string `json:"build_date" doc:"Build timestamp"`
	GoVersion string `json:"go_version" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Build platform"`
}

// VersionResponse wraps the version payload.
type VersionResponse struct {
	Body VersionData
}

// RunRequest submits a wine command line for execution.
type RunRequest struct {
	Body struct {
		Command string            `json:"command" minLength:"1" example:"C:\\Program Files\\app\\run.exe --silent" doc:"Command line, split with the path-aware tokenizer"`
		Env     map[string]string `json:"env,omitempty" doc:"Extra environment variables for the run"`
	}
}

// RunResult reports a completed collected run.
type RunResult struct {
	ExitCode int    `json:"exit_code" doc:"Child exit status"`
	Output   string `json:"output" doc:"Concatenated stdout and stderr in arrival order"`
}

// RunResponse wraps a completed run.
type RunResponse struct {
	Body RunResult
}

// RunListData lists live runs.
type RunListData struct {
	Runs  []process.Info `json:"runs" doc:"Live runs ordered by run ID"`
	Count int            `json:"count" doc:"Number of live runs"`
}

// RunListResponse wraps the run list.
type RunListResponse struct {
	Body RunListData
}

// RunInfoResponse wraps a single run's state.
type RunInfoResponse struct {
	Body process.Info
}

// WineVersionData is the wine distribution version payload.
type WineVersionData struct {
	Version string `json:"version" example:"wine-9.0" doc:"Output of wine --version"`
}

// WineVersionResponse wraps the wine version payload.
type WineVersionResponse struct {
	Body WineVersionData
}

// RegistryValueData reports a registry query result.
type RegistryValueData struct {
	Value string `json:"value" doc:"Raw data field as printed by reg.exe"`
	Found bool   `json:"found" doc:"False when the value is absent or the query failed"`
}

// RegistryValueResponse wraps a registry query result.
type RegistryValueResponse struct {
	Body RegistryValueData
}

// RegistryAddRequest writes a registry value.
type RegistryAddRequest struct {
	Body struct {
		Key   string `json:"key" minLength:"1" example:"HKCU\\Software\\Winevat" doc:"Registry key path"`
		Name  string `json:"name" minLength:"1" example:"Mode" doc:"Value name"`
		Type  string `json:"type" enum:"REG_SZ,REG_DWORD,REG_QWORD,REG_BINARY" doc:"Registry value type"`
		Value string `json:"value" doc:"Data to write"`
	}
}

// LogEntryData is one buffered log entry.
type LogEntryData struct {
	Timestamp  string         `json:"timestamp" doc:"Entry timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"wine" doc:"Originating module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

// LogListData lists recent log entries.
type LogListData struct {
	Entries []LogEntryData `json:"entries" doc:"Buffered entries, oldest first"`
	Count   int            `json:"count" doc:"Number of entries returned"`
}

// LogListResponse wraps the log list.
type LogListResponse struct {
	Body LogListData
}
