// Package wine runs the bundled Wine distribution as supervised child
// processes.
//
// Runner is the entry point: it applies the configured binaries and
// environment to a process.Supervisor run, mirrors all output into a
// per-run log file, and publishes run lifecycle events. Two binary targets
// exist, wine and wineserver, each with its own environment overlay rules.
package wine
