// Package cli implements the envdash command-line interface.
//
// Each Cobra command loads the config (flags, then .envdash.yaml or the
// global file, then ENVDASH_* overrides), builds a logger, and wires the
// feed, schedule, monitor, httpapi and alert packages together:
//
//	envdash [dashboard]  - full-screen dashboard (default)
//	envdash snapshot     - fetch once, print a table or --json
//	envdash serve        - headless polling, status API, MQTT alerts
//	envdash init         - write .envdash.yaml
//	envdash version      - build information
//
// # Flag Handling
//
// Global flags (--config, --log-level, --log-file, --no-color) live on the
// root command. The dashboard flags are registered on both the root and the
// dashboard subcommand so "envdash --no-trend" works.
//
// # Logging
//
// The dashboard owns the terminal, so it logs only to --log-file. The other
// commands log to stderr.
package cli
