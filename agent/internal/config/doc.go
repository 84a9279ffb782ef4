// Package config loads, validates and watches the agent configuration file.
//
// Top-level types:
//   - Config: aggregator_host, aggregator_port, max_retries, pid_file, log.
//     Fields are unexported; a loaded Config is read-only and safe to share
//     between goroutines.
//   - LogConfig: level (debug|info|warn|error) and location.
//   - Location: sealed sum type, either StdoutLocation or FileLocation{Path}.
//   - Error: every failure carries a Kind (IoError, ParseError,
//     SchemaViolation, MissingField, UnknownVariant) reachable via errors.Is
//     against the Err* sentinels.
//
// Load(path) reads the file and calls Parse. Parse walks the YAML node tree
// against a closed schema: unknown keys anywhere fail the load, required
// keys must be present and non-empty, and optional keys resolve to their
// defaults (level info, file sink at /var/log/snitch.log). All problems in a
// document are reported together.
//
// Marshal writes the normalised configuration back out with every default
// explicit; Parse(Marshal(c)) is equal to c.
//
// Watch(ctx, path, ...) uses fsnotify to detect edits to the file. The
// running Config is never replaced; a valid change is reported to the caller
// so it can ask the operator for a restart.
package config
