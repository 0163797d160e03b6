// Package cli implements the critic command-line interface: the
// review, config, and version commands, with deterministic exit codes
// (0 clean, 1 findings, 2 usage, 3 auth, 4 runtime).
package cli
