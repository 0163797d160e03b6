// Package redact strips secrets from text before it is sent to a
// model provider. It combines regex heuristics for well-known token
// formats with path-based whole-file redaction.
package redact
