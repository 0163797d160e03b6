// Package review implements the code-review pipeline: triage of
// changed files, per-file model-backed review, evidence binding,
// policy gating, and the final run decision.
//
// The pipeline is single-threaded and sequential. Rate limiting is the
// only cancellation mechanism: a rate-limited triage call skips the
// run, and a rate-limited per-file call stops the file loop while
// keeping the issues found so far.
package review
