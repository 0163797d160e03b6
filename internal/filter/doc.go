// Package filter partitions a pull request's changed files into the
// set worth reviewing and the set to skip, and scores the change for
// risk based on path patterns (auth, payment, core, api, deps).
package filter
