// Package output renders review results in multiple formats: text for
// terminals, JSON for tooling, and markdown for PR comments.
package output
