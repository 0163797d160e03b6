// Package forge talks to the pull-request hosting backend. It fetches
// PR metadata and changed files, and posts review results back as a
// summary comment (upserted across runs) and inline comments.
package forge
