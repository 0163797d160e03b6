// Package docs indexes well-known project documentation (README,
// CONTRIBUTING, STYLE_GUIDE, ARCHITECTURE) and serves naive keyword
// retrieval over it, supplying documentation evidence to the review
// pipeline.
package docs
