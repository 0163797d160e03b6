// Package safejson recovers structured data from free-form model text.
//
// Model responses wrap their JSON payload in prose, markdown fences, or
// both. Clean removes fence lines wherever they appear, ExtractBalanced
// locates the first balanced object or array while honoring string and
// escape boundaries, and the field helpers support permissive
// field-by-field coercion when a strict typed decode has failed.
package safejson
