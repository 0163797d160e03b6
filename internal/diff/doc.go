// Package diff parses unified-diff patch text into addressable hunks
// with new-file line numbering.
//
// It backs evidence extraction: ExcerptForRange maps a finding's
// claimed line range onto the actual diff lines, with deliberate
// fallbacks so the pipeline always has some excerpt to attach rather
// than failing a review over an unmappable range.
package diff
