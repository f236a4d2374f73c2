// Package diag defines the diagnostic model shared by every dlgen phase.
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Warning or Error, chosen per code by Code.Severity. Notes
//     attached to a diagnostic carry SevNote when rendered.
//   - Code: compact numeric identifier with a stable string form (DL.AN01).
//   - Message: human oriented text; keep it short and actionable.
//   - Primary: the Span pointing at the offending syntax.
//   - Notes: optional secondary spans with additional context.
//
// Spans are resolved against the token.FileSet at the moment a diagnostic is
// reported, so a Diagnostic never holds a token.Pos and stays comparable across
// runs and processes.
//
// Generators report through a Reporter. ReportBuilder (see Report) chains
// notes before Emit. BagReporter aggregates into a Bag,
// which supports sorting, deduplication and filtering. Package diag does no
// formatting or IO; rendering lives in internal/diagfmt.
package diag
