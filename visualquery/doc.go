// Package visualquery holds the form-editable representation of a Pinot query and the
// compiler that turns it into Pinot SQL text.
//
// A VisualQuery is a plain value. Editing surfaces replace it wholesale on every edit and call
// Compile to obtain the statement to preview or execute. Compile never fails: malformed parts
// of the query are left out of the statement instead of being reported.
//
// Time-series mode prepends the designated time column to the selection, grouping and ordering
// and injects the $__timeFilter(<column>) macro into WHERE. The macro is resolved later by the
// macros package, not here.
package visualquery
