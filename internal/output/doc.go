// Package output renders a RecordSet for humans or for other programs.
//
// Supported formats:
//   - table: bordered terminal table (lipgloss)
//   - json: array of objects, keys in header order
//   - yaml: sequence of mappings, keys in header order
//   - csv: header row followed by data rows
//
// DefaultFormat picks table for terminals and csv otherwise.
package output
