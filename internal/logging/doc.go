// Package logging provides concrete implementations of the tabload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to stderr (or any writer) with thread-safe output
//   - NullLogger: Discards all messages (useful for testing and library use)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
