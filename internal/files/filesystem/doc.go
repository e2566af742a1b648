// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// Loads never touch the os package directly; they go through a
// FileSystemProvider so tests can run against an in-memory tree and observe
// every open and close.
//
// Key interfaces:
//   - FileSystemProvider: Opens files as fresh readers and directories for traversal
//   - Directory: Represents a directory that can be traversed
//   - File: Represents an entry found during traversal
//
// Implementations:
//   - OSFileSystem: Production implementation using OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
