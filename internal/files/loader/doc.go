// Package loader reads delimited files whose header row sits below a preamble.
//
// A load runs in up to two passes over the source:
//   - search pass (marker mode only): scan for the marker word within the
//     search bound to learn how many lines precede the header
//   - load pass: reopen the source, discard that many lines, read the rest as
//     one block and parse it
//
// Each pass opens its own reader and closes it before returning, on success
// and failure alike.
package loader
