// Package linescan reads a text source one line at a time, counting lines,
// and can hand back everything that remains as a single block.
//
// A Scanner is forward-only: once a line is consumed it cannot be re-read.
// Starting over requires opening the source again.
package linescan
