// Package files groups the file handling sub-packages:
//   - filesystem: filesystem abstraction with OS and in-memory implementations
//   - linescan: line-by-line reading with explicit line-ending handling
//   - loader: two-pass header location and record loading
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/tabload/internal/files/loader"
//	    "github.com/vvka-141/tabload/pkg/tabload"
//	)
//
//	l := loader.NewLoader(logger)
//	rs, err := l.Load(tabload.LoadConfig{
//	    Path: "export.csv",
//	    Mode: tabload.FindMarker{Word: "Zip"},
//	})
package files
