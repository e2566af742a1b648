package tabload

// TableLoader loads delimited files whose header row is preceded by a preamble.
// Implementations must be safe for concurrent use on different files.
type TableLoader interface {
	// Load resolves the skip count, discards that many lines and parses the rest.
	Load(cfg LoadConfig) (RecordSet, error)

	// Locate resolves the skip count without parsing.
	Locate(cfg LoadConfig) (int, error)
}
