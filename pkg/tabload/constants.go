package tabload

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitIOError         = 20 // Source could not be opened or read
	ExitHeaderNotFound  = 21 // Marker word not found within the search bound
	ExitMalformedData   = 22 // Parser rejected the data block
)

const (
	// DefaultDelimiter separates fields when none is configured.
	DefaultDelimiter = ","

	// DefaultMaxSearchLines is the number of non-matching lines a marker
	// search may examine before giving up.
	DefaultMaxSearchLines = 100

	// DefaultRetryMaxAttempts is the default number of retries for transient failures.
	DefaultRetryMaxAttempts = 3
)
