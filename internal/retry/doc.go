// Package retry re-runs an operation with exponential backoff while its
// failures are classified as transient.
//
// Loads themselves never retry; retrying is a caller policy. The CLI wraps a
// load in an Executor with the IOErrorClassifier so that a source that is
// briefly unreadable (a network share hiccup, a file locked by the exporting
// tool) gets another chance, while a missing file, a bad configuration or a
// header that is not there fails at once. The PostgreSQL sink uses the
// PostgreSQLErrorClassifier for its connection attempts.
//
// # Example Usage
//
//	executor := retry.NewExecutor(
//	    retry.NewIOErrorClassifier(),
//	    retry.NewExponentialBackoff(3, retry.WithInitialDelay(200*time.Millisecond)),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    rs, err = l.Load(cfg)
//	    return err
//	})
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. WithOnRetry() returns an
// independent copy.
package retry
