package registry

// Record is one unit of tracked state. The envelope fields ID and Deadline
// belong to the store; Payload is opaque and never inspected.
type Record[P any] struct {
	// ID is the unique key for this record, assigned by the caller.
	// A later Add with the same ID supersedes this record.
	ID string

	// Deadline is the absolute expiry timestamp in Unix milliseconds.
	// It shares a clock with the thresholds passed to Prune.
	Deadline int64

	// Payload carries caller-owned data the store treats as opaque.
	Payload P
}
