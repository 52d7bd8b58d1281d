// Package pattern parses and matches dispatch patterns. A pattern is a
// comma-separated list of key:value pairs ("kind:task,cmd:run"); the value
// "*" matches any present value. Canonical forms are stable under key order
// and suitable as routing-table keys.
package pattern
