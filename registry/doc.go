// Package registry tracks metadata for in-flight dispatch operations. Each
// record carries a caller-assigned ID and an absolute expiry deadline; the
// store supports O(1) lookup by ID alongside bulk eviction of everything
// whose deadline has passed. An optional background sweeper prunes expired
// records periodically until the store is closed.
package registry
