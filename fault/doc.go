// Package fault defines the structured error type the dispatch framework
// reports failures with. A Fault carries a stable code, the plugin it
// originated in, and free-form details, and renders to a single
// operator-facing line via Format.
package fault
