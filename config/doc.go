// Package config loads the dispatch support configuration from the
// `support:` section of config.yaml (framework-level keys in the same file
// are ignored here).
//
// Config fields:
//   - Registry.Sweep          — arm the background sweeper (default true)
//   - Registry.SweepInterval  — prune period (default 30s)
//   - Fatal.Timeout           — shutdown hook deadline (default 5s)
//   - Fatal.ExitCode          — process exit code on fatal (default 1)
//   - Introspect.HTTPPort     — introspection listener port (default 8099)
//   - Introspect.StreamInterval — websocket broadcast period (default 5s)
//
// Load(path) applies defaults before unmarshalling, then validates. Watch
// re-loads the file on change and keeps the previous config when a reload
// fails.
package config
