// Package crystal bootstraps an application rooted at a directory. It is
// structured into small files by concern:
//
//   - app.go: App type, constructor and read-only accessors.
//   - options.go: functional options for New.
//   - paths.go: the directory layout derived from the root.
//   - run.go: the initialization sequence (config, pre-init, resources, post-init).
//   - listeners.go: event registration with "ready" replay.
//   - errors.go: failure kinds and helpers (IsConfigLoadFailure, IsHookFailure, ...).
//   - events.go: lifecycle EventPublisher and an in-memory implementation.
//   - metrics.go: prometheus collectors for bootstrap phases and resources.
//
// Initialization starts in New and runs on its own goroutine. Callers either
// block on Ready().Wait(ctx) or register a "ready" listener; a listener added
// after the application became ready is invoked immediately.
//
// Units (config documents, hooks, drivers) are found through a resolver.
// By default it consults, in order, the registry passed with WithRegistry,
// the built-in drivers, and configuration files on disk.
package crystal
