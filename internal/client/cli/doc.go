// Package cli provides the fieldsync command-line client.
//
// It wires configuration, the local database, the outbox and the sync engine,
// then offers either an interactive REPL (the default) or one-shot cobra
// subcommands such as "fieldsync outbox list" and "fieldsync sync".
//
// While the REPL runs, a background watcher probes the server. Offline probes
// back off exponentially up to the configured interval, and the first
// successful probe after an outage triggers a sync when auto-sync is on.
package cli
