// Package cli provides the interactive citybreaks command-line client.
//
// It wires configuration, the local cache, the record store client, the
// connectivity monitor, the push channel and the sync engine behind a small
// REPL. Every command keeps working offline: writes are queued and replayed
// when the server comes back.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
