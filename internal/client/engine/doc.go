// Package engine is the offline-first synchronization core.
//
// The Engine owns the in-memory view of the user's trip entries and decides,
// for every read and write, whether to talk to the record store or to fall
// back to the durable cache:
//
//   - reads go to the server when connected and write the result through to
//     the cache; otherwise they are served from the cache;
//   - writes that cannot reach the server are queued in the cache as pending
//     operations (PENDING_CREATE, PENDING_UPDATE, PENDING_DELETE) and are
//     immediately visible in memory;
//   - every false→true connectivity transition replays the queue;
//   - GetWithConflictCheck compares versions before an edit and keeps the
//     server copy as a conflict snapshot until the user resolves it with
//     KeepLocal or AdoptRemote.
//
// All state changes go through Store.Dispatch, a single transition handler
// over a closed set of Event types. Server calls and cache access are
// serialized per record identifier, so replay and interactive writes to
// different records run independently while writes to the same record do not
// interleave.
package engine
