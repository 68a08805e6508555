// Package session provides the client's local storage for the current game
// session.
//
// The client remembers at most one server-side session between runs. The
// identifier is mirrored into a single key (CurrentSessionIDKey) of a Store,
// the Go counterpart of browser local storage.
//
// Backends:
//
//   - MemoryStore keeps values in process memory (tests, throwaway runs)
//   - FileStore keeps a small JSON document on disk
//   - BoltStore keeps values in a BoltDB file
//
// Usage:
//
//	store, closer, err := session.Open(session.BackendFile, "storage.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer closer.Close()
//
//	if err := store.Set(session.CurrentSessionIDKey, id); err != nil {
//		log.Fatal(err)
//	}
//
// All stores are safe for concurrent use. Writes are last-write-wins.
package session
