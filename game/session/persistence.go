package session

import "errors"

// CurrentSessionIDKey is the storage key holding the current game session ID
const CurrentSessionIDKey = "currentSessionId"

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrEmptyKey       = errors.New("storage key cannot be empty")
)

// Store is the local key-value storage the client mirrors its session into.
// It stands in for browser local storage: string keys, string values, and
// absent keys are reported with ok == false rather than an error.
type Store interface {
	// Get returns the value stored under key
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBolt   = "bolt"
)
