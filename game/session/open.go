package session

import (
	"fmt"
	"io"
)

// Open creates the store selected by backend. The returned closer must be
// called when the store is no longer used; it is a no-op for backends that
// hold no resources.
func Open(backend, path string) (Store, io.Closer, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil

	case BackendFile, "":
		store, err := NewFileStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil

	case BackendBolt:
		store, err := OpenBoltStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
