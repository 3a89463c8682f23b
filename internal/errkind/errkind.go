// Package errkind defines the error-kind sentinels from the error
// handling design: ConfigError, StoreIoError, FileIoError, and
// ChannelClosed. InvariantViolation has no sentinel here because it
// is never returned — the store clamps it silently instead of
// surfacing an error (see internal/store.Undo/Redo).
package errkind

import "errors"

var (
	// ErrConfig marks configuration that is missing, unparseable, or
	// inconsistent. Fatal at startup.
	ErrConfig = errors.New("config error")

	// ErrStoreIO marks a failed read or write of the persisted store.
	// Bootstrap returns it as a fatal error when the store cannot be
	// opened or listed; on write during Append, the append is refused
	// without partial commit.
	ErrStoreIO = errors.New("store io error")

	// ErrFileIO marks a failed working-file read (diff engine) or
	// write (materialization). Degrades the affected path only.
	ErrFileIO = errors.New("file io error")

	// ErrChannelClosed marks an inbound command channel that closed
	// unexpectedly; treated as an implicit shutdown request.
	ErrChannelClosed = errors.New("channel closed")
)
