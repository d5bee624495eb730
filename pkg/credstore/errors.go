package credstore

import "errors"

var (
	// ErrReadFailed indicates the persisted slot could not be read.
	ErrReadFailed = errors.New("credstore.read_failed")

	// ErrWriteFailed indicates the slot could not be written durably.
	ErrWriteFailed = errors.New("credstore.write_failed")

	// ErrCorruptData indicates the persisted slot exists but does not
	// decode; callers typically treat this as an empty slot after clearing.
	ErrCorruptData = errors.New("credstore.corrupt_data")
)
