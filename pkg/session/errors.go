package session

import "errors"

var (
	// ErrProtocolViolation is returned when the push/pull protocol is misused:
	// an operation in the wrong state, a busy encoder on submit, or a second
	// end of input.
	ErrProtocolViolation = errors.New("session: protocol violation")

	// ErrEncodeFailure is returned when the encoder reports an unrecoverable error.
	ErrEncodeFailure = errors.New("session: encode failure")

	// ErrSinkWriteFailure wraps an error returned by a packet sink.
	ErrSinkWriteFailure = errors.New("session: sink write failure")
)
