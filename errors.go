package noiseconn

import "errors"

var (
	// ErrInvalidArgument reports a nil underlying transport or session.
	ErrInvalidArgument = errors.New("noiseconn: invalid argument")

	// ErrTooLong reports a frame length that exceeds MAX_FRAME, i.e. cannot
	// be represented by the wire format's two-byte length prefix.
	ErrTooLong = errors.New("noiseconn: frame exceeds maximum length")

	// ErrDecryption reports that the session rejected an inbound frame.
	// The read side of the Conn is permanently poisoned after this error;
	// every subsequent Read returns it again.
	ErrDecryption = errors.New("noiseconn: decryption failed")

	// ErrEncryption reports that the session failed to encrypt a batch of
	// buffered plaintext. The write side of the Conn is permanently
	// poisoned after this error; every subsequent Write/Flush returns it
	// again.
	ErrEncryption = errors.New("noiseconn: encryption failed")

	// ErrWriteZero reports that the underlying transport accepted zero
	// bytes on a write, meaning the peer is no longer accepting data.
	ErrWriteZero = errors.New("noiseconn: write zero")

	// ErrHandshakeFinished is returned by Transitioner.IntoTransport when the
	// session has already transitioned to transport mode.
	ErrHandshakeFinished = errors.New("noiseconn: handshake already finished")
)
