package noiseconn

// Session is the cryptographic façade the read/write engines drive. It is
// intentionally the smallest interface that satisfies both a handshake-mode
// and a transport-mode session: the engines call nothing else, and they are
// oblivious to which mode backs a given Session — that distinction, and the
// one-way transition between the two, is entirely the concern of whatever
// concrete type implements Session (see the sibling noisesession package for
// a reference implementation).
//
// Ciphertext passed to Decrypt and plaintext passed to Encrypt are never
// retained past the call; both must copy anything they need to keep.
type Session interface {
	// Decrypt reads one Noise message from ciphertext and writes the
	// resulting plaintext into plaintext, returning the plaintext length.
	// Decryption failure is permanent for the connection: callers must
	// discard the Session (and the Conn driving it) on error.
	Decrypt(ciphertext, plaintext []byte) (int, error)

	// Encrypt seals plaintext into one Noise message written to
	// ciphertext, returning the ciphertext length, which may exceed
	// len(plaintext) by the session's fixed cryptographic overhead.
	Encrypt(plaintext, ciphertext []byte) (int, error)
}

// StaticKeyer is optionally implemented by a Session to expose the remote
// party's static public key, once known. It is a passthrough for upper
// layers; the read/write engines never call it.
type StaticKeyer interface {
	RemoteStaticKey() []byte
}

// Transitioner is optionally implemented by a handshake-mode Session to
// support the one-way move into transport mode. IntoTransport must fail
// with ErrHandshakeFinished if called on a Session already in transport
// mode.
type Transitioner interface {
	IntoTransport() (Session, error)
}
