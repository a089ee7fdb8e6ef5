// Package noiseconn implements a framed cryptographic I/O engine: a
// bidirectional byte-stream wrapper that turns an unencrypted, ordered,
// reliable byte channel into a confidential, authenticated, ordered byte
// stream by layering length-prefixed encrypted messages on top of it.
//
// Semantics and design:
//   - Wire format: each frame is a two-byte big-endian length prefix
//     followed by that many bytes of ciphertext. A zero-length frame is
//     legal and is silently skipped by the reader.
//   - Non-blocking first: iox.ErrWouldBlock is surfaced as a control-flow
//     signal, not an error. Conn.Read and Conn.Write preserve all partial
//     progress (a half-read length prefix, a half-written frame, ...) in
//     their internal state and resume exactly where they left off on the
//     next call — callers never lose or duplicate a byte by retrying.
//   - Sticky terminals: a decryption failure, an encryption failure, or
//     end-of-file permanently poisons the corresponding side of the Conn;
//     every later call returns the same condition.
//   - Fixed buffer: the four working regions (read-ciphertext,
//     read-plaintext, write-plaintext, write-ciphertext) are carved out of
//     one backing array allocated once at construction and never resized.
//
// A Conn is single-owner: it must not be driven concurrently by two
// goroutines, though its read half and write half make independent
// progress and neither blocks the other.
package noiseconn

import (
	"io"

	"code.hybscloud.com/iox"
)

// These are provided as package-level aliases so callers can reference
// the non-blocking control-flow signal without importing iox directly,
// the same courtesy the teacher package extends over its own iox usage.
var (
	// ErrWouldBlock means the underlying transport made no progress and
	// the caller should retry later, once the transport is ready again.
	// Any returned byte count still represents real progress and must
	// not be re-submitted.
	ErrWouldBlock = iox.ErrWouldBlock
)

// Transport is the underlying byte channel the adapter wraps: a
// bidirectional, ordered, reliable stream offering non-blocking reads and
// writes. Read signals clean EOF by returning io.EOF; a Read that returns
// zero bytes and no error is reported as io.ErrNoProgress. A zero-length
// Write signifies the peer no longer accepts data. Read and Write may return
// ErrWouldBlock to signal suspension; Conn preserves all state needed to
// resume on the next call.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// Flusher is implemented by transports that buffer writes internally and
// need an explicit flush to push them onto the wire. Transports without
// one are assumed to flush synchronously on every Write.
type Flusher interface {
	Flush() error
}

// Conn wraps a Transport and a Session, presenting the same streaming
// io.Reader/io.Writer/Flusher/io.Closer surface as the transport while
// carrying every byte inside an encrypted, length-prefixed frame.
type Conn struct {
	transport Transport
	session   Session
	buf       *buffer
	opts      Options

	rs readState
	ws writeState
}

// NewConn constructs a Conn driving transport through session. Session may
// be in handshake mode or transport mode; Conn only calls Decrypt and
// Encrypt and is oblivious to which.
func NewConn(transport Transport, session Session, opts ...Option) (*Conn, error) {
	if transport == nil || session == nil {
		return nil, ErrInvalidArgument
	}
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Conn{
		transport: transport,
		session:   session,
		buf:       newBuffer(),
		opts:      o,
		rs:        readState{kind: readInit},
		ws:        writeState{kind: writeInit},
	}, nil
}

// RemoteStaticKey passes through to the underlying Session, if it exposes
// one. It is never consulted by the read/write engines themselves.
func (c *Conn) RemoteStaticKey() []byte {
	if k, ok := c.session.(StaticKeyer); ok {
		return k.RemoteStaticKey()
	}
	return nil
}

// Close flushes any buffered write data and closes the underlying
// transport. If flush fails, the error is surfaced and the transport is
// still closed exactly once afterward.
func (c *Conn) Close() error {
	ferr := c.Flush()
	cerr := c.transport.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

func (c *Conn) waitOnceOnWouldBlock() bool {
	if c.opts.RetryDelay < 0 {
		return false
	}
	if c.opts.RetryDelay == 0 {
		gosched()
		return true
	}
	sleep(c.opts.RetryDelay)
	return true
}

// readOnce performs exactly one attempt at draining p from the
// transport, cooperatively retrying on ErrWouldBlock per Options.
func (c *Conn) readOnce(p []byte) (int, error) {
	for {
		n, err := c.transport.Read(p)
		if len(p) != 0 && n == 0 && err == nil {
			return 0, io.ErrNoProgress
		}
		if n > 0 {
			return n, err
		}
		if err != ErrWouldBlock {
			return n, err
		}
		if !c.waitOnceOnWouldBlock() {
			return n, err
		}
	}
}

// writeOnce performs exactly one attempt at draining p into the
// transport, cooperatively retrying on ErrWouldBlock per Options.
//
// Unlike readOnce, a (0, nil) result is not treated as a misbehaving
// transport: the wire contract (§6) defines a zero-length write as the
// peer no longer accepting data, a legitimate write-side EOF signal that
// the codec and write engine must observe, not mask.
func (c *Conn) writeOnce(p []byte) (int, error) {
	for {
		n, err := c.transport.Write(p)
		if n > 0 {
			return n, err
		}
		if err != ErrWouldBlock {
			return n, err
		}
		if !c.waitOnceOnWouldBlock() {
			return n, err
		}
	}
}
