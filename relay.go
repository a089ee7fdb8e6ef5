package noiseconn

import "io"

// Relay shuttles decrypted application bytes from one Conn to another:
// read a batch of plaintext off src, write that same batch to dst
// (re-encrypting it there under dst's own Session), then flush dst. It is
// the adaptation of the teacher package's Forwarder/ForwardOnce to this
// module's domain — where Forwarder relays a framed message verbatim
// between two plain streams, Relay relays the plaintext *behind* two
// independently encrypted framings, since the two legs of a relay are
// never the same Noise session.
//
// Unlike Forwarder, Relay makes no message-boundary promises: a batch
// read from src may span or split whatever frame boundaries src's peer
// used, exactly as CopyData already permits within a single Conn.
type Relay struct {
	dst, src *Conn
	buf      []byte

	have int // valid bytes currently sitting in buf
	woff int // bytes of buf already written to dst
}

// NewRelay constructs a Relay pumping decrypted bytes from src to dst
// using an internal buffer of the given size. bufSize must be positive.
func NewRelay(dst, src *Conn, bufSize int) (*Relay, error) {
	if dst == nil || src == nil || bufSize <= 0 {
		return nil, ErrInvalidArgument
	}
	return &Relay{dst: dst, src: src, buf: make([]byte, bufSize)}, nil
}

// RelayOnce drives at most one read-then-write cycle.
//
// In every case n is the number of batch bytes written to dst by this
// call, so the n values of the calls that make up one cycle add up to the
// batch size. It returns (n, nil) once the batch has been fully written to
// dst and flushed, and (0, nil) when src delivered no bytes. It returns
// (n, ErrWouldBlock) when the cycle is not yet complete (src or dst
// suspended, dst accepted only part of the batch, or the flush of dst
// suspended); callers must call RelayOnce again on the same Relay to
// resume. Any other error (io.EOF, io.ErrUnexpectedEOF,
// ErrDecryption, ErrEncryption, ...) is terminal for the relay and is
// returned as-is.
func (r *Relay) RelayOnce() (int, error) {
	if r.have == 0 {
		n, err := r.src.Read(r.buf)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		r.have, r.woff = n, 0
	}

	n, err := r.dst.Write(r.buf[r.woff:r.have])
	r.woff += n
	if err != nil {
		if err == ErrWouldBlock {
			return n, err
		}
		return n, err
	}
	if r.woff < r.have {
		return n, ErrWouldBlock
	}

	if ferr := r.dst.Flush(); ferr != nil {
		if ferr == ErrWouldBlock {
			return n, ErrWouldBlock
		}
		return n, ferr
	}
	r.have, r.woff = 0, 0
	return n, nil
}

// Close closes both the source and destination connections, returning the
// first error encountered.
func (r *Relay) Close() error {
	serr := r.src.Close()
	derr := r.dst.Close()
	if serr != nil {
		return serr
	}
	return derr
}

var _ io.Closer = (*Relay)(nil)
