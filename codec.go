package noiseconn

import (
	"encoding/binary"
	"io"
)

// readFrameLen reads the two-byte big-endian frame length prefix from the
// transport into buf, advancing off as bytes arrive.
//
// Returns (n, true, nil) once off reaches 2, with n the parsed length.
// Returns (0, false, nil) if the transport signals clean EOF while the
// prefix is incomplete — this matches the original io.rs read_frame_len,
// which treats any zero-byte read during this phase as end of stream,
// not a truncation (see DESIGN.md for why a one-byte-in EOF is not
// promoted to io.ErrUnexpectedEOF here).
// Returns (0, false, ErrWouldBlock) if the transport suspends; buf and
// off are preserved in place for the next call.
// Returns (0, false, err) on any other transport error.
func (c *Conn) readFrameLen(buf *[2]byte, off *int) (n uint16, ok bool, err error) {
	for *off < 2 {
		rn, re := c.readOnce(buf[*off:2])
		*off += rn
		if re != nil {
			if re == io.EOF {
				return 0, false, nil
			}
			return 0, false, re
		}
	}
	return binary.BigEndian.Uint16(buf[:]), true, nil
}

// writeFrameLen writes the two-byte big-endian frame length prefix in buf
// to the transport, advancing off as bytes are accepted.
//
// Returns (true, nil) once off reaches 2. Returns (false, nil) if the
// transport accepts zero bytes, signaling the peer no longer accepts
// writes. Returns (false, ErrWouldBlock) if the transport suspends; buf
// and off are preserved in place for the next call.
func (c *Conn) writeFrameLen(buf *[2]byte, off *int) (ok bool, err error) {
	for *off < 2 {
		wn, we := c.writeOnce(buf[*off:2])
		*off += wn
		if we != nil {
			return false, we
		}
		if wn == 0 {
			return false, nil
		}
	}
	return true, nil
}
