package noiseconn

import "io"

type readKind uint8

const (
	readInit readKind = iota
	readLen
	readData
	readCopy
	readEOFClean
	readEOFUnexpected
	readDecryptErr
)

// readState is the read engine's resumable position, mirroring
// ReadState in the original io.rs: Init, ReadLen{buf,off},
// ReadData{len,off}, CopyData{len,off}, Eof(clean|unexpected), DecErr.
// readEOFClean, readEOFUnexpected and readDecryptErr are the sticky
// terminal states.
type readState struct {
	kind readKind

	lenBuf [2]byte
	lenOff int

	dataLen int
	dataOff int

	copyLen int
	copyOff int
}

// Read implements io.Reader. It delivers at most one decrypted frame's
// worth of plaintext per call and never blocks on the underlying
// transport's own buffering beyond the retry policy configured via
// Options — it only suspends (returning ErrWouldBlock) at the two
// points the transport itself can suspend: its Read calls.
func (c *Conn) Read(p []byte) (int, error) {
	for {
		switch c.rs.kind {
		case readInit:
			c.rs = readState{kind: readLen}

		case readLen:
			n, ok, err := c.readFrameLen(&c.rs.lenBuf, &c.rs.lenOff)
			if err != nil {
				if err == ErrWouldBlock {
					return 0, ErrWouldBlock
				}
				return 0, err
			}
			if !ok {
				c.rs = readState{kind: readEOFClean}
				continue
			}
			if n == 0 {
				// Zero-length frame: skip it and restart the length read.
				c.rs = readState{kind: readLen}
				continue
			}
			c.rs = readState{kind: readData, dataLen: int(n)}

		case readData:
			bw := c.buf.borrow()
			for c.rs.dataOff < c.rs.dataLen {
				rn, re := c.readOnce(bw.readCiphertext[c.rs.dataOff:c.rs.dataLen])
				c.rs.dataOff += rn
				if re != nil {
					if re == ErrWouldBlock {
						return 0, ErrWouldBlock
					}
					if re == io.EOF {
						c.rs = readState{kind: readEOFUnexpected}
						return 0, io.ErrUnexpectedEOF
					}
					return 0, re
				}
			}
			plen, derr := c.session.Decrypt(bw.readCiphertext[:c.rs.dataLen], bw.readPlaintext)
			if derr != nil {
				c.rs = readState{kind: readDecryptErr}
				return 0, ErrDecryption
			}
			c.rs = readState{kind: readCopy, copyLen: plen}

		case readCopy:
			bw := c.buf.borrow()
			n := min(c.rs.copyLen-c.rs.copyOff, len(p))
			copy(p[:n], bw.readPlaintext[c.rs.copyOff:c.rs.copyOff+n])
			c.rs.copyOff += n
			if c.rs.copyOff == c.rs.copyLen {
				c.rs = readState{kind: readLen}
				if n == 0 {
					// Zero-length plaintext payload and the caller's buffer
					// couldn't take anything either way: loop for the next
					// frame instead of handing back a spurious (0, nil).
					continue
				}
			}
			return n, nil

		case readEOFClean:
			return 0, io.EOF

		case readEOFUnexpected:
			return 0, io.ErrUnexpectedEOF

		case readDecryptErr:
			return 0, ErrDecryption
		}
	}
}
