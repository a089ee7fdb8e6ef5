package noiseconn

import "encoding/binary"

type writeKind uint8

const (
	writeInit writeKind = iota
	writeBuffer
	writeLen
	writeData
	writeEOF
	writeEncryptErr
)

// writeState is the write engine's resumable position, mirroring
// WriteState in the original io.rs: Init, BufferData{off}, WriteLen{len,
// buf, off}, WriteData{len, off}, Eof and EncErr (sticky terminals).
type writeState struct {
	kind writeKind

	bufOff int

	lenBuf [2]byte
	lenOff int

	dataLen int
	dataOff int
}

// Write implements io.Writer. It accepts up to MaxWrite bytes into the
// internal plaintext batch and returns as soon as any bytes are buffered
// — it does not wait for those bytes to reach the wire, so callers may
// pipeline writes freely while a background frame drains. When a call
// begins with a frame already mid-flight (WriteLen/WriteData left over
// from a previous call), that frame is driven to completion first; only
// once the engine is back at rest does it accept new caller bytes.
func (c *Conn) Write(p []byte) (int, error) {
	for {
		switch c.ws.kind {
		case writeInit:
			c.ws = writeState{kind: writeBuffer}

		case writeBuffer:
			bw := c.buf.borrow()
			n := min(MaxWrite-c.ws.bufOff, len(p))
			copy(bw.writePlaintext[c.ws.bufOff:c.ws.bufOff+n], p[:n])
			c.ws.bufOff += n
			if c.ws.bufOff == MaxWrite {
				clen, err := c.session.Encrypt(bw.writePlaintext[:MaxWrite], bw.writeCiphertext)
				if err != nil {
					c.ws = writeState{kind: writeEncryptErr}
					return 0, ErrEncryption
				}
				if clen > MaxFrame {
					c.ws = writeState{kind: writeEncryptErr}
					return 0, ErrTooLong
				}
				var lb [2]byte
				binary.BigEndian.PutUint16(lb[:], uint16(clen))
				c.ws = writeState{kind: writeLen, dataLen: clen, lenBuf: lb}
			}
			return n, nil

		case writeLen:
			ok, err := c.writeFrameLen(&c.ws.lenBuf, &c.ws.lenOff)
			if err != nil {
				if err == ErrWouldBlock {
					return 0, ErrWouldBlock
				}
				return 0, err
			}
			if !ok {
				c.ws = writeState{kind: writeEOF}
				return 0, ErrWriteZero
			}
			c.ws = writeState{kind: writeData, dataLen: c.ws.dataLen}

		case writeData:
			bw := c.buf.borrow()
			for c.ws.dataOff < c.ws.dataLen {
				wn, we := c.writeOnce(bw.writeCiphertext[c.ws.dataOff:c.ws.dataLen])
				c.ws.dataOff += wn
				if we != nil {
					if we == ErrWouldBlock {
						return 0, ErrWouldBlock
					}
					return 0, we
				}
				if wn == 0 {
					c.ws = writeState{kind: writeEOF}
					return 0, ErrWriteZero
				}
			}
			c.ws = writeState{kind: writeInit}

		case writeEOF:
			return 0, ErrWriteZero

		case writeEncryptErr:
			return 0, ErrEncryption
		}
	}
}

// Flush drains any batched plaintext as one frame, completes any
// in-flight frame, and flushes the underlying transport. A flush with
// nothing batched skips straight to the transport flush.
func (c *Conn) Flush() error {
	for {
		switch c.ws.kind {
		case writeInit:
			return c.flushTransport()

		case writeBuffer:
			if c.ws.bufOff == 0 {
				c.ws = writeState{kind: writeInit}
				continue
			}
			bw := c.buf.borrow()
			clen, err := c.session.Encrypt(bw.writePlaintext[:c.ws.bufOff], bw.writeCiphertext)
			if err != nil {
				c.ws = writeState{kind: writeEncryptErr}
				return ErrEncryption
			}
			if clen > MaxFrame {
				c.ws = writeState{kind: writeEncryptErr}
				return ErrTooLong
			}
			var lb [2]byte
			binary.BigEndian.PutUint16(lb[:], uint16(clen))
			c.ws = writeState{kind: writeLen, dataLen: clen, lenBuf: lb}

		case writeLen:
			ok, err := c.writeFrameLen(&c.ws.lenBuf, &c.ws.lenOff)
			if err != nil {
				if err == ErrWouldBlock {
					return ErrWouldBlock
				}
				return err
			}
			if !ok {
				c.ws = writeState{kind: writeEOF}
				return ErrWriteZero
			}
			c.ws = writeState{kind: writeData, dataLen: c.ws.dataLen}

		case writeData:
			bw := c.buf.borrow()
			for c.ws.dataOff < c.ws.dataLen {
				wn, we := c.writeOnce(bw.writeCiphertext[c.ws.dataOff:c.ws.dataLen])
				c.ws.dataOff += wn
				if we != nil {
					if we == ErrWouldBlock {
						return ErrWouldBlock
					}
					return we
				}
				if wn == 0 {
					c.ws = writeState{kind: writeEOF}
					return ErrWriteZero
				}
			}
			c.ws = writeState{kind: writeInit}

		case writeEOF:
			return ErrWriteZero

		case writeEncryptErr:
			return ErrEncryption
		}
	}
}

func (c *Conn) flushTransport() error {
	if f, ok := c.transport.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
