package noiseconn

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func frameBytes(payload []byte) []byte {
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(payload)))
	return append(hdr[:], payload...)
}

type bufTransport struct {
	r *bytes.Reader
}

func (b *bufTransport) Read(p []byte) (int, error)  { return b.r.Read(p) }
func (b *bufTransport) Write(p []byte) (int, error) { panic("not used") }
func (b *bufTransport) Close() error                { return nil }

func TestReadRoundTripSingleFrame(t *testing.T) {
	wire := frameBytes([]byte("hello"))
	c, err := NewConn(&bufTransport{r: bytes.NewReader(wire)}, passthroughSession{})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	buf := make([]byte, 64)
	n, err := c.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("got %q want %q", buf[:n], "hello")
	}
}

func TestReadSkipsZeroLengthFrame(t *testing.T) {
	var wire []byte
	wire = append(wire, frameBytes(nil)...)
	wire = append(wire, frameBytes([]byte("x"))...)
	c, err := NewConn(&bufTransport{r: bytes.NewReader(wire)}, passthroughSession{})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	buf := make([]byte, 64)
	n, err := c.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "x" {
		t.Fatalf("got %q want %q (zero-length frame should have been skipped)", buf[:n], "x")
	}
}

func TestReadCleanEOFAtFrameBoundary(t *testing.T) {
	c, err := NewConn(&bufTransport{r: bytes.NewReader(nil)}, passthroughSession{})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	_, err = c.Read(make([]byte, 8))
	if err != io.EOF {
		t.Fatalf("err=%v want=io.EOF", err)
	}
	// Sticky: a second call returns the same clean EOF.
	_, err = c.Read(make([]byte, 8))
	if err != io.EOF {
		t.Fatalf("second call err=%v want=io.EOF (sticky)", err)
	}
}

func TestReadUnexpectedEOFMidPayload(t *testing.T) {
	wire := frameBytes([]byte("hello"))
	truncated := wire[:len(wire)-2] // length prefix claims 5 bytes, only 3 delivered
	c, err := NewConn(&bufTransport{r: bytes.NewReader(truncated)}, passthroughSession{})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	_, err = c.Read(make([]byte, 8))
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("err=%v want=io.ErrUnexpectedEOF", err)
	}
	_, err = c.Read(make([]byte, 8))
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("second call err=%v want=io.ErrUnexpectedEOF (sticky)", err)
	}
}

type errDecryptSession struct{}

func (errDecryptSession) Decrypt(ciphertext, plaintext []byte) (int, error) {
	return 0, ErrDecryption
}
func (errDecryptSession) Encrypt(plaintext, ciphertext []byte) (int, error) {
	return copy(ciphertext, plaintext), nil
}

func TestReadDecryptionFailureIsSticky(t *testing.T) {
	wire := frameBytes([]byte("hello"))
	c, err := NewConn(&bufTransport{r: bytes.NewReader(wire)}, errDecryptSession{})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	_, err = c.Read(make([]byte, 8))
	if err != ErrDecryption {
		t.Fatalf("err=%v want=ErrDecryption", err)
	}
	_, err = c.Read(make([]byte, 8))
	if err != ErrDecryption {
		t.Fatalf("second call err=%v want=ErrDecryption (sticky)", err)
	}
}

func TestReadSuspendsMidFrameBodyAndResumes(t *testing.T) {
	wire := frameBytes([]byte("hello world"))
	under := &scriptedReader{steps: []struct {
		b   []byte
		err error
	}{
		{b: wire[:2]},                       // length prefix, complete
		{b: wire[2:6], err: ErrWouldBlock},   // partial ciphertext, then suspend
		{b: wire[6:]},                       // remaining ciphertext
	}}
	c, err := NewConn(under, passthroughSession{})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}

	buf := make([]byte, 64)
	n, err := c.Read(buf)
	if err != ErrWouldBlock {
		t.Fatalf("first call err=%v want=ErrWouldBlock", err)
	}
	if n != 0 {
		t.Fatalf("first call n=%d want=0 (no bytes delivered while suspended)", n)
	}
	if c.rs.kind != readData || c.rs.dataOff != 4 {
		t.Fatalf("rs=%+v, want dataOff=4 preserved mid-frame-body", c.rs)
	}

	n, err = c.Read(buf)
	if err != nil {
		t.Fatalf("resumed call: %v", err)
	}
	if string(buf[:n]) != "hello world" {
		t.Fatalf("got %q want %q", buf[:n], "hello world")
	}
}

func TestReadSplitsOneFrameAcrossMultipleCalls(t *testing.T) {
	wire := frameBytes([]byte("hello world"))
	c, err := NewConn(&bufTransport{r: bytes.NewReader(wire)}, passthroughSession{})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	small := make([]byte, 4)
	var got []byte
	for len(got) < len("hello world") {
		n, err := c.Read(small)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, small[:n]...)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q want %q", got, "hello world")
	}
}
