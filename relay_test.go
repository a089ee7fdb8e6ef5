package noiseconn_test

import (
	"io"
	"testing"

	"github.com/nfproto/noiseconn"
	"github.com/nfproto/noiseconn/noisesession"
)

func TestRelayForwardsDecryptedBytesAcrossTwoLegs(t *testing.T) {
	inATransport, inBTransport := noisesession.NewPipe()
	inASession, inBSession := handshakeOnce(t, inATransport, inBTransport)
	inA, err := noiseconn.NewConn(inATransport, inASession)
	if err != nil {
		t.Fatalf("NewConn inA: %v", err)
	}
	inB, err := noiseconn.NewConn(inBTransport, inBSession)
	if err != nil {
		t.Fatalf("NewConn inB: %v", err)
	}

	outATransport, outBTransport := noisesession.NewPipe()
	outASession, outBSession := handshakeOnce(t, outATransport, outBTransport)
	outA, err := noiseconn.NewConn(outATransport, outASession)
	if err != nil {
		t.Fatalf("NewConn outA: %v", err)
	}
	outB, err := noiseconn.NewConn(outBTransport, outBSession)
	if err != nil {
		t.Fatalf("NewConn outB: %v", err)
	}

	relay, err := noiseconn.NewRelay(outA, inB, 4096)
	if err != nil {
		t.Fatalf("NewRelay: %v", err)
	}

	msg := []byte("relay this plaintext across two independently encrypted legs")

	go func() {
		if _, err := inA.Write(msg); err != nil {
			t.Errorf("inA.Write: %v", err)
			return
		}
		if err := inA.Flush(); err != nil {
			t.Errorf("inA.Flush: %v", err)
		}
	}()

	type result struct {
		n   int
		err error
	}
	relayDone := make(chan result, 1)
	go func() {
		n, err := relay.RelayOnce()
		relayDone <- result{n, err}
	}()

	got := make([]byte, len(msg))
	if _, err := io.ReadFull(outB, got); err != nil {
		t.Fatalf("outB.Read: %v", err)
	}

	r := <-relayDone
	if r.err != nil {
		t.Fatalf("RelayOnce: %v", r.err)
	}
	if r.n != len(msg) {
		t.Fatalf("RelayOnce relayed %d bytes, want %d", r.n, len(msg))
	}
	if string(got) != string(msg) {
		t.Fatalf("got %q want %q", got, msg)
	}
}
