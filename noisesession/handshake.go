// Package noisesession is a reference Session implementation for
// noiseconn. It is not a Noise protocol implementation — building the
// real handshake patterns (XX, IK, ...) is explicitly out of scope for
// this module (see spec.md §1) — it is an ephemeral Ristretto255 DH
// exchange seasoning a pair of thyrse transcripts, giving the core
// adapter a real, testable cryptographic backend without pulling in an
// actual Noise library.
package noisesession

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/codahale/thyrse"
	"github.com/gtank/ristretto255"

	"github.com/nfproto/noiseconn"
)

// ErrHandshakeIncomplete is returned by IntoTransport when called before
// both a local message has been sent and a remote message received.
var ErrHandshakeIncomplete = errors.New("noisesession: handshake incomplete")

// Handshake is a one-message-each-way ephemeral key exchange. Encrypt
// sends the local ephemeral public key plus a sealed payload on the send
// transcript; Decrypt consumes the peer's on the recv transcript. Once
// both have happened, IntoTransport mixes the DH secret into both
// transcripts and hands them to a Transport.
//
// A Handshake satisfies noiseconn.Session, noiseconn.Transitioner and,
// once the remote key is known, noiseconn.StaticKeyer.
type Handshake struct {
	send, recv *thyrse.Protocol

	priv *ristretto255.Scalar
	pub  *ristretto255.Element

	remotePub *ristretto255.Element

	sent     bool
	received bool
	finished bool
}

// NewInitiatorHandshake starts a handshake as the connecting party.
func NewInitiatorHandshake() (*Handshake, error) { return newHandshake(true) }

// NewResponderHandshake starts a handshake as the accepting party.
func NewResponderHandshake() (*Handshake, error) { return newHandshake(false) }

// newHandshake forks a fresh transcript into an (initiator, responder)
// branch pair the same way adratchet.NewInitiator/NewResponder does,
// except here the fork happens before any message is sealed: both
// parties start from an identical, still-unmixed base, so an initiator's
// send branch and a responder's recv branch are the same deterministic
// transcript state on both ends and can Seal/Open against each other.
// Forking it AFTER one side had already sealed a message on a shared,
// mutating transcript (the first draft of this package did that) would
// desynchronize the two sides' states before the peer ever gets to open
// anything.
func newHandshake(initiator bool) (*Handshake, error) {
	priv, pub, err := newEphemeral()
	if err != nil {
		return nil, err
	}
	base := thyrse.New("noiseconn handshake")
	left, right := base.Fork("role", []byte("initiator"), []byte("responder"))
	h := &Handshake{priv: priv, pub: pub}
	if initiator {
		h.send, h.recv = left, right
	} else {
		h.recv, h.send = left, right
	}
	return h, nil
}

func newEphemeral() (*ristretto255.Scalar, *ristretto255.Element, error) {
	var b [64]byte
	if _, err := rand.Read(b[:]); err != nil {
		return nil, nil, err
	}
	priv, err := ristretto255.NewScalar().SetUniformBytes(b[:])
	if err != nil {
		return nil, nil, err
	}
	pub := ristretto255.NewIdentityElement().ScalarBaseMult(priv)
	return priv, pub, nil
}

const ephemeralKeySize = 32

// Encrypt emits the local ephemeral public key followed by plaintext
// sealed on the send transcript. It may be called only once per
// Handshake.
func (h *Handshake) Encrypt(plaintext, ciphertext []byte) (int, error) {
	if h.sent {
		return 0, noiseconn.ErrHandshakeFinished
	}
	need := ephemeralKeySize + len(plaintext) + thyrse.TagSize
	if len(ciphertext) < need {
		return 0, io.ErrShortBuffer
	}
	copy(ciphertext[:ephemeralKeySize], h.pub.Bytes())
	sealed := h.send.Seal("handshake", ciphertext[ephemeralKeySize:ephemeralKeySize], plaintext)
	h.sent = true
	return ephemeralKeySize + len(sealed), nil
}

// Decrypt consumes the peer's ephemeral public key and sealed payload on
// the recv transcript. It may be called only once per Handshake.
func (h *Handshake) Decrypt(ciphertext, plaintext []byte) (int, error) {
	if h.received {
		return 0, noiseconn.ErrHandshakeFinished
	}
	if len(ciphertext) < ephemeralKeySize+thyrse.TagSize {
		return 0, noiseconn.ErrDecryption
	}
	pub, err := ristretto255.NewIdentityElement().SetCanonicalBytes(ciphertext[:ephemeralKeySize])
	if err != nil {
		return 0, noiseconn.ErrDecryption
	}
	opened, err := h.recv.Open("handshake", plaintext[:0], ciphertext[ephemeralKeySize:])
	if err != nil {
		return 0, noiseconn.ErrDecryption
	}
	h.remotePub = pub
	h.received = true
	return len(opened), nil
}

// RemoteStaticKey returns the peer's ephemeral public key once Decrypt
// has run, and nil before that.
func (h *Handshake) RemoteStaticKey() []byte {
	if h.remotePub == nil {
		return nil
	}
	return h.remotePub.Bytes()
}

// IntoTransport finishes the handshake by mixing the ephemeral DH secret
// into both the send and recv transcripts and handing them to a
// Transport. The DH value is identical on both ends by construction, so
// it seasons both sides' matching branches the same way.
func (h *Handshake) IntoTransport() (noiseconn.Session, error) {
	if h.finished {
		return nil, noiseconn.ErrHandshakeFinished
	}
	if !h.sent || !h.received {
		return nil, ErrHandshakeIncomplete
	}
	dh := ristretto255.NewIdentityElement().ScalarMult(h.priv, h.remotePub)
	h.send.Mix("dh", dh.Bytes())
	h.recv.Mix("dh", dh.Bytes())
	h.finished = true

	return &Transport{
		send:         h.send,
		recv:         h.recv,
		remoteStatic: h.remotePub.Bytes(),
	}, nil
}
