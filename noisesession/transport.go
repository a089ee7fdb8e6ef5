package noisesession

import (
	"encoding/binary"

	"github.com/codahale/thyrse"

	"github.com/nfproto/noiseconn"
)

// Transport is the post-handshake Session produced by Handshake.IntoTransport.
// Each direction carries its own thyrse.Protocol transcript; every message
// mixes in a monotonic counter and then ratchets the transcript for
// forward secrecy, the same Seal/Open-then-Ratchet shape as
// adratchet.State.SendMessage/ReceiveMessage.
//
// Unlike adratchet, Transport keeps no skipped-message map: noiseconn's
// Conn only ever drives it over an ordered, reliable channel (spec.md §5),
// so a message is never decrypted out of sequence.
type Transport struct {
	send, recv   *thyrse.Protocol
	sendN, recvN uint32
	remoteStatic []byte
}

// Encrypt seals plaintext as one message on the send transcript.
func (t *Transport) Encrypt(plaintext, ciphertext []byte) (int, error) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], t.sendN)
	t.send.Mix("n", n[:])

	sealed := t.send.Seal("message", ciphertext[:0], plaintext)
	t.send.Ratchet("step")
	t.sendN++
	return len(sealed), nil
}

// Decrypt opens one message from the recv transcript.
func (t *Transport) Decrypt(ciphertext, plaintext []byte) (int, error) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], t.recvN)
	t.recv.Mix("n", n[:])

	opened, err := t.recv.Open("message", plaintext[:0], ciphertext)
	if err != nil {
		return 0, noiseconn.ErrDecryption
	}
	t.recv.Ratchet("step")
	t.recvN++
	return len(opened), nil
}

// RemoteStaticKey returns the peer's ephemeral public key captured at
// handshake time.
func (t *Transport) RemoteStaticKey() []byte {
	return t.remoteStatic
}

var (
	_ noiseconn.Session      = (*Transport)(nil)
	_ noiseconn.StaticKeyer  = (*Transport)(nil)
	_ noiseconn.Session      = (*Handshake)(nil)
	_ noiseconn.Transitioner = (*Handshake)(nil)
	_ noiseconn.StaticKeyer  = (*Handshake)(nil)
)
