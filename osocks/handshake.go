package osocks

import (
	"bytes"
	"crypto/cipher"
	"crypto/rc4"
	"encoding/binary"
	"errors"
	"io"
)

var (
	// ErrBadMagic is returned by ParseHandshake when a frame's magic
	// number does not match, indicating a secret mismatch or a
	// malformed peer.
	ErrBadMagic = errors.New("osocks: bad handshake magic")
	// ErrFieldTooLong is returned by BuildHandshake when host or port
	// do not fit in their fixed-size wire fields.
	ErrFieldTooLong = errors.New("osocks: host or port too long for handshake frame")
)

// NewCipher returns an RC4 stream keyed on the full 64-byte session key,
// matching the reference implementation's enc_init(..., key, 64) call.
func NewCipher(key [64]byte) (cipher.Stream, error) {
	return rc4.NewCipher(key[:])
}

// BuildHandshake constructs a client-side handshake frame for the given
// destination host/port and server secret. It draws a fresh 236-byte IV
// from rnd, derives the session key, encrypts the frame's leading
// CleartextSize bytes in place, and returns both the completed frame and
// the cipher.Stream (already advanced past the encrypted region) so the
// caller can keep using it, unmodified, for the established connection.
func BuildHandshake(host, port string, secret []byte, rnd io.Reader) (frame [FrameSize]byte, stream cipher.Stream, err error) {
	if len(host) >= HostFieldSize || len(port) >= PortFieldSize {
		err = ErrFieldTooLong
		return
	}

	iv := frame[ivOff : ivOff+IVSize]
	if _, err = io.ReadFull(rnd, iv); err != nil {
		return
	}

	binary.BigEndian.PutUint32(frame[0:magicSize], Magic)
	copy(frame[hostOff:hostOff+HostFieldSize], host)
	copy(frame[portOff:portOff+PortFieldSize], port)

	key := DeriveKey(iv, secret)
	stream, err = NewCipher(key)
	if err != nil {
		return
	}
	stream.XORKeyStream(frame[:CleartextSize], frame[:CleartextSize])
	return
}

// ParseHandshake is the peer-side counterpart of BuildHandshake: given a
// received frame and the server secret that should have produced it, it
// rederives the session key from the frame's cleartext IV, decrypts the
// leading CleartextSize bytes, validates the magic number, and extracts
// the NUL-terminated host and port fields.
func ParseHandshake(frame [FrameSize]byte, secret []byte) (host, port string, stream cipher.Stream, err error) {
	iv := frame[ivOff : ivOff+IVSize]
	key := DeriveKey(iv, secret)
	stream, err = NewCipher(key)
	if err != nil {
		return
	}

	plain := make([]byte, CleartextSize)
	stream.XORKeyStream(plain, frame[:CleartextSize])

	if binary.BigEndian.Uint32(plain[0:magicSize]) != Magic {
		err = ErrBadMagic
		return
	}

	h := plain[magicSize : magicSize+HostFieldSize]
	p := plain[magicSize+HostFieldSize : magicSize+HostFieldSize+PortFieldSize]

	host = nulTerminated(h)
	port = nulTerminated(p)
	return
}

func nulTerminated(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
