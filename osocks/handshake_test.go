package osocks

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	iv := make([]byte, IVSize)
	secret := []byte("s3kret")
	k1 := DeriveKey(iv, secret)
	k2 := DeriveKey(iv, secret)
	if k1 != k2 {
		t.Fatalf("DeriveKey not deterministic for identical inputs")
	}
}

func TestDeriveKeyDiffersOnSecret(t *testing.T) {
	iv := make([]byte, IVSize)
	k1 := DeriveKey(iv, []byte("secretA"))
	k2 := DeriveKey(iv, []byte("secretB"))
	if k1 == k2 {
		t.Fatalf("DeriveKey produced identical keys for different secrets")
	}
}

func TestBuildThenParseHandshakeRoundTrips(t *testing.T) {
	secret := []byte("correct-horse-battery-staple")
	frame, _, err := BuildHandshake("example.org", "8443", secret, rand.Reader)
	if err != nil {
		t.Fatalf("BuildHandshake: %v", err)
	}

	host, port, _, err := ParseHandshake(frame, secret)
	if err != nil {
		t.Fatalf("ParseHandshake: %v", err)
	}
	if host != "example.org" || port != "8443" {
		t.Fatalf("got host=%q port=%q, want example.org/8443", host, port)
	}
}

func TestParseHandshakeRejectsWrongSecret(t *testing.T) {
	frame, _, err := BuildHandshake("example.org", "8443", []byte("right-secret"), rand.Reader)
	if err != nil {
		t.Fatalf("BuildHandshake: %v", err)
	}

	// A wrong secret derives a different key; the decrypted magic
	// will not match with overwhelming probability.
	if _, _, _, err := ParseHandshake(frame, []byte("wrong-secret")); err != ErrBadMagic {
		t.Fatalf("got err=%v, want ErrBadMagic", err)
	}
}

func TestBuildHandshakeRejectsOversizeFields(t *testing.T) {
	longHost := bytes.Repeat([]byte("a"), HostFieldSize)
	if _, _, err := BuildHandshake(string(longHost), "80", []byte("s"), rand.Reader); err != ErrFieldTooLong {
		t.Fatalf("got err=%v, want ErrFieldTooLong", err)
	}
}

func TestBuildHandshakeCipherContinuesStream(t *testing.T) {
	secret := []byte("shared-secret")
	frame, stream, err := BuildHandshake("host", "80", secret, rand.Reader)
	if err != nil {
		t.Fatalf("BuildHandshake: %v", err)
	}
	// The returned stream must be usable immediately for subsequent
	// relay traffic without re-deriving or rewinding it.
	plain := []byte("hello, relay")
	ct := make([]byte, len(plain))
	stream.XORKeyStream(ct, plain)
	if bytes.Equal(ct, plain) {
		t.Fatalf("cipher stream did not transform data")
	}

	// It continues from just past the encrypted CleartextSize bytes of
	// the frame: a fresh stream keyed from the frame's IV, advanced by
	// CleartextSize bytes, produces the same ciphertext.
	ref, err := NewCipher(DeriveKey(frame[ivOff:ivOff+IVSize], secret))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	skip := make([]byte, CleartextSize)
	ref.XORKeyStream(skip, skip)
	want := make([]byte, len(plain))
	ref.XORKeyStream(want, plain)
	if !bytes.Equal(ct, want) {
		t.Fatalf("returned stream does not continue after the handshake's %d encrypted bytes", CleartextSize)
	}
}
