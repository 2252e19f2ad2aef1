package osocks

import "crypto/md5"

// DeriveKey runs the four-round MD5 chain that turns a handshake IV and
// a server secret into a 64-byte RC4 session key:
//
//	k0 = md5(iv || secret)
//	k1 = md5(k0)
//	k2 = md5(k0 || k1)
//	k3 = md5(k0 || k1 || k2)
//	key = k0 || k1 || k2 || k3
//
// The derivation is deterministic in (iv, secret); neither side needs
// to transmit the key itself.
func DeriveKey(iv, secret []byte) [64]byte {
	var key [64]byte

	h0 := md5.New()
	h0.Write(iv)
	h0.Write(secret)
	k0 := h0.Sum(nil)

	h1 := md5.New()
	h1.Write(k0)
	k1 := h1.Sum(nil)

	h2 := md5.New()
	h2.Write(k0)
	h2.Write(k1)
	k2 := h2.Sum(nil)

	h3 := md5.New()
	h3.Write(k0)
	h3.Write(k1)
	h3.Write(k2)
	k3 := h3.Sum(nil)

	copy(key[0:16], k0)
	copy(key[16:32], k1)
	copy(key[32:48], k2)
	copy(key[48:64], k3)
	return key
}
