package ioredir

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// RandBytes fills and returns n random bytes read from crypto/rand. It
// fails closed: unlike the reference implementation's rand_bytes(),
// which discards read(2)'s return value, a short or failed read is
// reported to the caller instead of silently handing back a
// partially-random (or all-zero) buffer.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// RandUint32 returns a uniformly distributed random uint32, used to
// pick an osocks server from the server table.
func RandUint32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
