//go:build !linux

package netutil

import (
	"errors"
	"net"
)

// OriginalDst is only meaningful on Linux, where REDIRECT targets are
// recovered via netfilter socket options.
func OriginalDst(conn *net.TCPConn) (*net.TCPAddr, error) {
	return nil, errors.New("netutil: OriginalDst is only supported on linux")
}
