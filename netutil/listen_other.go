//go:build !linux

package netutil

import "net"

// ListenTCPWithBacklog falls back to net.Listen's default backlog on
// platforms where a raw socket(2)/listen(2) path isn't implemented.
func ListenTCPWithBacklog(address, port string, backlog int) (*net.TCPListener, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(address, port))
	if err != nil {
		return nil, err
	}
	return l.(*net.TCPListener), nil
}
