//go:build linux

package netutil

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// ListenTCPWithBacklog opens a TCP listener the way the reference
// implementation does: SO_REUSEADDR set explicitly and a listen(2)
// backlog of backlog (the reference implementation hardcodes 1024),
// rather than relying on net.Listen's OS-default backlog.
func ListenTCPWithBacklog(address string, port string, backlog int) (*net.TCPListener, error) {
	addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(address, port))
	if err != nil {
		return nil, fmt.Errorf("netutil: resolve %s:%s: %w", address, port, err)
	}

	domain := unix.AF_INET
	if addr.IP.To4() == nil {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("netutil: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("netutil: SO_REUSEADDR: %w", err)
	}

	var sa unix.Sockaddr
	if domain == unix.AF_INET {
		var sa4 unix.SockaddrInet4
		sa4.Port = addr.Port
		copy(sa4.Addr[:], addr.IP.To4())
		sa = &sa4
	} else {
		var sa6 unix.SockaddrInet6
		sa6.Port = addr.Port
		copy(sa6.Addr[:], addr.IP.To16())
		sa = &sa6
	}

	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("netutil: bind: %w", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("netutil: listen: %w", err)
	}

	f := os.NewFile(uintptr(fd), "ioredir-listener")
	defer f.Close()
	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("netutil: FileListener: %w", err)
	}
	tl, ok := l.(*net.TCPListener)
	if !ok {
		l.Close()
		return nil, fmt.Errorf("netutil: unexpected listener type %T", l)
	}
	return tl, nil
}
