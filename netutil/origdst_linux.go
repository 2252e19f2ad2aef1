//go:build linux

package netutil

import (
	"encoding/binary"
	"fmt"
	"net"
	"unsafe"

	"golang.org/x/sys/unix"
)

// OriginalDst recovers the pre-NAT destination address of a
// REDIRECTed TCP connection by reading back the kernel's netfilter
// socket option. It tries the IPv6 option first, then falls back to
// the IPv4 one, mirroring the reference implementation's
// getdestaddr().
func OriginalDst(conn *net.TCPConn) (*net.TCPAddr, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("netutil: SyscallConn: %w", err)
	}

	var addr *net.TCPAddr
	var sockErr error
	ctlErr := raw.Control(func(fd uintptr) {
		if a, e := origDstSockopt(fd, unix.SOL_IPV6, unix.IP6T_SO_ORIGINAL_DST, true); e == nil {
			addr = a
			return
		}
		a, e := origDstSockopt(fd, unix.SOL_IP, unix.SO_ORIGINAL_DST, false)
		if e != nil {
			sockErr = e
			return
		}
		addr = a
	})
	if ctlErr != nil {
		return nil, fmt.Errorf("netutil: Control: %w", ctlErr)
	}
	if addr == nil {
		return nil, fmt.Errorf("netutil: getsockopt(SO_ORIGINAL_DST): %w", sockErr)
	}
	return addr, nil
}

// origDstSockopt reads a sockaddr_in (v6=false) or sockaddr_in6 (v6=true)
// out of the given socket option directly, since x/sys/unix has no
// typed accessor for either netfilter option.
func origDstSockopt(fd uintptr, level, opt int, v6 bool) (*net.TCPAddr, error) {
	var buf [28]byte // sizeof(sockaddr_in6); sockaddr_in fits within it
	size := uint32(len(buf))

	_, _, errno := unix.Syscall6(
		unix.SYS_GETSOCKOPT,
		fd,
		uintptr(level),
		uintptr(opt),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
		0,
	)
	if errno != 0 {
		return nil, errno
	}

	port := int(binary.BigEndian.Uint16(buf[2:4]))
	if v6 {
		ip := append(net.IP(nil), buf[8:24]...)
		return &net.TCPAddr{IP: ip, Port: port}, nil
	}
	ip := append(net.IP(nil), buf[4:8]...)
	return &net.TCPAddr{IP: ip, Port: port}, nil
}
