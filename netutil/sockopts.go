package netutil

import (
	"net"
	"time"
)

// AcceptTimeout is the send/receive timeout applied to every accepted
// connection, matching the reference implementation's settimeout().
const AcceptTimeout = 10 * time.Second

// TuneAccepted applies the same per-connection socket options the
// reference implementation sets in accept_cb: a read/write deadline and
// TCP keepalive. Callers apply it to both the locally-accepted socket
// and the dialed upstream socket, per spec.md §4.1 step 8's "same
// timeout/keepalive" requirement.
func TuneAccepted(conn *net.TCPConn) error {
	if err := conn.SetKeepAlive(true); err != nil {
		return err
	}
	if err := conn.SetKeepAlivePeriod(30 * time.Second); err != nil {
		return err
	}
	return conn.SetDeadline(time.Now().Add(AcceptTimeout))
}

// ClearDeadline removes the handshake-phase deadline once a connection
// moves into the established relay phase, where transfers may legitimately
// run far longer than AcceptTimeout.
func ClearDeadline(conn *net.TCPConn) error {
	return conn.SetDeadline(time.Time{})
}
