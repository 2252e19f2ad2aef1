package ioredir

import (
	"context"
	"net"
	"testing"
	"time"

	"blitter.com/go/ioredir/config"
)

// tcpPipe returns a connected pair of *net.TCPConn over the loopback
// interface, for tests that need a real TCP socket (e.g. to drive
// Listener.handle's pool/tune logic) without any NAT redirection rule
// in place.
func tcpPipe(t *testing.T) (client, server *net.TCPConn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer ln.Close()

	acceptedCh := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			acceptedCh <- c
		}
	}()

	c, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("DialTimeout: %v", err)
	}
	s := <-acceptedCh
	return c.(*net.TCPConn), s.(*net.TCPConn)
}

func TestHandlePoolExhaustionLeavesSocketOpen(t *testing.T) {
	client, server := tcpPipe(t)
	defer client.Close()

	m, _ := NewMetrics()
	st, err := NewServerTable([]config.ServerConfig{{Address: "127.0.0.1", Port: "1", Secret: "s"}})
	if err != nil {
		t.Fatalf("NewServerTable: %v", err)
	}

	l := &Listener{
		pool:    NewPool(0), // zero capacity: every Allocate() fails
		servers: st,
		m:       m,
	}

	l.handle(context.Background(), server)

	// The documented quirk: on pool exhaustion, handle returns without
	// closing the accepted socket. Verify it's still writable from the
	// client's side (a Close on the server end would eventually surface
	// as a read error/EOF on the client).
	client.SetWriteDeadline(time.Now().Add(time.Second))
	if _, err := client.Write([]byte("x")); err != nil {
		t.Fatalf("client write failed, server socket appears closed: %v", err)
	}
}
