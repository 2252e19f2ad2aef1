package ioredir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"blitter.com/go/ioredir/logger"
)

const relayBufSize = 8192

// writeFull writes all of b to w, looping on partial writes. Go's
// net.Conn rarely short-writes a TCP stream, but the reference
// implementation's protocol explicitly tracks (offset, length) across
// EAGAIN/EWOULDBLOCK, so the same discipline is kept here rather than
// assuming a single Write call always drains b.
func writeFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// sendHandshake writes the pre-built 512-byte handshake frame to the
// chosen server in a single attempt. Unlike the established relay's
// writeFull, this never loops on a short write: the reference
// implementation's remote_write_cb tears the connection down on
// anything but a full flush while still in its CLOSED (pre-established)
// state, with no retry.
func (c *Conn) sendHandshake(frame []byte) error {
	c.phase = PhaseHandshaking
	n, err := c.remote.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return fmt.Errorf("osocks: short handshake write (%d of %d bytes)", n, len(frame))
	}
	return nil
}

// Relay drives the established duplex byte stream between the local and
// remote sockets until either side closes or ctx is canceled, and
// returns the byte counts relayed in each direction. The counts live in
// local variables rather than Conn fields because teardown (triggered
// internally, below) returns the record to the pool and resets it —
// by the time Relay returns, any counters stored on c itself would
// already be zeroed.
func (c *Conn) Relay(ctx context.Context, pool *Pool) (txBytes, rxBytes uint64) {
	c.phase = PhaseEstablished

	var tx, rx uint64
	done := make(chan struct{}, 2)
	go func() {
		// local -> remote is the tx direction (spec's tx_buf naming).
		c.pump(c.local, c.remote, &tx)
		done <- struct{}{}
	}()
	go func() {
		// remote -> local is the rx direction (spec's rx_buf naming).
		c.pump(c.remote, c.local, &rx)
		done <- struct{}{}
	}()

	pending := 2
	select {
	case <-done:
		pending--
	case <-ctx.Done():
	}
	// Close both sockets so the remaining pump(s) notice and exit, and
	// wait for them before teardown returns the record to the pool.
	c.local.Close()
	c.remote.Close()
	for ; pending > 0; pending-- {
		<-done
	}
	c.teardown(pool)

	return tx, rx
}

// pump copies one direction of the relay: read a chunk, decrypt/encrypt
// it with the connection's shared stream cipher, write it out in full.
// Any read or write error — including a clean io.EOF — ends the pump;
// the caller tears the whole connection down on the first pump to exit.
func (c *Conn) pump(src io.Reader, dst io.Writer, counter *uint64) {
	buf := make([]byte, relayBufSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			c.encrypt(buf[:n])
			if werr := writeFull(dst, buf[:n]); werr != nil {
				return
			}
			*counter += uint64(n)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.LogDebug("relay: " + err.Error())
			}
			return
		}
	}
}
