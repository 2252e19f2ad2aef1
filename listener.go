package ioredir

import (
	"context"
	"errors"
	"fmt"
	"net"

	"blitter.com/go/ioredir/config"
	"blitter.com/go/ioredir/logger"
	"blitter.com/go/ioredir/netutil"
	"blitter.com/go/ioredir/osocks"
)

const listenBacklog = 1024

// Listener accepts NAT-REDIRECTed TCP connections and relays each one
// through a randomly chosen osocks server.
type Listener struct {
	ln      *net.TCPListener
	pool    *Pool
	servers *ServerTable
	dialer  net.Dialer
	m       Metrics
}

// NewListener assembles a Listener from an already-bound socket, an
// already-initialized pool, the server table to relay through, and the
// metrics to record into. The socket, pool and server table are kept as
// separate inputs (rather than building them internally
// from cfg) so callers — notably ioredird's exit-code contract — can
// tell a pool-initialization failure apart from a listen-socket
// failure.
func NewListener(ln *net.TCPListener, pool *Pool, servers *ServerTable, m Metrics) *Listener {
	return &Listener{ln: ln, pool: pool, servers: servers, m: m}
}

// BindListener opens the redirect endpoint described in cfg with the
// reference implementation's 1024-entry listen backlog.
func BindListener(cfg *config.Config) (*net.TCPListener, error) {
	ln, err := netutil.ListenTCPWithBacklog(cfg.Redirect.Address, cfg.Redirect.Port, listenBacklog)
	if err != nil {
		return nil, fmt.Errorf("listener: %w", err)
	}
	return ln, nil
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Close stops accepting new connections.
func (l *Listener) Close() error { return l.ln.Close() }

// Serve accepts connections until ctx is canceled or Close is called.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.AcceptTCP()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.LogErr("accept: " + err.Error())
			continue
		}
		go l.handle(ctx, conn)
	}
}

// handle runs the full per-connection accept sequence: pool allocation,
// original-destination recovery, server selection, handshake, dial, and
// relay. A pool-exhaustion failure deliberately leaves the accepted
// socket open rather than closing it, preserving the reference
// implementation's documented quirk.
func (l *Listener) handle(ctx context.Context, raw *net.TCPConn) {
	l.m.AcceptsTotal.Inc()

	c, ok := l.pool.Allocate()
	if !ok {
		logger.LogWarning("out of memory")
		l.m.PoolExhaustedTotal.Inc()
		return
	}
	c.local = raw

	if err := netutil.TuneAccepted(raw); err != nil {
		logger.LogErr("tune accepted socket: " + err.Error())
		c.teardown(l.pool)
		return
	}

	dst, err := netutil.OriginalDst(raw)
	if err != nil {
		logger.LogErr("original destination: " + err.Error())
		l.m.HandshakeFailuresTotal.Inc()
		c.teardown(l.pool)
		return
	}

	server, err := l.servers.Pick()
	if err != nil {
		logger.LogErr("server selection: " + err.Error())
		logger.Events.Error().Uint64("conn", c.ID()).Err(err).Msg("server selection failed")
		c.teardown(l.pool)
		return
	}
	c.server = server

	frame, stream, err := osocks.BuildHandshake(dst.IP.String(), fmt.Sprint(dst.Port), server.Secret, rand32Reader{})
	if err != nil {
		logger.LogErr("build handshake: " + err.Error())
		l.m.HandshakeFailuresTotal.Inc()
		logger.Events.Error().Uint64("conn", c.ID()).Str("server", server.Addr.String()).Err(err).Msg("handshake build failed")
		c.teardown(l.pool)
		return
	}
	c.stream = stream

	logger.LogDebug(fmt.Sprintf("connect %s:%d via %s", dst.IP, dst.Port, server.Addr))

	remote, err := l.dialer.DialContext(ctx, "tcp", server.Addr.String())
	if err != nil {
		logger.LogErr("dial server: " + err.Error())
		l.m.HandshakeFailuresTotal.Inc()
		logger.Events.Error().Uint64("conn", c.ID()).Str("server", server.Addr.String()).Err(err).Msg("dial failed")
		c.teardown(l.pool)
		return
	}
	c.remote = remote

	if tc, ok := remote.(*net.TCPConn); ok {
		if err := netutil.TuneAccepted(tc); err != nil {
			logger.LogErr("tune remote socket: " + err.Error())
			l.m.HandshakeFailuresTotal.Inc()
			logger.Events.Error().Uint64("conn", c.ID()).Str("server", server.Addr.String()).Err(err).Msg("tune remote socket failed")
			c.teardown(l.pool)
			return
		}
	}

	if err := c.sendHandshake(frame[:]); err != nil {
		logger.LogErr("send handshake: " + err.Error())
		l.m.HandshakeFailuresTotal.Inc()
		logger.Events.Error().Uint64("conn", c.ID()).Str("server", server.Addr.String()).Err(err).Msg("handshake send failed")
		c.teardown(l.pool)
		return
	}

	if tc, ok := remote.(*net.TCPConn); ok {
		netutil.ClearDeadline(tc)
	}
	netutil.ClearDeadline(raw)

	logger.Events.Info().Uint64("conn", c.ID()).Str("dest", dst.String()).Str("server", server.Addr.String()).Msg("established")

	tx, rx := c.Relay(ctx, l.pool)
	l.m.BytesRelayedTx.Add(int(tx))
	l.m.BytesRelayedRx.Add(int(rx))

	logger.Events.Info().
		Uint64("conn", c.ID()).
		Str("server", server.Addr.String()).
		Uint64("tx_bytes", tx).
		Uint64("rx_bytes", rx).
		Msg("closed")
}

// rand32Reader adapts this package's crypto/rand-backed RandBytes to
// the io.Reader osocks.BuildHandshake expects.
type rand32Reader struct{}

func (rand32Reader) Read(p []byte) (int, error) {
	b, err := RandBytes(len(p))
	if err != nil {
		return 0, err
	}
	copy(p, b)
	return len(p), nil
}
