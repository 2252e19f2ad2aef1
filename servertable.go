package ioredir

import (
	"errors"
	"fmt"
	"net"

	"blitter.com/go/ioredir/config"
	"blitter.com/go/ioredir/osocks"
)

// ServerEntry is one resolved osocks relay server: where to dial, and
// the shared secret used to derive each connection's session key.
type ServerEntry struct {
	Addr   *net.TCPAddr
	Secret []byte
}

// ServerTable is the immutable, post-startup set of configured osocks
// servers. It is safe for concurrent use without locking because it is
// never mutated after NewServerTable returns.
type ServerTable struct {
	servers []ServerEntry
}

// NewServerTable resolves every configured server address and builds
// the table used for per-connection server selection.
func NewServerTable(cfgs []config.ServerConfig) (*ServerTable, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("servertable: no servers configured")
	}
	st := &ServerTable{servers: make([]ServerEntry, 0, len(cfgs))}
	for _, c := range cfgs {
		addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(c.Address, c.Port))
		if err != nil {
			return nil, fmt.Errorf("servertable: resolve %s:%s: %w", c.Address, c.Port, err)
		}
		secret := c.Secret
		if len(secret) > osocks.MaxSecretSize {
			secret = secret[:osocks.MaxSecretSize]
		}
		st.servers = append(st.servers, ServerEntry{
			Addr:   addr,
			Secret: []byte(secret),
		})
	}
	return st, nil
}

// Len reports the number of configured servers.
func (st *ServerTable) Len() int { return len(st.servers) }

// Pick draws a uniformly random server index (modulo len(servers), with
// the small modulo bias that implies for non-power-of-two counts,
// matching the reference implementation's selection) and returns that
// server entry.
func (st *ServerTable) Pick() (*ServerEntry, error) {
	r, err := RandUint32()
	if err != nil {
		return nil, fmt.Errorf("servertable: %w", err)
	}
	idx := int(r) % len(st.servers)
	return &st.servers[idx], nil
}
