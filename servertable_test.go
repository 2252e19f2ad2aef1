package ioredir

import (
	"strings"
	"testing"

	"blitter.com/go/ioredir/config"
)

func TestNewServerTableRejectsEmpty(t *testing.T) {
	if _, err := NewServerTable(nil); err == nil {
		t.Fatalf("expected error for empty server list")
	}
}

func TestNewServerTableResolvesAndTruncatesSecret(t *testing.T) {
	cfgs := []config.ServerConfig{
		{Address: "127.0.0.1", Port: "1205", Secret: strings.Repeat("x", 300)},
	}
	st, err := NewServerTable(cfgs)
	if err != nil {
		t.Fatalf("NewServerTable: %v", err)
	}
	if st.Len() != 1 {
		t.Fatalf("got Len()=%d, want 1", st.Len())
	}
	if got := len(st.servers[0].Secret); got != 256 {
		t.Fatalf("got secret length %d, want 256", got)
	}
}

func TestServerTablePickReturnsConfiguredServer(t *testing.T) {
	cfgs := []config.ServerConfig{
		{Address: "127.0.0.1", Port: "1205", Secret: "one"},
		{Address: "127.0.0.1", Port: "1206", Secret: "two"},
	}
	st, err := NewServerTable(cfgs)
	if err != nil {
		t.Fatalf("NewServerTable: %v", err)
	}
	for i := 0; i < 20; i++ {
		s, err := st.Pick()
		if err != nil {
			t.Fatalf("Pick: %v", err)
		}
		if s.Addr.Port != 1205 && s.Addr.Port != 1206 {
			t.Fatalf("Pick returned unexpected server port %d", s.Addr.Port)
		}
	}
}
