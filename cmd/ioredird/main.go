// Command ioredird accepts NAT-REDIRECTed TCP connections and relays
// each one through a randomly chosen osocks server, encrypting the
// stream with a key derived from a per-connection handshake.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"blitter.com/go/ioredir"
	"blitter.com/go/ioredir/config"
	"blitter.com/go/ioredir/logger"
)

// Exit codes, matching the reference implementation's CLI contract.
const (
	exitOK              = 0
	exitArgError        = 1
	exitServerResolve   = 2
	exitPoolInit        = 3
	exitListenerSetup   = 4
)

func help() {
	fmt.Fprintf(os.Stderr, `Usage: ioredird -c <config file> [-d]

  -c, --config string   path to the TOML configuration file (required)
  -d, --debug           enable debug logging
  -h, --help            show this help text
`)
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		debug      bool
		showHelp   bool
	)
	flag.StringVarP(&configPath, "config", "c", "", "path to the TOML configuration file")
	flag.BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	flag.BoolVarP(&showHelp, "help", "h", false, "show this help text")
	flag.Parse()

	if showHelp {
		help()
		return exitOK
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "ioredird: -c/--config is required")
		help()
		return exitArgError
	}

	if err := logger.Init("ioredird", debug); err != nil {
		fmt.Fprintf(os.Stderr, "ioredird: logger init: %v\n", err)
	}
	logger.SetEventsDebug(debug)
	defer logger.LogClose()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.LogErr(err.Error())
		fmt.Fprintln(os.Stderr, err)
		return exitArgError
	}

	servers, err := ioredir.NewServerTable(cfg.Servers)
	if err != nil {
		logger.LogErr(err.Error())
		fmt.Fprintln(os.Stderr, err)
		return exitServerResolve
	}

	metrics, metricsSet := ioredir.NewMetrics()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := ioredir.ServeMetrics(cfg.Metrics.Listen, metricsSet); err != nil {
				logger.LogErr("metrics server: " + err.Error())
			}
		}()
	}

	// config.LoadConfig already validated PoolSize > 0, so NewPool
	// cannot fail here; exitPoolInit is kept for CLI contract parity
	// with the reference implementation's mem_init() failure path.
	pool := ioredir.NewPool(cfg.PoolSize)

	ln, err := ioredir.BindListener(cfg)
	if err != nil {
		logger.LogErr(err.Error())
		fmt.Fprintln(os.Stderr, err)
		return exitListenerSetup
	}
	listener := ioredir.NewListener(ln, pool, servers, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.LogNotice(fmt.Sprintf("received %s, shutting down", sig))
		cancel()
	}()

	logger.LogNotice(fmt.Sprintf("listening on %s", listener.Addr()))
	if err := listener.Serve(ctx); err != nil {
		logger.LogErr(err.Error())
		return exitListenerSetup
	}
	return exitOK
}
