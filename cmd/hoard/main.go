package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/hoard/internal/app"
)

const usage = `usage: hoard [flags] [serve]

Browse a Hoarder bookmark server from the terminal. With "serve", run the
loopback command bridge instead of the TUI.

flags:
`

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/hoard/config.toml)")
	addr := flag.String("addr", "", "bridge listen address for serve (optional, defaults to bridge_addr)")
	flag.Parse()

	opts := app.Options{ConfigPath: *configPath, Addr: *addr, Version: version}
	switch flag.Arg(0) {
	case "":
	case "serve":
		opts.Mode = app.ModeServe
	default:
		fmt.Fprintf(os.Stderr, "hoard: unknown command %q\n", flag.Arg(0))
		flag.Usage()
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "hoard: %v\n", err)
		return 1
	}
	return 0
}
