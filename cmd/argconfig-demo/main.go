// FILE: cmd/argconfig-demo/main.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lixenwraith/argconfig"
	"github.com/spf13/pflag"
)

// ServerOptions receives the resolved namespace
type ServerOptions struct {
	Host    string        `arg:"host"`
	Port    int           `arg:"port"`
	Timeout time.Duration `arg:"server_timeout"`
	Tags    []string      `arg:"tag"`
	Verbose bool          `arg:"verbose"`
	Input   string        `arg:"input"`
}

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("ARGCONFIG_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// CLI usage example overriding the file:
	// ./argconfig-demo -c demo.conf --port 9090 -v input.txt
	p, err := argconfig.NewBuilder().
		WithName("argconfig-demo").
		WithFile("demo.conf").
		WithConfigFlag("-c", "--config").
		WithEnvPrefix("DEMO_").
		WithLogger(logger).
		WithOptions(
			argconfig.Declare("server:host", "-H", "--host").
				WithHelp("Address to bind").
				WithDefault("localhost"),
			argconfig.Declare("server:port", "-p", "--port").
				WithHelp("Port to listen on").
				WithType(argconfig.Int).
				WithDefault(8080),
			argconfig.Declare("server:timeout").
				WithHelp("Request timeout").
				WithType(argconfig.Duration).
				WithDefault(30*time.Second),
			argconfig.Declare("server:tags", "--tag").
				WithHelp("Tags, repeatable or comma separated").
				WithNArgs(argconfig.NArgsAny),
			argconfig.Declare("-v", "--verbose").
				WithHelp("Verbose output").
				WithSwitch(),
			argconfig.Declare("input").
				WithHelp("File to process").
				WithNArgs(argconfig.NArgsOptional).
				WithDefault("-"),
		).
		Build()
	if err != nil {
		logger.Error("failed to build parser", "error", err)
		os.Exit(2)
	}

	ns, err := p.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Print(p.Usage())
			return
		}
		var coerceErr *argconfig.CoercionError
		if errors.As(err, &coerceErr) {
			logger.Error("invalid configuration value", "section", coerceErr.Section, "key", coerceErr.Key, "value", coerceErr.Raw)
		}
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, p.Usage())
		os.Exit(2)
	}

	var opts ServerOptions
	if err := ns.Scan(&opts); err != nil {
		logger.Error("failed to scan options", "error", err)
		os.Exit(1)
	}

	if opts.Verbose {
		fmt.Print(ns.Debug())
	}
	logger.Info("starting",
		"host", opts.Host,
		"port", opts.Port,
		"timeout", opts.Timeout,
		"tags", opts.Tags,
		"input", opts.Input,
	)
}

// Example demo.conf file:
/*
[server]
host = 0.0.0.0
port = 9000
timeout = 1m
tags = blue, green
*/
