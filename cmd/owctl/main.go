// owctl runs a single owserver command and prints the result.
//
// Usage:
//
//	owctl [-config owctl.toml] [-host h] [-port p] [-flags uncached,fahrenheit] <command> [args]
//
// Commands:
//
//	ping
//	present <path>
//	dir <path>
//	read <path>
//	write <path> <value>     (value "on"/"off"/"true"/"false" is written as 1/0)
//	errtext <code>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/arloliu/go-ownet/logger"
	"github.com/arloliu/go-ownet/owclient"
	"github.com/arloliu/go-ownet/ownet"
)

var errUsage = errors.New("usage: owctl [-config file] [-host h] [-port p] [-flags f1,f2] ping|present|dir|read|write|errtext [args]")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "owctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("owctl", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	host := fs.String("host", "", "owserver host, overrides the config file")
	port := fs.Int("port", 0, "owserver port, overrides the config file")
	extra := fs.String("flags", "", "comma separated request flags added to this command")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}

	var extraFlags ownet.Flag
	if *extra != "" {
		extraFlags, err = ownet.ParseFlags(strings.Split(*extra, ","))
		if err != nil {
			return err
		}
	}

	log := logger.NewSlog(cfg.LogLevel, false)
	clientCfg, err := owclient.NewConfig(cfg.Host, cfg.Port, cfg.options(log)...)
	if err != nil {
		return err
	}

	client := owclient.NewClient(clientCfg)
	defer client.Close()

	return runCommand(ctx, client, fs.Args(), extraFlags, out)
}

func runCommand(ctx context.Context, c *owclient.Client, args []string, flags ownet.Flag, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, args := args[0], args[1:]
	need := map[string]int{"ping": 0, "present": 1, "dir": 1, "read": 1, "write": 2, "errtext": 1}
	n, ok := need[cmd]
	if !ok || len(args) != n {
		return errUsage
	}

	switch cmd {
	case "ping":
		if err := c.Ping(ctx, flags); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")

	case "present":
		present, err := c.Present(ctx, args[0], flags)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, present)

	case "dir":
		entries, err := c.Dir(ctx, args[0], flags)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintln(out, e)
		}

	case "read":
		value, err := c.ReadString(ctx, args[0], flags)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, value)

	case "write":
		if err := c.Write(ctx, args[0], parseValue(args[1]), flags); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")

	case "errtext":
		code, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid code %q: %w", args[0], err)
		}
		fmt.Fprintln(out, c.ErrorText(ctx, int32(code)))
	}

	return nil
}

// parseValue maps the on/off literals to switches; anything else is written verbatim.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "on", "true":
		return ownet.On
	case "off", "false":
		return ownet.Off
	}

	return []byte(s)
}
