// Package main is the command-line collaborator of the seedkeeper server. It
// runs single commands or an interactive shell over mutual TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/atinyakov/seedkeeper/internal/client"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to manage secrets.
func repl(ctx context.Context, c *cli) {
	for {
		line, err := c.prompt.Line("seedkeeper> ")
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out, "read error:", err)
			}
			return
		}
		args := strings.Fields(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(c.out, "Bye")
			return
		}
		if err := c.exec(ctx, args); err != nil {
			fmt.Fprintln(c.out, "Error:", describe(err))
		}
	}
}

// clientFlags holds the command-line options of the client.
type clientFlags struct {
	cmd      string
	baseURL  string
	certFile string
	keyFile  string
	caFile   string
	yes      bool
	showVer  bool
}

func registerFlags(fs *flag.FlagSet) *clientFlags {
	f := &clientFlags{}
	fs.StringVar(&f.cmd, "cmd", "shell", "command to run, 'shell' for interactive mode, 'help' for a list")
	fs.StringVar(&f.baseURL, "url", "https://localhost:8443", "server base URL")
	fs.StringVar(&f.certFile, "cert", "certs/client.crt", "path to client cert")
	fs.StringVar(&f.keyFile, "key", "certs/client.key", "path to client key")
	fs.StringVar(&f.caFile, "ca", "certs/ca.crt", "path to CA cert")
	fs.BoolVar(&f.yes, "yes", false, "do not ask before wiping")
	fs.BoolVar(&f.showVer, "version", false, "show build version and date")
	return f
}

// main parses command-line flags and dispatches to a single command or the shell.
func main() {
	f := registerFlags(flag.CommandLine)
	flag.Parse()

	if f.showVer {
		fmt.Printf("seedkeeper client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	httpClient, err := client.LoadClientCertificate(f.certFile, f.keyFile, f.caFile)
	if err != nil {
		log.Fatal(err)
	}
	c := &cli{
		api:       client.New(f.baseURL, httpClient),
		prompt:    client.NewPrompter(os.Stdin, os.Stdout),
		out:       os.Stdout,
		assumeYes: f.yes,
	}

	ctx := context.Background()
	if f.cmd == "shell" {
		repl(ctx, c)
		return
	}
	if err := c.exec(ctx, append([]string{f.cmd}, flag.Args()...)); err != nil {
		log.Fatal(describe(err))
	}
}
