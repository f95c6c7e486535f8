// Package main generates a Certificate Authority (CA), server, and client certificates
// for the credential store, writing them to files under the output directory.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/atinyakov/seedkeeper/internal/certgen"
)

type options struct {
	dir    string
	caName string
	server string
	client string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.dir, "dir", "certs", "output directory")
	fs.StringVar(&o.caName, "ca-name", "seedkeeper CA", "common name of the CA")
	fs.StringVar(&o.server, "server", "localhost", "server host name")
	fs.StringVar(&o.client, "client", "wallet-ui", "client common name, logged on audited requests")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func run(o options, out io.Writer) error {
	bundle, err := certgen.NewBundle(o.caName, o.server, o.client)
	if err != nil {
		return err
	}
	if err := bundle.WriteFiles(o.dir); err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Certificates generated into %s\n", o.dir)
	return nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(o, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
