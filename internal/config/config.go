// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
)

// Supported credential backends.
const (
	BackendKeyring  = "keyring"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// Backend selects where secrets are persisted: keyring, postgres or memory.
	Backend string `json:"backend"`

	// Service is the keyring service name that scopes all entries.
	Service string `json:"service"`

	// DatabaseDSN holds the database connection string for the postgres backend.
	DatabaseDSN string `json:"database_dsn"`

	// SealKeyFile is an optional path to key material. When set, values are
	// encrypted with AES-GCM before they reach the backend.
	SealKeyFile string `json:"seal_key_file"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// TLS material for the mTLS API.
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// flagSet binds the server flags to o on a set of its own, so importing this
// package never touches flag.CommandLine.
func (o *Options) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.Port, "a", "localhost:8443", "run on ip:port server")
	fs.StringVar(&o.Backend, "backend", BackendKeyring, "credential backend: keyring | postgres | memory")
	fs.StringVar(&o.Service, "service", "seedkeeper", "keyring service name")
	fs.StringVar(&o.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&o.SealKeyFile, "seal-key", "", "path to key file used to encrypt stored values")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&o.CertFile, "cert", "certs/server.crt", "path to TLS certificate")
	fs.StringVar(&o.KeyFile, "key", "certs/server.key", "path to TLS key")
	fs.StringVar(&o.CAFile, "ca", "certs/ca.crt", "path to CA certificate")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	return fs
}

// Parse reads the process arguments, the config file and environment
// variables. It exits the process on invalid input.
func Parse() *Options {
	options, err := ParseArgs(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("error while loading configuration: %v", err)
	}
	return options
}

// ParseArgs builds Options from args. Flags are applied first, then the JSON
// config file, then environment variables.
func ParseArgs(name string, args []string) (*Options, error) {
	options := &Options{}
	if err := options.flagSet(name).Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := options.load(); err != nil {
		return nil, err
	}

	options.applyEnv()
	return options, nil
}

// load merges the JSON config file over the flag values. A missing file is not an error.
func (o *Options) load() error {
	if o.Config == "" {
		return nil
	}
	if _, err := os.Stat(o.Config); err != nil {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.Config, err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("parse %s: %w", o.Config, err)
	}
	return nil
}

func (o *Options) applyEnv() {
	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		o.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		o.DatabaseDSN = dsn
	}
	if backend := os.Getenv("SEEDKEEPER_BACKEND"); backend != "" {
		o.Backend = backend
	}
	if sealKey := os.Getenv("SEEDKEEPER_SEAL_KEY"); sealKey != "" {
		o.SealKeyFile = sealKey
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		o.LogLevel = level
	}
}

// Validate reports configuration combinations the server cannot start with.
func (o *Options) Validate() error {
	switch o.Backend {
	case BackendKeyring:
		if o.Service == "" {
			return errors.New("keyring backend requires a service name")
		}
	case BackendPostgres:
		if o.DatabaseDSN == "" {
			return errors.New("postgres backend requires a database DSN")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", o.Backend)
	}
	return nil
}
