package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/geal-ai/bitspacket"
)

type config struct {
	Strict   bool
	MaxDepth int
	Workers  int
	LogLevel string
	JSON     bool
	Tree     bool
}

type fileConfig struct {
	Strict   bool   `toml:"strict"`
	MaxDepth int    `toml:"max_depth"`
	Workers  int    `toml:"workers"`
	LogLevel string `toml:"log_level"`
	JSON     bool   `toml:"json"`
}

func defaultConfig() config {
	return config{
		MaxDepth: bitspacket.DefaultMaxDepth,
		Workers:  4,
		LogLevel: "warn",
	}
}

// loadConfigFile applies the keys present in the TOML file at path to cfg.
func loadConfigFile(path string, cfg *config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}
	if meta.IsDefined("strict") {
		cfg.Strict = raw.Strict
	}
	if meta.IsDefined("max_depth") {
		if raw.MaxDepth < 0 {
			return fmt.Errorf("load config: max_depth must be >= 0, got %d", raw.MaxDepth)
		}
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("workers") {
		if raw.Workers < 0 {
			return fmt.Errorf("load config: workers must be >= 0, got %d", raw.Workers)
		}
		cfg.Workers = raw.Workers
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("json") {
		cfg.JSON = raw.JSON
	}
	return nil
}

// parseArgs resolves the configuration from defaults, the optional -config
// file and the command line, in increasing precedence. It returns the input path.
func parseArgs(args []string, stderr io.Writer) (config, string, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("bits", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs, stderr) }
	configPath := fs.String("config", "", "TOML config file")
	strict := fs.Bool("strict", cfg.Strict, "Fail on reads past the end of the input instead of zero padding")
	maxDepth := fs.Int("max-depth", cfg.MaxDepth, "Maximum packet nesting (0 = unlimited)")
	workers := fs.Int("workers", cfg.Workers, "Goroutines for tree aggregation (0 = one per root child)")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error, off")
	asJSON := fs.Bool("json", cfg.JSON, "Output results as JSON")
	tree := fs.Bool("tree", cfg.Tree, "Print the decoded packet tree")
	if err := fs.Parse(args); err != nil {
		return config{}, "", err
	}
	if fs.NArg() != 1 {
		usage(fs, stderr)
		return config{}, "", fmt.Errorf("expected exactly one input path, got %d", fs.NArg())
	}

	if *configPath != "" {
		if err := loadConfigFile(*configPath, &cfg); err != nil {
			return config{}, "", err
		}
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			cfg.Strict = *strict
		case "max-depth":
			if *maxDepth < 0 {
				flagErr = fmt.Errorf("-max-depth must be >= 0, got %d", *maxDepth)
			}
			cfg.MaxDepth = *maxDepth
		case "workers":
			if *workers < 0 {
				flagErr = fmt.Errorf("-workers must be >= 0, got %d", *workers)
			}
			cfg.Workers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		case "json":
			cfg.JSON = *asJSON
		case "tree":
			cfg.Tree = *tree
		}
	})
	if flagErr != nil {
		return config{}, "", flagErr
	}
	return cfg, fs.Arg(0), nil
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, `bits: decode a hex-encoded BITS transmission and evaluate it

Usage:
  bits [flags] <path>

Flags:`)
	fs.PrintDefaults()
	fmt.Fprintln(w, `
Examples:
  bits input.txt
  bits -tree input.txt
  bits -json -workers 8 input.txt
  bits -config bits.toml -strict input.txt`)
}
