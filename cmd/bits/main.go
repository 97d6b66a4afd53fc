// Command bits decodes a hex-encoded BITS transmission and prints the sum of
// its packet versions and the value of the expression it encodes.
//
// Usage:
//
//	bits [flags] <path>
//
// Examples:
//
//	bits input.txt
//	bits -tree input.txt
//	bits -json input.txt
//	bits -config bits.toml input.txt
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/geal-ai/bitspacket"
	"github.com/geal-ai/bitspacket/internal/logging"
	"github.com/rs/zerolog"
)

// jsonOutput is the -json response.
type jsonOutput struct {
	VersionSum uint64 `json:"version_sum"`
	Value      uint64 `json:"value"`
	Packets    int    `json:"packets"`
	Depth      int    `json:"depth"`
	Bytes      int    `json:"bytes"`
}

func main() {
	cfg, path, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	logCfg := logging.DefaultConfig()
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logCfg.Level = lvl
	}
	logging.ApplyEnv(&logCfg)
	log := logging.New(logCfg)

	if err := run(cfg, path, os.Stdout, log); err != nil {
		fatalf("%v", err)
	}
}

// run decodes the hex transmission in path and writes the report to w.
func run(cfg config, path string, w io.Writer, log zerolog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	buf, err := hex.DecodeString(string(bytes.TrimSpace(raw)))
	if err != nil {
		return fmt.Errorf("decode hex: %w", err)
	}
	log.Info().Str("path", path).Int("bytes", len(buf)).Msg("loaded transmission")

	dec := bitspacket.NewDecoder(bitspacket.Options{
		Strict:   cfg.Strict,
		MaxDepth: cfg.MaxDepth,
		Logger:   &log,
	})
	root, err := dec.Decode(buf)
	if err != nil {
		return err
	}

	sum, err := bitspacket.ParallelFold(root, bitspacket.VersionSumFunc, cfg.Workers)
	if err != nil {
		return fmt.Errorf("sum versions: %w", err)
	}
	value, err := bitspacket.ParallelFold(root, bitspacket.EvalFunc, cfg.Workers)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if cfg.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonOutput{
			VersionSum: sum,
			Value:      value,
			Packets:    root.Count(),
			Depth:      root.Depth(),
			Bytes:      len(buf),
		})
	}
	if cfg.Tree {
		fmt.Fprintln(w, root)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "sum of version numbers: %d\n", sum)
	fmt.Fprintf(w, "value: %d\n", value)
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
