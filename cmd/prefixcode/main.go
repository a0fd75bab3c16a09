// prefixcode - text compressor built on classical prefix codes
//
// Usage:
//
//	prefixcode [-log-level L] -i IN -o OUT compress [-t KIND] [-e SCHEME] [-bpe NAME]
//	prefixcode [-log-level L] -i IN -o OUT decompress
//	prefixcode version
//
// KIND is one of byte, grapheme, word or bpe.  SCHEME is one of
// balanced-tree, shannon, fano or huffman.  NAME is a tiktoken encoding
// such as cl100k_base.
//
// The log level defaults to $PREFIXCODE_LOG_LEVEL, or info if unset.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/chronos-tachyon/prefixcode"
	"github.com/chronos-tachyon/prefixcode/internal/archive"
	"github.com/chronos-tachyon/prefixcode/token"
)

const version = "v0.1.0"

const logLevelEnv = "PREFIXCODE_LOG_LEVEL"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "prefixcode: %v\n", err)
		}
		os.Exit(1)
	}
}

type globalOptions struct {
	input    string
	output   string
	logLevel string
}

func run(args []string, stdout io.Writer, stderr io.Writer) error {
	fs := flag.NewFlagSet("prefixcode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	var g globalOptions
	defaultLevel := os.Getenv(logLevelEnv)
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	fs.StringVar(&g.input, "i", "", "input file")
	fs.StringVar(&g.output, "o", "", "output file")
	fs.StringVar(&g.logLevel, "log-level", defaultLevel, "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return errors.Wrapf(err, "invalid log level %q", g.logLevel)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return errors.New("missing command")
	}

	switch rest[0] {
	case "compress":
		return cmdCompress(g, rest[1:], logger, stderr)
	case "decompress":
		return cmdDecompress(g, rest[1:], logger, stderr)
	case "version":
		fmt.Fprintf(stdout, "prefixcode %s\n", version)
		return nil
	case "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return errors.Errorf("unknown command %q", rest[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  prefixcode [-log-level L] -i IN -o OUT compress [-t KIND] [-e SCHEME] [-bpe NAME]")
	fmt.Fprintln(w, "  prefixcode [-log-level L] -i IN -o OUT decompress")
	fmt.Fprintln(w, "  prefixcode version")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "KIND:   %s\n", joinNames(token.Kinds()))
	fmt.Fprintf(w, "SCHEME: %s\n", joinNames(prefixcode.Schemes()))
}

func joinNames[T fmt.Stringer](list []T) string {
	names := make([]string, len(list))
	for i, item := range list {
		names[i] = item.String()
	}
	return strings.Join(names, ", ")
}

func cmdCompress(g globalOptions, args []string, logger *slog.Logger, stderr io.Writer) error {
	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kindName := fs.String("t", token.KindByte.String(), "tokenizer: "+joinNames(token.Kinds()))
	schemeName := fs.String("e", prefixcode.Huffman.String(), "encoding scheme: "+joinNames(prefixcode.Schemes()))
	bpe := fs.String("bpe", token.DefaultBPEEncoding, "tiktoken encoding for the bpe tokenizer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errors.Errorf("unexpected arguments: %q", fs.Args())
	}

	kind, err := token.ParseKind(*kindName)
	if err != nil {
		return err
	}
	scheme, err := prefixcode.ParseScheme(*schemeName)
	if err != nil {
		return err
	}

	opts := archive.Options{Kind: kind, Scheme: scheme, BPEEncoding: *bpe, Logger: logger}
	return withFiles(g, logger, func(w io.Writer, r io.Reader) error {
		stats, err := archive.Compress(w, r, opts)
		if err != nil {
			return err
		}
		logger.Info("compressed",
			"input", g.input,
			"output", g.output,
			"kind", stats.Kind,
			"scheme", stats.Scheme,
			"tokens", stats.Tokens,
			"distinct", stats.DistinctTokens,
			"text_bytes", stats.TextBytes,
			"archive_bytes", stats.ArchiveBytes,
			"ratio", fmt.Sprintf("%.3f", stats.Ratio()))
		return nil
	})
}

func cmdDecompress(g globalOptions, args []string, logger *slog.Logger, stderr io.Writer) error {
	fs := flag.NewFlagSet("decompress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errors.Errorf("unexpected arguments: %q", fs.Args())
	}

	opts := archive.Options{Logger: logger}
	return withFiles(g, logger, func(w io.Writer, r io.Reader) error {
		stats, err := archive.Decompress(w, r, opts)
		if err != nil {
			return err
		}
		logger.Info("decompressed",
			"input", g.input,
			"output", g.output,
			"kind", stats.Kind,
			"scheme", stats.Scheme,
			"tokens", stats.Tokens,
			"archive_bytes", stats.ArchiveBytes,
			"text_bytes", stats.TextBytes)
		return nil
	})
}

// withFiles opens the input and output files and calls fn.  The output file
// is removed if fn fails.
func withFiles(g globalOptions, logger *slog.Logger, fn func(w io.Writer, r io.Reader) error) error {
	if g.input == "" || g.output == "" {
		return errors.New("both -i and -o are required")
	}
	if err := checkDistinct(g.input, g.output); err != nil {
		return err
	}

	in, err := os.Open(g.input)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(g.output)
	if err != nil {
		return errors.WithStack(err)
	}

	bw := bufio.NewWriter(out)
	err = fn(bw, bufio.NewReader(in))
	if err == nil {
		err = errors.WithStack(bw.Flush())
	}
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = errors.WithStack(closeErr)
	}
	if err != nil {
		if removeErr := os.Remove(g.output); removeErr != nil {
			logger.Warn("failed to remove partial output", "output", g.output, "error", removeErr)
		}
		return err
	}
	return nil
}

func checkDistinct(input string, output string) error {
	absIn, err := filepath.Abs(input)
	if err != nil {
		return errors.WithStack(err)
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return errors.WithStack(err)
	}
	if absIn == absOut {
		return errors.Errorf("input and output are the same file: %q", input)
	}

	inInfo, inErr := os.Stat(absIn)
	outInfo, outErr := os.Stat(absOut)
	if inErr == nil && outErr == nil && os.SameFile(inInfo, outInfo) {
		return errors.Errorf("input %q and output %q are the same file", input, output)
	}
	return nil
}
