// borsh encodes, decodes and inspects Borsh data described by a YAML schema.
//
//	borsh encode --schema types.yaml --type point value.yaml > point.bin
//	borsh decode --schema types.yaml --type point point.bin
//	borsh size   --type "list<string>" value.yaml
//	borsh view   --schema types.yaml --type drawing --hex dump.txt
//
// Values are read and written as YAML. Without a file argument input comes
// from stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/borsh/alloc"
	"github.com/wippyai/borsh/codec"
	"github.com/wippyai/borsh/schema"
)

type command struct {
	name    string
	summary string
	run     func(env *env, opts *options, args []string) error
}

var commands = []command{
	{"encode", "encode a YAML value to Borsh bytes", runEncode},
	{"decode", "decode Borsh bytes to a YAML value", runDecode},
	{"size", "print the encoded size of a YAML value", runSize},
	{"view", "browse a decoded value in a pager", runView},
}

// env carries the process streams so commands can be driven from tests.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	style  styles
}

type options struct {
	schema  string
	typ     string
	hex     bool
	digest  bool
	verbose bool
	help    bool
}

func main() {
	e := &env{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		style:  newStyles(os.Stdout),
	}
	if err := run(e, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, e.style.err.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(e *env, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(e.stdout)
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		printUsage(e.stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	var opts options
	fs := newFlagSet(cmd.name, &opts)
	fs.SetOutput(e.stderr)
	if err := fs.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if opts.help {
		fmt.Fprintf(e.stdout, "Usage: borsh %s [flags] [file]\n\n%s\n\nFlags:\n", cmd.name, cmd.summary)
		fs.SetOutput(e.stdout)
		fs.PrintDefaults()
		return nil
	}
	if opts.typ == "" {
		return fmt.Errorf("%s: --type is required", cmd.name)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%s: at most one input file", cmd.name)
	}

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer logger.Sync()
		setLoggers(logger)
		defer setLoggers(zap.NewNop())
	}

	return cmd.run(e, &opts, fs.Args())
}

func newFlagSet(name string, opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&opts.schema, "schema", "s", "", "YAML schema file declaring named types")
	fs.StringVarP(&opts.typ, "type", "t", "", "type expression to encode or decode, e.g. list<point>")
	fs.BoolVarP(&opts.hex, "hex", "x", false, "read or write bytes as hex text")
	fs.BoolVar(&opts.digest, "digest", false, "report the BLAKE3-256 digest of the encoded bytes")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log codec activity to stderr")
	fs.BoolVarP(&opts.help, "help", "h", false, "show help")
	return fs
}

func setLoggers(l *zap.Logger) {
	codec.SetLogger(l)
	alloc.SetLogger(l)
	schema.SetLogger(l)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: borsh <command> --type <expr> [--schema file.yaml] [flags] [file]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'borsh <command> --help' for command flags.")
}
