package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"

	"rubin.dev/plabble/ffi"
)

// run dispatches on a single subcommand (version, encode, decode),
// matching rubin-node's run(args, stdout, stderr) int shape so exit
// codes and flag errors are testable without touching os.Exit.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: plabble-tool <version|encode|decode> [flags]")
		return 2
	}

	switch args[0] {
	case "version":
		fmt.Fprintln(stdout, ffi.Version)
		return 0
	case "encode":
		return runEncode(args[1:], stdin, stdout, stderr)
	case "decode":
		return runDecode(args[1:], stdin, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown subcommand %q\n", args[0])
		return 2
	}
}

// runEncode reads a TOML packet document from stdin and writes its
// wire-format bytes to stdout, base64-encoded so the result stays safe
// to pipe through a terminal or another text-oriented tool.
func runEncode(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("plabble-tool encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	response := fs.Bool("response", false, "encode a response packet instead of a request")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	input, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "read stdin: %v\n", err)
		return 1
	}

	wire, status, err := ffi.EncodePacket(string(input), !*response)
	if err != nil {
		fmt.Fprintf(stderr, "encode failed (status %d): %v\n", status, err)
		return 1
	}

	fmt.Fprintln(stdout, base64.StdEncoding.EncodeToString(wire))
	return 0
}

// runDecode reads base64-encoded wire bytes from stdin and writes the
// TOML packet document to stdout.
func runDecode(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("plabble-tool decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	response := fs.Bool("response", false, "decode a response packet instead of a request")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	encoded, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "read stdin: %v\n", err)
		return 1
	}
	wire, err := base64.StdEncoding.DecodeString(string(trimNewline(encoded)))
	if err != nil {
		fmt.Fprintf(stderr, "bad base64 input: %v\n", err)
		return 1
	}

	doc, status, err := ffi.DecodePacket(wire, !*response)
	if err != nil {
		fmt.Fprintf(stderr, "decode failed (status %d): %v\n", status, err)
		return 1
	}

	fmt.Fprint(stdout, doc)
	return 0
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
