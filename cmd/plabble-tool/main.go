// Command plabble-tool is a thin CLI over the ffi package: it encodes
// a TOML packet description to wire bytes, decodes wire bytes back to
// TOML, or prints the implementation version — the same three
// operations the cgo FFI surface exposes to non-Go callers, reachable
// here without linking a C host.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
