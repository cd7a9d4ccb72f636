// Command texloader installs a TinyTeX distribution into a project-local
// directory and writes scripts that put it on PATH.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
