package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nootverse/noot/pkg/core"
)

// exit is replaced in tests.
var exit = os.Exit

func main() {
	Execute()
}

// fatal prints msg with the user-facing notice for err and exits.
func fatal(msg string, err error) {
	var coded *core.Error
	if errors.As(err, &coded) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", msg, core.Notice(err))
		fmt.Fprintf(os.Stderr, "  detail: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	}
	exit(1)
}

// fail releases what cleanup holds, then exits like fatal. os.Exit skips
// deferred calls.
func fail(cleanup func(), msg string, err error) {
	cleanup()
	fatal(msg, err)
}
