// Command treedbctl is a thin operator CLI around the store and
// transaction packages: it never reaches into the engine's internals,
// only its external interface (spec.md §6) — load a baseline, apply a
// script of changes, save the result.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dumbnose/treedb/cmd/treedbctl/cmd"
	"github.com/dumbnose/treedb/internal/defect"
)

func main() {
	os.Exit(run())
}

// run recovers a *defect.Error at the process boundary, the one place
// allowed to per internal/defect's doc comment, and reports it like any
// other fatal CLI error rather than letting it crash with a raw panic trace.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			var de *defect.Error
			if errors.As(asError(r), &de) {
				fmt.Fprintln(os.Stderr, de)
				code = 1
				return
			}
			panic(r)
		}
	}()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
