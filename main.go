// rc is a command interpreter loosely descended from the Plan 9 shell.
package main

import (
	"fmt"
	"os"

	"rcsh/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
