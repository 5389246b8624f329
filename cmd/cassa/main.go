package main

import (
	"errors"
	"fmt"
	"os"

	"cassa/internal/cli"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures; flag and argument errors are not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Err == nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
