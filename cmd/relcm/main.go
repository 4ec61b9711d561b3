package main

import (
	"fmt"
	"os"

	"github.com/relcm/relcm/internal/cli"
	"github.com/relcm/relcm/pkg/display"
	"github.com/relcm/relcm/pkg/errors"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		for _, line := range errors.Lines(err) {
			fmt.Fprintln(os.Stderr, display.ErrorLine(line))
		}
		os.Exit(1)
	}
}
