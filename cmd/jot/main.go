package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/ui"
)

var version = "dev"

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		os.Exit(exitCode(err, os.Stdout, os.Stderr))
	}
}

// exitCode reports err and picks the process status: cancellations and empty
// results are clean exits, everything else is a failure.
func exitCode(err error, stdout, stderr io.Writer) int {
	if apperr.IsGraceful(err) {
		if errors.Is(err, apperr.ErrNoMatchingNotes) {
			fmt.Fprintln(stdout, ui.Error("Found 0 matching notes"))
		}
		return 0
	}

	slog.Error("command failed", slog.String("error", err.Error()))
	fmt.Fprintln(stderr, ui.Error(err.Error()))
	return 1
}
